package sanitize

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	if got := Text("  <b>Exam</b>  "); got != "&lt;b&gt;Exam&lt;/b&gt;" {
		t.Fatalf("Text() = %q", got)
	}
}

func TestTextPtr_Nil(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatal("expected nil passthrough")
	}
}

func TestRichText_StripsScripts(t *testing.T) {
	got := RichText(`<p>Hello</p><script>alert(1)</script>`)
	if strings.Contains(got, "script") {
		t.Fatalf("script survived sanitization: %q", got)
	}
	if !strings.Contains(got, "<p>Hello</p>") {
		t.Fatalf("paragraph markup should survive: %q", got)
	}
}

func TestRichText_KeepsCodeBlocks(t *testing.T) {
	got := RichText(`<pre><code>x := 1</code></pre>`)
	if !strings.Contains(got, "<code>") {
		t.Fatalf("code markup should survive: %q", got)
	}
}
