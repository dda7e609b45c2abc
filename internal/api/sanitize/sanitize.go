package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richTextPolicyOnce sync.Once
	richTextPolicy     *bluemonday.Policy
)

// Text escapes plain form fields (titles, names, codes).
func Text(input string) string {
	return html.EscapeString(strings.TrimSpace(input))
}

func TextPtr(input *string) *string {
	if input == nil {
		return nil
	}
	value := Text(*input)
	return &value
}

// RichText strips dangerous markup from announcement bodies while keeping
// basic formatting elements.
func RichText(input string) string {
	value := strings.TrimSpace(input)
	if value == "" {
		return ""
	}
	return getRichTextPolicy().Sanitize(value)
}

func getRichTextPolicy() *bluemonday.Policy {
	richTextPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowElements("p", "pre", "code", "blockquote")
		richTextPolicy = policy
	})

	return richTextPolicy
}
