package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStagePromote(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	staged, err := store.Stage("report.pdf", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}

	publicPath := staged.PublicPath()
	if !strings.HasPrefix(publicPath, "uploads/") {
		t.Fatalf("expected uploads/ prefix, got %q", publicPath)
	}
	if !strings.HasSuffix(publicPath, "-report.pdf") {
		t.Fatalf("expected original name suffix, got %q", publicPath)
	}

	// Not reachable from uploads before promotion.
	if _, err := os.Stat(filepath.Join(store.publicDir, filepath.FromSlash(publicPath))); err == nil {
		t.Fatal("staged file must not be publicly reachable")
	}

	if err := staged.Promote(); err != nil {
		t.Fatalf("Promote: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(store.publicDir, filepath.FromSlash(publicPath)))
	if err != nil {
		t.Fatalf("read promoted file: %v", err)
	}
	if string(raw) != "content" {
		t.Fatalf("unexpected content %q", raw)
	}
}

func TestStageDiscard(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	staged, err := store.Stage("notes.docx", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if err := staged.Discard(); err != nil {
		t.Fatalf("Discard: %v", err)
	}

	entries, err := os.ReadDir(store.stagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty staging dir, found %d entries", len(entries))
	}

	// Discarding twice is harmless.
	if err := staged.Discard(); err != nil {
		t.Fatalf("second Discard: %v", err)
	}
}

func TestStage_UniqueNamesForSameUpload(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	first, err := store.Stage("same.pdf", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("Stage first: %v", err)
	}
	second, err := store.Stage("same.pdf", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("Stage second: %v", err)
	}
	if first.PublicPath() == second.PublicPath() {
		t.Fatalf("expected distinct names, both were %q", first.PublicPath())
	}
}

func TestRemove_RefusesTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	outside := filepath.Join(store.publicDir, "keep.txt")
	if err := os.WriteFile(outside, []byte("keep"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := store.Remove("../keep.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Fatal("file outside uploads dir must survive")
	}
}

func TestSweepStaged(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	stale, err := store.Stage("stale.pdf", strings.NewReader("old"))
	if err != nil {
		t.Fatalf("Stage stale: %v", err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale.stagingPath, old, old); err != nil {
		t.Fatalf("age staged file: %v", err)
	}

	if _, err := store.Stage("fresh.pdf", strings.NewReader("new")); err != nil {
		t.Fatalf("Stage fresh: %v", err)
	}

	removed, err := store.SweepStaged(time.Hour)
	if err != nil {
		t.Fatalf("SweepStaged: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	entries, err := os.ReadDir(store.stagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected the fresh file to remain, found %d entries", len(entries))
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":         "report.pdf",
		"../../etc/passwd":   "passwd",
		`dir\file?.pdf`:      "dir_file_.pdf",
		"  spaced name.png ": "spaced name.png",
		"":                   "upload",
	}
	for input, want := range cases {
		if got := sanitizeFileName(input); got != want {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", input, got, want)
		}
	}
}
