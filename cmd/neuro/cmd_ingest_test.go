package main

import (
	"testing"

	"github.com/spf13/afero"
)

func TestCollectDocuments(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, path := range []string{
		"/docs/week1.pdf",
		"/docs/notes/week2.md",
		"/docs/notes/image.png",
		"/docs/page.html",
		"/single.txt",
	} {
		if err := afero.WriteFile(fs, path, []byte("content"), 0o644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", path, err)
		}
	}

	files, err := collectDocuments(fs, []string{"/docs", "/single.txt"})
	if err != nil {
		t.Fatalf("collectDocuments() error = %v", err)
	}

	want := map[string]bool{
		"/docs/week1.pdf":      true,
		"/docs/notes/week2.md": true,
		"/docs/page.html":      true,
		"/single.txt":          true,
	}
	if len(files) != len(want) {
		t.Fatalf("collectDocuments() = %v, want %d files", files, len(want))
	}
	for _, f := range files {
		if !want[f] {
			t.Errorf("unexpected file %s", f)
		}
	}
}

func TestCollectDocumentsMissingPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := collectDocuments(fs, []string{"/nope"}); err == nil {
		t.Error("expected error for missing path")
	}
}
