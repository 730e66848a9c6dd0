package handlers

import (
	"path/filepath"
	"testing"
)

func TestResolveWithin(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		input    string
		wantOK   bool
		wantPath string
	}{
		{"plain name", "app.log", true, filepath.Join(dir, "app.log")},
		{"rotated archive", "app.log.1.gz", true, filepath.Join(dir, "app.log.1.gz")},
		{"parent traversal", "../../etc/passwd", false, ""},
		{"single parent", "../sibling.log", false, ""},
		{"cleaned traversal stays inside", "sub/../app.log", true, filepath.Join(dir, "app.log")},
		{"prefix sibling directory", "../" + filepath.Base(dir) + "2/app.log", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveWithin(dir, tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ResolveWithin(%q, %q) ok = %v, want %v", dir, tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.wantPath {
				t.Errorf("ResolveWithin(%q, %q) = %q, want %q", dir, tt.input, got, tt.wantPath)
			}
		})
	}
}
