package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, Marker), []byte("{}"), 0644); err != nil {
		t.Fatalf("writing marker: %v", err)
	}
	nested := filepath.Join(root, "public", "themes")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("creating nested dir: %v", err)
	}

	got, err := FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot() error = %v", err)
	}
	if got != root {
		t.Errorf("FindRoot() = %q, want %q", got, root)
	}
}

func TestFindRootAtMarkerDir(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, Marker), []byte("{}"), 0644); err != nil {
		t.Fatalf("writing marker: %v", err)
	}

	got, err := FindRoot(root)
	if err != nil {
		t.Fatalf("FindRoot() error = %v", err)
	}
	if got != root {
		t.Errorf("FindRoot() = %q, want %q", got, root)
	}
}

func TestFindRootNoMarker(t *testing.T) {
	if _, err := FindRoot(t.TempDir()); err == nil {
		t.Fatal("FindRoot() expected error when no marker exists")
	}
}
