package finder

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFindDocuments(t *testing.T) {
	root := t.TempDir()

	files := []string{
		"b.toml",
		"a.yaml",
		"nested/c.json",
		"nested/d.YML",
		"notes.txt",
		".hidden.toml",
		".git/config.toml",
	}
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	found, err := FindDocuments(root)
	if err != nil {
		t.Fatalf("FindDocuments() error = %v", err)
	}

	want := []string{
		filepath.Join(root, "a.yaml"),
		filepath.Join(root, "b.toml"),
		filepath.Join(root, "nested", "c.json"),
		filepath.Join(root, "nested", "d.YML"),
	}
	if !reflect.DeepEqual(found, want) {
		t.Errorf("FindDocuments() = %v, want %v", found, want)
	}
}

func TestFindDocuments_MissingRoot(t *testing.T) {
	if _, err := FindDocuments(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}
