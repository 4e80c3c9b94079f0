package finder

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// DocumentExtensions lists the file types a topology document may use
var DocumentExtensions = []string{".toml", ".yaml", ".yml", ".json"}

// FindDocuments walks a directory and returns all topology documents in
// lexical order, excluding hidden files and directories.
func FindDocuments(root string) ([]string, error) {
	var documents []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if path != root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if IsDocument(path) {
			documents = append(documents, path)
		}
		return nil
	})

	return documents, err
}

// IsDocument reports whether a path has a topology document extension
func IsDocument(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range DocumentExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}
