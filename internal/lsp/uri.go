package lsp

import (
	"os"
	"path/filepath"

	"csls/internal/source"
)

// canonicalURI normalises file URIs so that the same scene always maps to
// the same index key. Other schemes are kept verbatim.
func canonicalURI(uri string) string {
	if uri == "" {
		return ""
	}
	path := source.URIToPath(uri)
	if path == "" {
		return uri
	}
	return source.PathToURI(path)
}

// resolveStartDir returns path when it is a directory, else its parent.
func resolveStartDir(path string) string {
	if path == "" {
		return ""
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}
