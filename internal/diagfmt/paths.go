package diagfmt

import (
	"path/filepath"
	"strings"

	"csls/internal/source"
)

func formatPath(uri string, mode PathMode, base string) string {
	p := source.URIToPath(uri)
	if p == "" {
		return uri
	}
	switch mode {
	case PathModeAbsolute:
		return p
	case PathModeBasename:
		return filepath.Base(p)
	case PathModeRelative, PathModeAuto:
		if base == "" {
			return p
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return p
		}
		if mode == PathModeAuto && strings.HasPrefix(rel, "..") {
			return p
		}
		return filepath.ToSlash(rel)
	}
	return p
}
