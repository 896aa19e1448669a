package source

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// SceneExt is the file extension of scene documents.
const SceneExt = ".txt"

// URIToPath converts a file:// URI into a local path. Non-file schemes
// produce an empty string.
func URIToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" && parsed.Scheme != "file" {
		return ""
	}
	p := parsed.Path
	if parsed.Scheme == "" {
		p = uri
	}
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	p = filepath.FromSlash(p)
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return p
}

// PathToURI converts a local path into a file:// URI.
func PathToURI(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	u := url.URL{Scheme: "file", Path: normalizePath(p)}
	return u.String()
}

// SceneName derives the scene name from a document URI: the file's base
// name without extension.
func SceneName(uri string) string {
	base := uri
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// FileName returns the unescaped base name of a document URI.
func FileName(uri string) string {
	base := uri
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	return base
}

// SiblingURI substitutes scene into the directory of uri.
func SiblingURI(uri, scene string) string {
	dir := ""
	if i := strings.LastIndexAny(uri, "/\\"); i >= 0 {
		dir = uri[:i+1]
	}
	return dir + url.PathEscape(scene) + SceneExt
}
