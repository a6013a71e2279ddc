// Package uri converts between document URIs and file system paths.
package uri

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// ToPath converts a file:// URI into a file system path. Other schemes
// (untitled:, vscode-userdata:, ...) yield their opaque part so that callers
// still get something stable to match against. Plain paths pass through.
func ToPath(u string) string {
	if !strings.Contains(u, ":") || isWindowsPath(u) {
		return u
	}

	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}

	p := parsed.Path
	if p == "" {
		p = parsed.Opaque
	}

	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}

	// file:///C:/path
	if len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}

	if parsed.Scheme == "file" {
		return filepath.FromSlash(p)
	}

	return p
}

// FromPath converts a file system path to a file:// URI.
func FromPath(p string) string {
	p = filepath.ToSlash(p)

	// On Windows, prepend an extra slash
	if len(p) > 1 && p[1] == ':' {
		return "file:///" + p
	}

	return (&url.URL{Scheme: "file", Path: p}).String()
}

// Base returns the last element of the URI's path, e.g. "main.go".
func Base(u string) string {
	return path.Base(filepath.ToSlash(ToPath(u)))
}

// Rel returns p relative to the first folder that contains it, using forward
// slashes. Paths outside every folder are returned unchanged.
func Rel(p string, folders []string) string {
	for _, folder := range folders {
		rel, err := filepath.Rel(folder, p)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}

		return filepath.ToSlash(rel)
	}

	return filepath.ToSlash(p)
}

func isWindowsPath(p string) bool {
	return len(p) > 2 && p[1] == ':' && (p[2] == '\\' || p[2] == '/')
}
