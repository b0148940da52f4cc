// internal/util/util.go
package util

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// JoinURL places a site-absolute path under baseURL, which may be a bare
// path ("/docs/") or a full URL. Links that already carry a scheme or host,
// fragments and empty paths are returned unchanged.
func JoinURL(baseURL, p string) string {
	if p == "" || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "//") {
		return p
	}
	if u, err := url.Parse(p); err == nil && u.Scheme != "" {
		return p
	}
	base := strings.TrimRight(baseURL, "/")
	return base + "/" + strings.TrimLeft(p, "/")
}

// BasePath is the path part of baseURL with a leading and trailing slash,
// "/" when there is none: "https://example.com/docs" gives "/docs/".
func BasePath(baseURL string) string {
	p := baseURL
	if u, err := url.Parse(baseURL); err == nil {
		p = u.Path
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

// SplitPath turns a request path into slug segments, dropping empty
// segments so "/guides/install/" and "guides/install" agree.
func SplitPath(p string) []string {
	segments := []string{}
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// PagePath is the output file of a page relative to the build root:
// "index.html" for the home page and "<slug>/index.html" otherwise.
func PagePath(slug []string) string {
	if len(slug) == 0 {
		return "index.html"
	}
	return filepath.Join(append(append([]string{}, slug...), "index.html")...)
}

// HasExt reports whether name ends in one of exts, ignoring case.
func HasExt(name string, exts map[string]bool) bool {
	return exts[strings.ToLower(path.Ext(name))]
}

// Within reports whether child is parent or lies below it. Relative paths
// are taken from the working directory.
func Within(parent, child string) bool {
	p, err := filepath.Abs(parent)
	if err != nil {
		return false
	}
	c, err := filepath.Abs(child)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(p, c)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
