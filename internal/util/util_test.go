package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinURL(t *testing.T) {
	cases := []struct {
		base, p, want string
	}{
		{"/", "/guides/install", "/guides/install"},
		{"/", "/", "/"},
		{"", "/assets/style.css", "/assets/style.css"},
		{"/docs/", "/guides", "/docs/guides"},
		{"/docs", "guides", "/docs/guides"},
		{"https://example.com/docs/", "/a/b", "https://example.com/docs/a/b"},
		{"/docs/", "https://cdn.example.com/v.mp4", "https://cdn.example.com/v.mp4"},
		{"/docs/", "//cdn.example.com/v.mp4", "//cdn.example.com/v.mp4"},
		{"/docs/", "#top", "#top"},
		{"/docs/", "", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, JoinURL(tc.base, tc.p), "%s + %s", tc.base, tc.p)
	}
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{}, SplitPath("/"))
	assert.Equal(t, []string{}, SplitPath(""))
	assert.Equal(t, []string{"guides", "install"}, SplitPath("/guides/install/"))
	assert.Equal(t, []string{"guides", "install"}, SplitPath("guides//install"))
}

func TestPagePath(t *testing.T) {
	assert.Equal(t, "index.html", PagePath(nil))
	assert.Equal(t, filepath.Join("guides", "install", "index.html"), PagePath([]string{"guides", "install"}))
}

func TestHasExt(t *testing.T) {
	exts := map[string]bool{".mp4": true, ".css": true}
	assert.True(t, HasExt("a/b/clip.MP4", exts))
	assert.True(t, HasExt("style.css", exts))
	assert.False(t, HasExt("notes.txt", exts))
	assert.False(t, HasExt("Makefile", exts))
}

func TestWithin(t *testing.T) {
	root := t.TempDir()
	assert.True(t, Within(root, root))
	assert.True(t, Within(root, filepath.Join(root, "content")))
	assert.True(t, Within(".", "content"))
	assert.False(t, Within(filepath.Join(root, "public"), filepath.Join(root, "content")))
	assert.False(t, Within(filepath.Join(root, "pub"), filepath.Join(root, "public")))
	assert.False(t, Within(filepath.Join(root, "public"), root))
}

func TestBasePath(t *testing.T) {
	for base, want := range map[string]string{
		"":                          "/",
		"/":                         "/",
		"/docs":                     "/docs/",
		"/docs/":                    "/docs/",
		"docs/v2/":                  "/docs/v2/",
		"https://example.com":       "/",
		"https://example.com/docs/": "/docs/",
	} {
		assert.Equal(t, want, BasePath(base), base)
	}
}
