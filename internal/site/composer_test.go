package site

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuwhat/internal/content"
	"docuwhat/internal/markdown"
)

func file(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

func newComposer(fsys fstest.MapFS) *Composer {
	repo := content.NewRepository(fsys)
	return NewComposer(repo, markdown.New(markdown.DefaultOptions()), Options{
		Title:       "DocuWhat",
		Description: "Docs for everything",
	})
}

func sampleFS() fstest.MapFS {
	return fstest.MapFS{
		"getting-started.md": file("---\ntitle: Getting Started\norder: 1\n---\n## First steps\n\nHello.\n"),
		"plain.md":           file("---\ntitle: X\n---\nbody\n"),
		"guides/_meta.json":  file(`{"title": "User Guides", "description": "How-tos", "order": 2}`),
		"guides/install.md": file(
			"---\ntitle: Install\ndescription: Set it up\ntags: [setup]\nvideo: /v/install.mp4\nupdated: \"2024-02-01\"\n---\nRun `go install`.\n"),
		"guides/deep-dive/internals.md": file("---\ntitle: Internals\n---\nDeep.\n"),
		"broken.md":                     file("---\ntitle: [unclosed\n---\nbody\n"),
	}
}

func TestComposeHome(t *testing.T) {
	page, err := newComposer(sampleFS()).Compose(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, KindHome, page.Kind)
	assert.Equal(t, "DocuWhat", page.Title)
	assert.Equal(t, "Docs for everything", page.Description)
	require.NotEmpty(t, page.Children)
	assert.Equal(t, "/getting-started", page.Children[0].Href)
	assert.Equal(t, page.Navigation, page.Children)
}

func TestComposeDocument(t *testing.T) {
	page, err := newComposer(sampleFS()).Compose(context.Background(), []string{"guides", "install"})
	require.NoError(t, err)

	assert.Equal(t, KindDocument, page.Kind)
	assert.Equal(t, "Install", page.Title)
	assert.Equal(t, "Set it up", page.Description)
	assert.Equal(t, []string{"setup"}, page.Tags)
	assert.Equal(t, "/v/install.mp4", page.Video)
	assert.Equal(t, "2024-02-01", page.Updated)
	assert.Equal(t, "/guides/install", page.Href)
	assert.Contains(t, string(page.Body), "<code>go install</code>")
	assert.Equal(t, []Crumb{
		{Title: "Home", Href: "/"},
		{Title: "User Guides", Href: "/guides"},
		{Title: "Install"},
	}, page.Breadcrumbs)
}

func TestComposeDocumentWithoutDescription(t *testing.T) {
	page, err := newComposer(sampleFS()).Compose(context.Background(), []string{"plain"})
	require.NoError(t, err)

	assert.Equal(t, "X", page.Title)
	assert.Empty(t, page.Description)
}

func TestComposeTOC(t *testing.T) {
	page, err := newComposer(sampleFS()).Compose(context.Background(), []string{"getting-started"})
	require.NoError(t, err)

	assert.Equal(t, []markdown.Heading{{Level: 2, ID: "first-steps", Text: "First steps"}}, page.TOC)
}

func TestComposeCategory(t *testing.T) {
	page, err := newComposer(sampleFS()).Compose(context.Background(), []string{"guides", "deep-dive"})
	require.NoError(t, err)

	assert.Equal(t, KindCategory, page.Kind)
	assert.Equal(t, "deep-dive", page.Title)
	require.Len(t, page.Children, 1)
	assert.Equal(t, "/guides/deep-dive/internals", page.Children[0].Href)
	assert.Equal(t, []Crumb{
		{Title: "Home", Href: "/"},
		{Title: "User Guides", Href: "/guides"},
		{Title: "deep-dive"},
	}, page.Breadcrumbs)
}

func TestComposeNotFound(t *testing.T) {
	c := newComposer(sampleFS())

	for _, slug := range [][]string{{"nonexistent"}, {"guides", "missing"}, {"_meta"}, {"..", "etc"}} {
		_, err := c.Compose(context.Background(), slug)
		assert.ErrorIs(t, err, ErrNotFound, slug)
	}
}

func TestComposeMalformedDocument(t *testing.T) {
	_, err := newComposer(sampleFS()).Compose(context.Background(), []string{"broken"})
	require.Error(t, err)

	var docErr *content.DocumentError
	assert.True(t, errors.As(err, &docErr))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestBreadcrumbsHumanizeUnknownSegments(t *testing.T) {
	crumbs := Breadcrumbs(nil, []string{"getting-started", "first-api-call"}, "")

	assert.Equal(t, []Crumb{
		{Title: "Home", Href: "/"},
		{Title: "Getting Started", Href: "/getting-started"},
		{Title: "First Api Call"},
	}, crumbs)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Getting Started", Humanize("getting-started"))
	assert.Equal(t, "API Reference", Humanize("API-reference"))
	assert.Equal(t, "Faq", Humanize("faq"))
	assert.Equal(t, "", Humanize(""))
}

func TestNotFoundPage(t *testing.T) {
	page := NotFound([]string{"nope"}, nil)
	assert.Equal(t, KindNotFound, page.Kind)
	assert.Equal(t, "/nope", page.Href)
}
