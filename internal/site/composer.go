// internal/site/composer.go
package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docuwhat/internal/content"
	"docuwhat/internal/logfields"
	"docuwhat/internal/markdown"
)

// ErrNotFound is returned by Compose when a slug names neither a document
// nor a category.
var ErrNotFound = errors.New("page not found")

// Source is the part of the content repository the composer reads.
type Source interface {
	GetDocument(ctx context.Context, slug []string) (content.Record, bool, error)
	NavigationTree(ctx context.Context) ([]content.Node, error)
}

// BodyRenderer converts the body of the document at slug to HTML.
type BodyRenderer interface {
	RenderDocument(body []byte, slug []string) (markdown.Rendered, error)
}

type Options struct {
	Title       string
	Description string
	Logger      *slog.Logger
}

// Composer assembles pages. It keeps no state between calls; every Compose
// reads the content tree afresh.
type Composer struct {
	src      Source
	renderer BodyRenderer
	opts     Options
	logger   *slog.Logger
}

func NewComposer(src Source, renderer BodyRenderer, opts Options) *Composer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{src: src, renderer: renderer, opts: opts, logger: logger}
}

// Compose resolves slug to a page: the home view for an empty slug, a
// document when one exists, otherwise a category overview. Unknown slugs
// return ErrNotFound.
func (c *Composer) Compose(ctx context.Context, slug []string) (*Page, error) {
	nav, err := c.src.NavigationTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("load navigation: %w", err)
	}
	if len(slug) == 0 {
		return c.Home(nav), nil
	}

	rec, ok, err := c.src.GetDocument(ctx, slug)
	if err != nil {
		return nil, err
	}
	if ok {
		return c.ComposeRecord(rec, nav)
	}

	if node, ok := content.FindCategory(nav, content.Href(slug)); ok {
		return c.Category(node, slug, nav), nil
	}
	c.logger.Debug("No page for slug", logfields.Slug(slug))
	return nil, ErrNotFound
}

// ComposeRecord renders rec into a document page.
func (c *Composer) ComposeRecord(rec content.Record, nav []content.Node) (*Page, error) {
	out, err := c.renderer.RenderDocument([]byte(rec.Body), rec.Slug)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", rec.Path, err)
	}
	return &Page{
		Kind:        KindDocument,
		Slug:        rec.Slug,
		Href:        rec.Href(),
		Title:       rec.Meta.Title,
		Description: rec.Meta.Description,
		Tags:        rec.Meta.Tags,
		Updated:     rec.Meta.Updated,
		Video:       rec.Meta.Video,
		Icon:        rec.Meta.Icon,
		Body:        out.HTML,
		TOC:         out.Headings,
		Breadcrumbs: Breadcrumbs(nav, rec.Slug, rec.Meta.Title),
		Navigation:  nav,
	}, nil
}

// Home is the landing page; its children are the top-level sections.
func (c *Composer) Home(nav []content.Node) *Page {
	return &Page{
		Kind:        KindHome,
		Href:        "/",
		Title:       c.opts.Title,
		Description: c.opts.Description,
		Navigation:  nav,
		Children:    nav,
	}
}

// Category is the overview of a directory that has no document of its own.
func (c *Composer) Category(node content.Node, slug []string, nav []content.Node) *Page {
	return &Page{
		Kind:        KindCategory,
		Slug:        slug,
		Href:        node.Href,
		Title:       node.Title,
		Description: node.Meta.Description,
		Icon:        node.Meta.Icon,
		Breadcrumbs: Breadcrumbs(nav, slug, node.Title),
		Navigation:  nav,
		Children:    node.Children,
	}
}
