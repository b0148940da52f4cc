// internal/site/page.go

// Package site turns content records and the navigation tree into pages.
package site

import (
	"html/template"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"docuwhat/internal/content"
	"docuwhat/internal/markdown"
)

// Kind selects the view a page is rendered with.
type Kind string

const (
	KindHome     Kind = "home"
	KindDocument Kind = "document"
	KindCategory Kind = "category"
	KindNotFound Kind = "notfound"
)

// Crumb is one step of the breadcrumb trail. The current page has no Href.
type Crumb struct {
	Title string
	Href  string
}

// Page is everything a template needs to render one route.
type Page struct {
	Kind        Kind
	Slug        []string
	Href        string
	Title       string
	Description string
	Tags        []string
	Updated     string
	Video       string
	Icon        string
	Body        template.HTML
	TOC         []markdown.Heading
	Breadcrumbs []Crumb
	Navigation  []content.Node
	// Children are the quick links of the home page or the entries of a
	// category overview.
	Children []content.Node
}

// NotFound is the page shown for unknown routes.
func NotFound(slug []string, nav []content.Node) *Page {
	return &Page{
		Kind:       KindNotFound,
		Slug:       slug,
		Href:       content.Href(slug),
		Title:      "Page not found",
		Navigation: nav,
	}
}

// Breadcrumbs builds the trail from Home to slug. Titles come from the
// navigation tree; segments without a node are humanized. current names the
// last crumb.
func Breadcrumbs(nav []content.Node, slug []string, current string) []Crumb {
	crumbs := []Crumb{{Title: "Home", Href: "/"}}
	for i := 1; i <= len(slug); i++ {
		href := content.Href(slug[:i])
		if i == len(slug) {
			title := current
			if title == "" {
				title = crumbTitle(nav, href, slug[i-1])
			}
			crumbs = append(crumbs, Crumb{Title: title})
			break
		}
		crumbs = append(crumbs, Crumb{Title: crumbTitle(nav, href, slug[i-1]), Href: href})
	}
	return crumbs
}

func crumbTitle(nav []content.Node, href, segment string) string {
	if n, ok := content.FindCategory(nav, href); ok {
		return n.Title
	}
	if n, ok := content.FindNode(nav, href); ok {
		return n.Title
	}
	return Humanize(segment)
}

// Humanize turns a slug segment into a title: "getting-started" becomes
// "Getting Started".
func Humanize(segment string) string {
	words := strings.FieldsFunc(segment, func(r rune) bool { return r == '-' })
	return cases.Title(language.Und, cases.NoLower).String(strings.Join(words, " "))
}
