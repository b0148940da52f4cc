// internal/content/record.go
package content

import (
	"math"
	"strings"
)

// Meta is the frontmatter of a document.
type Meta struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Video       string   `json:"video,omitempty"`
	Order       *float64 `json:"order,omitempty"`
	Updated     string   `json:"updated,omitempty"`
	Icon        string   `json:"icon,omitempty"`
}

// CategoryMeta is read from a directory's _meta.json sidecar.
type CategoryMeta struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Order       *float64 `json:"order,omitempty"`
}

func (c CategoryMeta) meta() Meta {
	return Meta{
		Title:       c.Title,
		Description: c.Description,
		Icon:        c.Icon,
		Order:       c.Order,
	}
}

// Record is a single document read from the content tree.
type Record struct {
	Slug []string `json:"slug"`
	Body string   `json:"body"`
	Meta Meta     `json:"meta"`
	// Path is the file path relative to the content root.
	Path string `json:"-"`
}

// Href is the site-absolute route of the record.
func (r Record) Href() string {
	return Href(r.Slug)
}

// Href joins slug segments into a site-absolute route.
func Href(slug []string) string {
	return "/" + strings.Join(slug, "/")
}

// unorderedRank places entries without an explicit order after every ordered sibling.
const unorderedRank = math.MaxFloat64

func rank(order *float64) float64 {
	if order == nil {
		return unorderedRank
	}
	return *order
}

// Rank returns the sort key of the meta; missing order is maximal.
func (m Meta) Rank() float64 {
	return rank(m.Order)
}
