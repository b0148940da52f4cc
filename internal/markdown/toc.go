// internal/markdown/toc.go
package markdown

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Heading is one entry of a page's table of contents.
type Heading struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}

var tocLevels = map[atom.Atom]int{
	atom.H2: 2,
	atom.H3: 3,
	atom.H4: 4,
}

// ExtractHeadings reads rendered HTML and returns the h2-h4 headings that
// carry an id, in document order.
func ExtractHeadings(r io.Reader) ([]Heading, error) {
	z := html.NewTokenizer(r)

	var (
		headings []Heading
		current  *Heading
		text     strings.Builder
	)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return headings, nil
			}
			return nil, z.Err()

		case html.StartTagToken:
			tok := z.Token()
			level, ok := tocLevels[tok.DataAtom]
			if !ok || current != nil {
				continue
			}
			id := attr(tok, "id")
			if id == "" {
				continue
			}
			current = &Heading{Level: level, ID: id}
			text.Reset()

		case html.TextToken:
			if current != nil {
				text.Write(z.Text())
			}

		case html.EndTagToken:
			if current == nil {
				continue
			}
			tok := z.Token()
			if level, ok := tocLevels[tok.DataAtom]; ok && level == current.Level {
				current.Text = html.UnescapeString(strings.Join(strings.Fields(text.String()), " "))
				headings = append(headings, *current)
				current = nil
			}
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
