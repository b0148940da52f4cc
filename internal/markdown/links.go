// internal/markdown/links.go
package markdown

import (
	"bytes"
	"net/url"
	"path"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"docuwhat/internal/util"
)

// slugKey carries the slug of the document being rendered.
var slugKey = parser.NewContextKey()

// docLinkTransformer rewrites links between documents so they point at routes
// instead of source files. With the document's slug known, relative links
// and image sources are resolved against its directory and every local
// destination is placed under the base URL: in guides/setup.md,
// "deploy.md#env" becomes "/docs/guides/deploy#env".
type docLinkTransformer struct {
	baseURL string
}

func newDocLinkTransformer(baseURL string) parser.ASTTransformer {
	return &docLinkTransformer{baseURL: baseURL}
}

func (t *docLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	slug, hasSlug := pc.Get(slugKey).([]string)
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Link:
			n.Destination = t.resolve(RewriteDocLink(n.Destination), slug, hasSlug)
		case *ast.Image:
			n.Destination = t.resolve(n.Destination, slug, hasSlug)
		}
		return ast.WalkContinue, nil
	})
}

// resolve turns a local destination into a site route under the base URL.
// Relative destinations stay relative when the slug is unknown.
func (t *docLinkTransformer) resolve(dest []byte, slug []string, hasSlug bool) []byte {
	if len(dest) == 0 || dest[0] == '#' {
		return dest
	}
	u, err := url.Parse(string(dest))
	if err != nil || u.Scheme != "" || u.Host != "" {
		return dest
	}

	end := bytes.IndexAny(dest, "?#")
	if end < 0 {
		end = len(dest)
	}
	p, suffix := string(dest[:end]), string(dest[end:])
	if p == "" {
		return dest
	}
	if !strings.HasPrefix(p, "/") {
		if !hasSlug {
			return dest
		}
		dir := "/"
		if len(slug) > 1 {
			dir += strings.Join(slug[:len(slug)-1], "/")
		}
		p = path.Join(dir, p)
	}
	return []byte(util.JoinURL(t.baseURL, p) + suffix)
}

// RewriteDocLink strips a document extension from a relative or
// site-absolute link. Links with a scheme or host are returned unchanged.
func RewriteDocLink(dest []byte) []byte {
	u, err := url.Parse(string(dest))
	if err != nil || u.Scheme != "" || u.Host != "" {
		return dest
	}

	end := bytes.IndexAny(dest, "?#")
	if end < 0 {
		end = len(dest)
	}
	p := dest[:end]
	for _, ext := range []string{".mdx", ".md"} {
		if len(p) > len(ext) && bytes.HasSuffix(p, []byte(ext)) {
			out := make([]byte, 0, len(dest)-len(ext))
			out = append(out, p[:len(p)-len(ext)]...)
			return append(out, dest[end:]...)
		}
	}
	return dest
}
