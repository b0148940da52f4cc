// internal/markdown/render.go
package markdown

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

type Options struct {
	// DefaultLanguage highlights fences that carry no language tag.
	DefaultLanguage string
	// Style is the chroma style name used for the stylesheet.
	Style string
	// HardWraps turns soft line breaks into <br>.
	HardWraps bool
	// Unsafe skips HTML sanitization.
	Unsafe bool
	// BaseURL prefixes site-absolute link and image destinations.
	BaseURL string
}

// DefaultOptions matches the site defaults.
func DefaultOptions() Options {
	return Options{
		DefaultLanguage: "bash",
		Style:           "github",
		HardWraps:       true,
	}
}

// Rendered is the HTML of a document body and its table of contents.
type Rendered struct {
	HTML     template.HTML
	Headings []Heading
}

// Renderer converts Markdown bodies to HTML. It holds no per-document state
// and is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	style  *chroma.Style
	css    *chromahtml.Formatter
}

func New(opts Options) *Renderer {
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = DefaultOptions().DefaultLanguage
	}

	formatter := chromahtml.New(chromahtml.WithClasses(true))
	style := styles.Get(opts.Style)

	rendererOpts := []renderer.Option{
		html.WithUnsafe(),
		renderer.WithNodeRenderers(
			util.Prioritized(newDocRenderer(opts.DefaultLanguage, formatter, style), 100),
		),
	}
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(newDocLinkTransformer(opts.BaseURL), 100),
			),
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)

	r := &Renderer{
		md:    md,
		style: style,
		css:   formatter,
	}
	if !opts.Unsafe {
		r.policy = newPolicy()
	}
	return r
}

// Render converts body to HTML and extracts its headings. Relative links
// are left as written.
func (r *Renderer) Render(body []byte) (Rendered, error) {
	return r.render(body, parser.NewContext())
}

// RenderDocument is Render for the document at slug: relative links resolve
// against the document's directory into site routes.
func (r *Renderer) RenderDocument(body []byte, slug []string) (Rendered, error) {
	pc := parser.NewContext()
	pc.Set(slugKey, slug)
	return r.render(body, pc)
}

func (r *Renderer) render(body []byte, pc parser.Context) (Rendered, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf, parser.WithContext(pc)); err != nil {
		return Rendered{}, fmt.Errorf("failed to render markdown with goldmark: %w", err)
	}

	out := buf.Bytes()
	if r.policy != nil {
		out = r.policy.SanitizeBytes(out)
	}

	headings, err := ExtractHeadings(bytes.NewReader(out))
	if err != nil {
		return Rendered{}, fmt.Errorf("extract headings: %w", err)
	}
	return Rendered{HTML: template.HTML(out), Headings: headings}, nil
}

// Stylesheet writes the CSS for highlighted code blocks.
func (r *Renderer) Stylesheet(w io.Writer) error {
	return r.css.WriteCSS(w, r.style)
}

// newPolicy extends the UGC policy with what the renderer emits: highlight
// classes, video players and heading ids.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowDataAttributes()
	p.AllowElements("span", "div", "pre", "code", "video", "source")
	p.AllowAttrs("controls", "preload", "poster").OnElements("video")
	p.AllowAttrs("src", "type").OnElements("source")
	return p
}
