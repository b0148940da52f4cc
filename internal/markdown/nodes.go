// internal/markdown/nodes.go
package markdown

import (
	"bytes"
	"net/url"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// videoTypes maps the recognized video extensions to their MIME types.
var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogg":  "video/ogg",
}

// docRenderer overrides fenced code blocks (syntax highlighting) and images
// (video interception). Everything else is left to goldmark's HTML renderer.
type docRenderer struct {
	html.Config
	defaultLanguage string
	formatter       *chromahtml.Formatter
	style           *chroma.Style
}

func newDocRenderer(defaultLanguage string, formatter *chromahtml.Formatter, style *chroma.Style) renderer.NodeRenderer {
	return &docRenderer{
		Config:          html.NewConfig(),
		defaultLanguage: defaultLanguage,
		formatter:       formatter,
		style:           style,
	}
}

func (r *docRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindImage, r.renderImage)
}

func (r *docRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	lang := string(n.Language(source))
	if lang == "" {
		lang = r.defaultLanguage
	}

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	if highlighted, ok := r.highlight(lang, code.String()); ok {
		_, _ = w.WriteString(`<div class="code-block" data-language="`)
		_, _ = w.Write(util.EscapeHTML([]byte(lang)))
		_, _ = w.WriteString(`">`)
		_, _ = w.Write(highlighted)
		_, _ = w.WriteString("</div>\n")
		return ast.WalkSkipChildren, nil
	}

	_, _ = w.WriteString(`<pre><code class="language-`)
	_, _ = w.Write(util.EscapeHTML([]byte(lang)))
	_, _ = w.WriteString(`">`)
	_, _ = w.Write(util.EscapeHTML(code.Bytes()))
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}

// highlight tokenises code with the lexer registered for lang. ok is false
// when no lexer knows the language or tokenising fails.
func (r *docRenderer) highlight(lang, code string) ([]byte, bool) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return nil, false
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return nil, false
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

func (r *docRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	alt := nodeText(n, source)

	if mime, ok := VideoType(string(n.Destination)); ok {
		r.writeVideo(w, n.Destination, mime, alt)
		return ast.WalkSkipChildren, nil
	}

	_, _ = w.WriteString(`<img src="`)
	if r.Unsafe || !html.IsDangerousURL(n.Destination) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	}
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML(alt))
	_ = w.WriteByte('"')
	if n.Title != nil {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, html.ImageAttributeFilter)
	}
	if r.XHTML {
		_, _ = w.WriteString(" />")
	} else {
		_, _ = w.WriteString(">")
	}
	return ast.WalkSkipChildren, nil
}

// writeVideo emits an inline video player. Spans keep the markup valid inside
// the paragraph goldmark wraps around images.
func (r *docRenderer) writeVideo(w util.BufWriter, dest []byte, mime string, caption []byte) {
	_, _ = w.WriteString(`<span class="video-container"><video controls preload="metadata"><source src="`)
	if r.Unsafe || !html.IsDangerousURL(dest) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(dest, true)))
	}
	_, _ = w.WriteString(`" type="`)
	_, _ = w.WriteString(mime)
	_, _ = w.WriteString(`">Your browser does not support the video tag.</video>`)
	if len(bytes.TrimSpace(caption)) > 0 {
		_, _ = w.WriteString(`<span class="video-caption">`)
		_, _ = w.Write(util.EscapeHTML(caption))
		_, _ = w.WriteString(`</span>`)
	}
	_, _ = w.WriteString(`</span>`)
}

// VideoType reports the MIME type of dest when it names a video file. The
// query string and fragment are ignored, the extension is case-insensitive.
func VideoType(dest string) (string, bool) {
	p := dest
	if u, err := url.Parse(dest); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	mime, ok := videoTypes[strings.ToLower(path.Ext(p))]
	return mime, ok
}

// nodeText concatenates the text below n, which for an image is its alt text.
func nodeText(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.Write(nodeText(c, source))
		}
	}
	return buf.Bytes()
}
