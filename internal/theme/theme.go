// internal/theme/theme.go

// Package theme holds the default HTML templates and assets. Templates can be
// overridden file by file from a directory on disk.
package theme

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"docuwhat/internal/content"
	"docuwhat/internal/search"
	"docuwhat/internal/site"
	"docuwhat/internal/util"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed assets
var assetFiles embed.FS

// StylesheetName is the asset path of the generated highlighting styles.
const StylesheetName = "chroma.css"

type Options struct {
	// TemplateDir overrides embedded templates with same-named files.
	TemplateDir string
	// BaseURL prefixes every generated link.
	BaseURL string
}

// SiteInfo is the site-wide part of the template data.
type SiteInfo struct {
	Title       string
	Description string
	BaseURL     string
	// Search tunes the in-browser ranking of api/content.json.
	Search search.Options
}

// PageData is the struct passed to templates.
type PageData struct {
	Site       SiteInfo
	Page       *site.Page
	LiveReload bool
	// SearchAPI is true when /api/search can be queried; static builds fall
	// back to ranking api/content.json in the browser.
	SearchAPI bool
}

type Theme struct {
	tmpl   *template.Template
	assets fs.FS
}

// Load parses the embedded templates, then any *.html files in
// opts.TemplateDir on top of them.
func Load(opts Options) (*Theme, error) {
	base := opts.BaseURL
	if base == "" {
		base = "/"
	}
	funcs := template.FuncMap{
		"url":   func(p string) string { return util.JoinURL(base, p) },
		"asset": func(name string) string { return util.JoinURL(base, "/assets/"+name) },
		"isCategory": func(n content.Node) bool {
			return n.IsCategory()
		},
		"join": strings.Join,
	}

	tmpl, err := template.New("theme").Funcs(funcs).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse embedded templates: %w", err)
	}

	if opts.TemplateDir != "" {
		overrides, err := filepath.Glob(filepath.Join(opts.TemplateDir, "*.html"))
		if err != nil {
			return nil, err
		}
		if len(overrides) > 0 {
			if tmpl, err = tmpl.ParseFiles(overrides...); err != nil {
				return nil, fmt.Errorf("parse templates in %s: %w", opts.TemplateDir, err)
			}
		}
	}

	assets, err := fs.Sub(assetFiles, "assets")
	if err != nil {
		return nil, err
	}
	return &Theme{tmpl: tmpl, assets: assets}, nil
}

// Render executes the layout for data.
func (t *Theme) Render(w io.Writer, data PageData) error {
	// "main" is the name of the template defined within the layout file.
	return t.tmpl.ExecuteTemplate(w, "main", data)
}

// Assets is the theme's static files (no generated stylesheet), rooted at
// the asset directory.
func (t *Theme) Assets() fs.FS {
	return t.assets
}

// WriteAssets copies the theme assets into dir.
func (t *Theme) WriteAssets(dir string) error {
	return fs.WalkDir(t.assets, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dest := filepath.Join(dir, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(dest, 0755)
		}
		data, err := fs.ReadFile(t.assets, p)
		if err != nil {
			return err
		}
		return os.WriteFile(dest, data, 0644)
	})
}
