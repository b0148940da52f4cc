// internal/builder/builder.go
package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"docuwhat/internal/config"
	"docuwhat/internal/content"
	"docuwhat/internal/logfields"
	"docuwhat/internal/site"
	"docuwhat/internal/theme"
	"docuwhat/internal/util"
)

type Builder struct {
	deps   Deps
	logger *slog.Logger
}

func New(deps Deps) *Builder {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{deps: deps, logger: logger}
}

// BuildSite renders every document, the home page, category overviews and
// the 404 page into opts.OutputDir, then writes the JSON listing, the theme
// assets and the static files.
func (b *Builder) BuildSite(ctx context.Context, opts BuildOptions) (Result, error) {
	start := time.Now()
	var res Result

	sources := append([]string{opts.StaticDir}, opts.SourceDirs...)
	if err := config.CheckOutputDir(opts.OutputDir, sources...); err != nil {
		return res, fmt.Errorf("output directory %s: %w", opts.OutputDir, err)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return res, err
	}
	if opts.CleanDestination {
		b.logger.Info("Cleaning destination directory", logfields.Path(opts.OutputDir))
		if err := cleanDir(opts.OutputDir); err != nil {
			return res, err
		}
	}

	records, err := b.deps.Content.ListDocuments(ctx)
	if err != nil {
		return res, fmt.Errorf("list documents: %w", err)
	}
	nav, err := b.deps.Content.NavigationTree(ctx)
	if err != nil {
		return res, fmt.Errorf("build navigation: %w", err)
	}
	res.Documents = len(records)

	var pages atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	documents := make(map[string]bool, len(records))
	for _, rec := range records {
		documents[rec.Href()] = true
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			page, err := b.deps.Composer.ComposeRecord(rec, nav)
			b.deps.Metrics.ObserveRender(string(site.KindDocument), err)
			if err != nil {
				return err
			}
			if err := b.writePage(opts.OutputDir, util.PagePath(rec.Slug), page); err != nil {
				return fmt.Errorf("failed to render page %s: %w", rec.Path, err)
			}
			pages.Add(1)
			return nil
		})
	}

	for _, node := range categories(nav) {
		if documents[node.Href] {
			continue
		}
		g.Go(func() error {
			slug := util.SplitPath(node.Href)
			page := b.deps.Composer.Category(node, slug, nav)
			b.deps.Metrics.ObserveRender(string(site.KindCategory), nil)
			if err := b.writePage(opts.OutputDir, util.PagePath(slug), page); err != nil {
				return fmt.Errorf("failed to render category %s: %w", node.Href, err)
			}
			pages.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, err
	}

	if err := b.writePage(opts.OutputDir, "index.html", b.deps.Composer.Home(nav)); err != nil {
		return res, fmt.Errorf("failed to render home page: %w", err)
	}
	if err := b.writePage(opts.OutputDir, "404.html", site.NotFound(nil, nav)); err != nil {
		return res, fmt.Errorf("failed to render 404 page: %w", err)
	}
	res.Pages = int(pages.Load()) + 2

	if err := writeJSON(filepath.Join(opts.OutputDir, "api", "content.json"), records); err != nil {
		return res, err
	}
	if err := writeJSON(filepath.Join(opts.OutputDir, "api", "navigation.json"), nav); err != nil {
		return res, err
	}

	if err := b.writeAssets(filepath.Join(opts.OutputDir, "assets")); err != nil {
		return res, err
	}
	copied, err := copyStaticAssets(opts.StaticDir, opts.OutputDir)
	if err != nil {
		return res, err
	}
	res.Assets = copied

	elapsed := time.Since(start)
	b.deps.Metrics.ObserveBuild(res.Pages, elapsed)
	b.logger.Info("Site built",
		logfields.Pages(res.Pages),
		logfields.Documents(res.Documents),
		logfields.Path(opts.OutputDir),
		logfields.Duration(elapsed))
	return res, nil
}

func (b *Builder) writeAssets(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := b.deps.Theme.WriteAssets(dir); err != nil {
		return fmt.Errorf("write theme assets: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, theme.StylesheetName))
	if err != nil {
		return err
	}
	if err := b.deps.Styles.Stylesheet(f); err != nil {
		f.Close()
		return fmt.Errorf("write highlight stylesheet: %w", err)
	}
	return f.Close()
}

// categories lists every directory node of the tree, parents first.
func categories(nodes []content.Node) []content.Node {
	var out []content.Node
	for _, n := range nodes {
		if n.IsCategory() {
			out = append(out, n)
			out = append(out, categories(n.Children)...)
		}
	}
	return out
}

func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// staticExts are the file extensions copied from the static directory.
var staticExts = map[string]bool{
	".css": true, ".js": true, ".txt": true, ".svg": true, ".ico": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".mp4": true, ".webm": true, ".ogg": true,
	".woff": true, ".woff2": true, ".pdf": true, ".json": true,
}

// copyStaticAssets copies files from the static directory to the output
// directory. A missing static directory copies nothing.
func copyStaticAssets(staticDir, outputDir string) (int, error) {
	if staticDir == "" {
		return 0, nil
	}
	if _, err := os.Stat(staticDir); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	copied := 0
	err := filepath.WalkDir(staticDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !util.HasExt(d.Name(), staticExts) {
			return nil
		}

		rel, err := filepath.Rel(staticDir, path)
		if err != nil {
			return err
		}
		if err := copyFile(path, filepath.Join(outputDir, rel)); err != nil {
			return fmt.Errorf("copy static file %s: %w", rel, err)
		}
		copied++
		return nil
	})
	return copied, err
}

func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
