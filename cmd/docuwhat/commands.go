// cmd/docuwhat/commands.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"docuwhat/internal/builder"
	"docuwhat/internal/content"
	"docuwhat/internal/metrics"
	"docuwhat/internal/scaffold"
	"docuwhat/internal/search"
	"docuwhat/internal/server"
)

type BuildCmd struct {
	Output string `short:"o" help:"Output directory; defaults to output_dir from the config." type:"path"`
	Clean  bool   `help:"Empty the output directory before writing." default:"true" negatable:""`
	Strict bool   `help:"Fail on the first malformed document."`
}

func (c *BuildCmd) Run(g *Globals) error {
	a, err := loadApp(g, appOptions{strict: c.Strict})
	if err != nil {
		return err
	}
	th, err := a.loadTheme()
	if err != nil {
		return err
	}
	output := a.cfg.OutputDir
	if c.Output != "" {
		output = c.Output
	}

	fmt.Println("--- Generating site from content ---")
	b := builder.New(builder.Deps{
		Content:  a.repo,
		Composer: a.composer,
		Theme:    th,
		Styles:   a.renderer,
		Site:     a.siteInfo(),
		Logger:   a.logger,
	})
	res, err := b.BuildSite(g.ctx, builder.BuildOptions{
		OutputDir:        output,
		StaticDir:        a.cfg.StaticDir,
		SourceDirs:       []string{a.cfg.ContentDir, a.cfg.TemplateDir, filepath.Dir(g.Config)},
		CleanDestination: c.Clean,
	})
	if err != nil {
		return fmt.Errorf("site generation failed: %w", err)
	}
	fmt.Printf("✅ Success! Generated %d pages (%d documents, %d static files) in %s.\n",
		res.Pages, res.Documents, res.Assets, output)
	return nil
}

type ServeCmd struct {
	Port         int  `short:"p" help:"Port for the development server; defaults to server.port from the config."`
	NoLiveReload bool `help:"Disable file watching and browser reload."`
	Strict       bool `help:"Fail requests on malformed documents."`
}

func (c *ServeCmd) Run(g *Globals) error {
	a, err := loadApp(g, appOptions{strict: c.Strict, local: true})
	if err != nil {
		return err
	}
	th, err := a.loadTheme()
	if err != nil {
		return err
	}

	cfg := server.Config{
		Port:       a.cfg.Server.Port,
		LiveReload: a.cfg.Server.LiveReload && !c.NoLiveReload,
		StaticDir:  a.cfg.StaticDir,
		Search:     a.searchOptions(),
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if cfg.LiveReload {
		cfg.WatchPaths = []string{a.cfg.ContentDir, a.cfg.StaticDir, g.Config}
		if a.cfg.TemplateDir != "" {
			cfg.WatchPaths = append(cfg.WatchPaths, a.cfg.TemplateDir)
		}
	}

	var m *metrics.Metrics
	if a.cfg.Server.Metrics {
		m = metrics.New(version)
	}

	srv := server.New(server.Deps{
		Content:   a.repo,
		Composer:  a.composer,
		Theme:     th,
		LoadTheme: a.loadTheme,
		Styles:    a.renderer,
		Site:      a.siteInfo(),
		Metrics:   m,
		Logger:    a.logger,
	}, cfg)
	return srv.Run(g.ctx)
}

type SearchCmd struct {
	Query []string `arg:"" optional:"" help:"Search terms; empty lists the first documents."`
	Limit int      `short:"n" help:"Maximum number of results; defaults to search.result_limit."`
	JSON  bool     `help:"Print results as JSON."`
}

func (c *SearchCmd) Run(g *Globals) error {
	a, err := loadApp(g, appOptions{})
	if err != nil {
		return err
	}
	records, err := a.repo.ListDocuments(g.ctx)
	if err != nil {
		return err
	}

	opts := a.searchOptions()
	if c.Limit > 0 {
		opts.ResultLimit = c.Limit
	}
	results := search.New(records, opts).Search(strings.Join(c.Query, " "))

	if c.JSON {
		return printJSON(os.Stdout, search.Hits(results))
	}
	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%.3f  %-30s %s\n", r.Score, r.Record.Href(), r.Record.Meta.Title)
	}
	return nil
}

type TreeCmd struct {
	JSON bool `help:"Print the tree as JSON."`
}

func (c *TreeCmd) Run(g *Globals) error {
	a, err := loadApp(g, appOptions{})
	if err != nil {
		return err
	}
	nav, err := a.repo.NavigationTree(g.ctx)
	if err != nil {
		return err
	}
	if c.JSON {
		return printJSON(os.Stdout, nav)
	}
	printTree(os.Stdout, nav, 0)
	return nil
}

func printTree(w io.Writer, nodes []content.Node, depth int) {
	for _, n := range nodes {
		marker := "-"
		if n.IsCategory() {
			marker = "+"
		}
		fmt.Fprintf(w, "%s%s %s (%s)\n", strings.Repeat("  ", depth), marker, n.Title, n.Href)
		printTree(w, n.Children, depth+1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type InitCmd struct {
	Dir   string `arg:"" help:"Directory for the new site." type:"path"`
	Force bool   `help:"Overwrite an existing site."`
}

func (c *InitCmd) Run(g *Globals) error {
	created, err := scaffold.CreateNewSite(c.Dir, c.Force)
	if err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}
	for _, f := range created {
		fmt.Printf("  created %s\n", filepath.Join(c.Dir, f))
	}
	fmt.Printf("✅ New site created in %s. Run 'docuwhat serve' inside it to preview.\n", c.Dir)
	return nil
}

type NewCmd struct {
	Path        string   `arg:"" help:"Document path inside the content directory, e.g. guides/setup."`
	Title       string   `help:"Document title; derived from the file name when empty."`
	Description string   `help:"Short summary shown under the title."`
	Tags        []string `help:"Comma separated tags."`
	Order       string   `help:"Position among siblings."`
	Video       string   `help:"Video URL shown above the body."`
	Icon        string   `help:"Icon name for cards."`
	Archetype   string   `help:"Archetype template; defaults to archetypes/default.md next to the config." type:"path"`
}

func (c *NewCmd) Run(g *Globals) error {
	a, err := loadApp(g, appOptions{})
	if err != nil {
		return err
	}
	archetype := c.Archetype
	if archetype == "" {
		archetype = filepath.Join(filepath.Dir(g.Config), "archetypes", "default.md")
	}

	var order *float64
	if c.Order != "" {
		v, err := strconv.ParseFloat(c.Order, 64)
		if err != nil {
			return fmt.Errorf("invalid --order %q: %w", c.Order, err)
		}
		order = &v
	}

	rel := c.Path
	for _, ext := range content.Extensions {
		rel = strings.TrimSuffix(rel, ext)
	}
	p, err := scaffold.CreateNewContent(a.cfg.ContentDir, rel, archetype, scaffold.ContentOptions{
		Title:       c.Title,
		Description: c.Description,
		Tags:        c.Tags,
		Order:       order,
		Video:       c.Video,
		Icon:        c.Icon,
	})
	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}
	fmt.Printf("✅ Created %s\n", p)
	return nil
}
