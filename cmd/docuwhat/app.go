// cmd/docuwhat/app.go
package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"docuwhat/internal/config"
	"docuwhat/internal/content"
	"docuwhat/internal/logfields"
	"docuwhat/internal/markdown"
	"docuwhat/internal/search"
	"docuwhat/internal/site"
	"docuwhat/internal/theme"
	"docuwhat/internal/util"
)

// app is the wiring shared by the commands.
type app struct {
	cfg      config.SiteConfig
	logger   *slog.Logger
	repo     *content.Repository
	renderer *markdown.Renderer
	composer *site.Composer
}

// appOptions adjust the loaded config for one command.
type appOptions struct {
	// strict forces strict mode on top of the config value.
	strict bool
	// local serves the site from this host under the base URL's path.
	local bool
}

// loadApp reads the config and builds the content pipeline.
func loadApp(g *Globals, opts appOptions) (*app, error) {
	cfg, found, err := config.LoadSiteConfig(g.Config)
	if err != nil {
		return nil, err
	}
	logger := setupLogger(cfg.Log, g.Verbose)
	if !found {
		logger.Debug("No config file, using defaults", logfields.Path(g.Config))
	}
	cfg.ResolvePaths(filepath.Dir(g.Config))
	if opts.strict {
		cfg.Strict = true
	}
	if opts.local {
		cfg.BaseURL = util.BasePath(cfg.BaseURL)
	}

	repo := content.Open(cfg.ContentDir,
		content.WithStrict(cfg.Strict),
		content.WithLogger(logger))
	renderer := markdown.New(markdown.Options{
		DefaultLanguage: cfg.Markdown.DefaultLanguage,
		Style:           cfg.Markdown.HighlightStyle,
		HardWraps:       cfg.Markdown.HardWraps,
		Unsafe:          cfg.Unsafe,
		BaseURL:         cfg.BaseURL,
	})
	composer := site.NewComposer(repo, renderer, site.Options{
		Title:       cfg.Title,
		Description: cfg.Description,
		Logger:      logger,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		renderer: renderer,
		composer: composer,
	}, nil
}

func (a *app) loadTheme() (*theme.Theme, error) {
	th, err := theme.Load(theme.Options{
		TemplateDir: a.cfg.TemplateDir,
		BaseURL:     a.cfg.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	return th, nil
}

func (a *app) siteInfo() theme.SiteInfo {
	return theme.SiteInfo{
		Title:       a.cfg.Title,
		Description: a.cfg.Description,
		BaseURL:     a.cfg.BaseURL,
		Search:      a.searchOptions(),
	}
}

func (a *app) searchOptions() search.Options {
	opts := search.DefaultOptions()
	opts.Threshold = a.cfg.Search.Threshold
	opts.Distance = a.cfg.Search.Distance
	opts.IgnoreLocation = a.cfg.Search.IgnoreLocation
	opts.IgnoreFieldNorm = a.cfg.Search.IgnoreFieldNorm
	opts.BrowseLimit = a.cfg.Search.BrowseLimit
	opts.ResultLimit = a.cfg.Search.ResultLimit
	return opts
}
