// internal/builder/models.go
package builder

import (
	"context"
	"io"
	"log/slog"

	"docuwhat/internal/content"
	"docuwhat/internal/metrics"
	"docuwhat/internal/site"
	"docuwhat/internal/theme"
)

type BuildOptions struct {
	OutputDir string
	StaticDir string
	// CleanDestination empties OutputDir before writing.
	CleanDestination bool
	// SourceDirs must not lie inside OutputDir; StaticDir is always checked.
	SourceDirs []string
	// Concurrency bounds parallel page renders; zero means GOMAXPROCS.
	Concurrency int
}

// Lister is the part of the content repository a build reads.
type Lister interface {
	ListDocuments(ctx context.Context) ([]content.Record, error)
	NavigationTree(ctx context.Context) ([]content.Node, error)
}

// Stylesheet writes the CSS for highlighted code.
type Stylesheet interface {
	Stylesheet(w io.Writer) error
}

// Deps are the collaborators of a build.
type Deps struct {
	Content  Lister
	Composer *site.Composer
	Theme    *theme.Theme
	Styles   Stylesheet
	Site     theme.SiteInfo
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Result summarizes a finished build.
type Result struct {
	Pages     int
	Documents int
	Assets    int
}
