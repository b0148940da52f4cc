// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"docuwhat/internal/content"
	"docuwhat/internal/logfields"
	"docuwhat/internal/metrics"
	"docuwhat/internal/search"
	"docuwhat/internal/site"
	"docuwhat/internal/theme"
)

const shutdownTimeout = 5 * time.Second

// Repository is the content source the server reads on every request.
type Repository interface {
	site.Source
	ListDocuments(ctx context.Context) ([]content.Record, error)
}

// Stylesheet writes the CSS for highlighted code.
type Stylesheet interface {
	Stylesheet(w io.Writer) error
}

type Config struct {
	Port       int
	LiveReload bool
	// StaticDir is served for paths that are not pages.
	StaticDir string
	// WatchPaths are the files and directories whose changes trigger a reload.
	WatchPaths []string
	Search     search.Options
}

type Deps struct {
	Content  Repository
	Composer *site.Composer
	Theme    *theme.Theme
	// LoadTheme re-parses templates after a change; nil keeps Theme.
	LoadTheme func() (*theme.Theme, error)
	Styles    Stylesheet
	Site      theme.SiteInfo
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Server renders pages per request and serves the JSON endpoints.
type Server struct {
	cfg     Config
	deps    Deps
	theme   atomic.Pointer[theme.Theme]
	hub     *Hub
	logger  *slog.Logger
	handler http.Handler
}

func New(deps Deps, cfg Config) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		hub:    newHub(logger),
		logger: logger,
	}
	s.theme.Store(deps.Theme)
	s.handler = s.routes()
	return s
}

// Handler is the root handler with logging and metrics applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on cfg.Port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.LiveReload {
		w, err := s.startWatcher(ctx)
		if err != nil {
			ln.Close()
			return err
		}
		defer w.Close()
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("Serving site", slog.String("url", "http://"+displayAddr(ln.Addr())))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	s.hub.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func displayAddr(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok && tcp.IP.IsUnspecified() {
		return "localhost:" + strconv.Itoa(tcp.Port)
	}
	return addr.String()
}

// reload re-parses templates when a loader is configured and tells the
// browsers to refresh.
func (s *Server) reload(changed string) {
	if s.deps.LoadTheme != nil {
		th, err := s.deps.LoadTheme()
		if err != nil {
			s.logger.Error("Error reloading templates", logfields.Path(changed), logfields.Error(err))
			return
		}
		s.theme.Store(th)
	}
	s.logger.Info("Change detected, triggering reload", logfields.Path(changed))
	s.hub.broadcastMessage([]byte("reload"))
	s.deps.Metrics.ObserveReload()
}
