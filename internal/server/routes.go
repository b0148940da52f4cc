// internal/server/routes.go
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"docuwhat/internal/logfields"
	"docuwhat/internal/search"
	"docuwhat/internal/site"
	"docuwhat/internal/theme"
	"docuwhat/internal/util"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/content", s.handleContent)
	mux.HandleFunc("GET /api/navigation", s.handleNavigation)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /assets/"+theme.StylesheetName, s.handleStylesheet)
	mux.HandleFunc("GET /assets/{file...}", s.handleAsset)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.deps.Metrics != nil {
		mux.Handle("GET /metrics", s.deps.Metrics.Handler())
	}
	if s.cfg.LiveReload {
		mux.HandleFunc("GET /ws", s.hub.serveWs)
	}
	mux.HandleFunc("GET /", s.handlePage)

	var h http.Handler = mux
	if s.cfg.LiveReload {
		h = noCache(h)
	}
	return mount(util.BasePath(s.deps.Site.BaseURL), s.instrument(h))
}

// mount serves h under base, which the links in rendered pages carry. The
// site root redirects to base; other paths outside it are not found.
func mount(base string, h http.Handler) http.Handler {
	if base == "/" {
		return h
	}
	prefix := strings.TrimSuffix(base, "/")
	root := http.NewServeMux()
	root.Handle(base, http.StripPrefix(prefix, h))
	root.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, base, http.StatusFound)
			return
		}
		http.NotFound(w, r)
	})
	return root
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Content.ListDocuments(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	nav, err := s.deps.Content.NavigationTree(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nav)
}

// handleSearch indexes a fresh listing for every query.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	records, err := s.deps.Content.ListDocuments(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	results := search.New(records, s.cfg.Search).Search(q)
	s.deps.Metrics.ObserveSearch(len(results))
	s.logger.Debug("Search", logfields.Query(q), logfields.Results(len(results)))
	s.writeJSON(w, http.StatusOK, search.Hits(results))
}

func (s *Server) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.deps.Styles.Stylesheet(&buf); err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, s.theme.Load().Assets(), r.PathValue("file"))
}

// handlePage renders the page for the request path. Paths that are not
// pages fall back to the static directory, then to the 404 page.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	slug := util.SplitPath(r.URL.Path)
	page, err := s.deps.Composer.Compose(r.Context(), slug)
	switch {
	case errors.Is(err, site.ErrNotFound):
		if s.serveStatic(w, r) {
			return
		}
		s.notFound(w, r, slug)
		return
	case err != nil:
		s.deps.Metrics.ObserveRender(string(site.KindDocument), err)
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, page)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, slug []string) {
	nav, err := s.deps.Content.NavigationTree(r.Context())
	if err != nil {
		s.logger.Warn("Navigation unavailable for 404 page", logfields.Error(err))
	}
	s.render(w, r, http.StatusNotFound, site.NotFound(slug, nav))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page *site.Page) {
	var buf bytes.Buffer
	err := s.theme.Load().Render(&buf, theme.PageData{
		Site:       s.deps.Site,
		Page:       page,
		LiveReload: s.cfg.LiveReload,
		SearchAPI:  true,
	})
	s.deps.Metrics.ObserveRender(string(page.Kind), err)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// serveStatic writes the static file named by the request path. It reports
// false when there is no such regular file.
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) bool {
	if s.cfg.StaticDir == "" {
		return false
	}
	rel := strings.TrimPrefix(r.URL.Path, "/")
	if rel == "" || !fs.ValidPath(rel) {
		return false
	}
	p := filepath.Join(s.cfg.StaticDir, filepath.FromSlash(rel))
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	http.ServeFile(w, r, p)
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Error writing response", logfields.Error(err))
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("Request failed", logfields.Method(r.Method), logfields.Path(r.URL.Path), logfields.Error(err))
	if strings.HasPrefix(r.URL.Path, "/api/") {
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
