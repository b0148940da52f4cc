package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuwhat/internal/content"
	"docuwhat/internal/markdown"
	"docuwhat/internal/metrics"
	"docuwhat/internal/search"
	"docuwhat/internal/site"
	"docuwhat/internal/theme"
)

func writeFile(t *testing.T, root, rel, data string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(data), 0644))
}

type fixture struct {
	contentDir string
	staticDir  string
	metrics    *metrics.Metrics
	server     *Server
}

func newFixture(t *testing.T, liveReload bool) *fixture {
	t.Helper()
	return newFixtureAt(t, liveReload, "")
}

// newFixtureAt serves the fixture site under baseURL.
func newFixtureAt(t *testing.T, liveReload bool, baseURL string) *fixture {
	t.Helper()
	f := &fixture{
		contentDir: t.TempDir(),
		staticDir:  t.TempDir(),
		metrics:    metrics.New("test"),
	}
	writeFile(t, f.contentDir, "getting-started.md", "---\ntitle: Getting Started\ndescription: First steps\norder: 1\n---\n## Install\n\nRun the installer.\n")
	writeFile(t, f.contentDir, "guides/_meta.json", `{"title": "Guides"}`)
	writeFile(t, f.contentDir, "guides/deploy.md", "---\ntitle: Deploy\ntags: [hosting]\n---\nShip the build.\n")
	writeFile(t, f.contentDir, "broken.md", "---\ntitle: [oops\n---\n")
	writeFile(t, f.staticDir, "images/logo.svg", "<svg></svg>")

	repo := content.Open(f.contentDir)
	renderer := markdown.New(markdown.DefaultOptions())
	th, err := theme.Load(theme.Options{BaseURL: baseURL})
	require.NoError(t, err)

	f.server = New(Deps{
		Content:  repo,
		Composer: site.NewComposer(repo, renderer, site.Options{Title: "Docs"}),
		Theme:    th,
		Styles:   renderer,
		Site:     theme.SiteInfo{Title: "Docs", BaseURL: baseURL},
		Metrics:  f.metrics,
	}, Config{
		LiveReload: liveReload,
		StaticDir:  f.staticDir,
		WatchPaths: []string{f.contentDir},
		Search:     search.DefaultOptions(),
	})
	return f
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestPageRoutes(t *testing.T) {
	h := newFixture(t, false).server.Handler()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Quick Links")

	rec = get(t, h, "/getting-started")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `<h1 class="page-title">Getting Started</h1>`)
	assert.Contains(t, rec.Body.String(), `<p class="page-description">First steps</p>`)

	rec = get(t, h, "/guides/deploy/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ship the build.")

	rec = get(t, h, "/guides")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<a class="card" href="/guides/deploy">`)
}

func TestServeUnderBaseURL(t *testing.T) {
	f := newFixtureAt(t, true, "/docs/")
	h := f.server.Handler()

	rec := get(t, h, "/docs/getting-started")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/docs/getting-started"`)
	assert.Contains(t, body, `/docs/assets/style.css`)

	for _, target := range []string{
		"/docs/",
		"/docs/guides/deploy",
		"/docs/assets/style.css",
		"/docs/assets/chroma.css",
		"/docs/api/search?q=deploy",
		"/docs/images/logo.svg",
		"/docs/healthz",
	} {
		assert.Equal(t, http.StatusOK, get(t, h, target).Code, target)
	}

	rec = get(t, h, "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/docs/", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusMovedPermanently, get(t, h, "/docs").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/getting-started").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/docs/nonexistent").Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RequestsTotal.WithLabelValues("GET /", "404")))
}

func TestNotFound(t *testing.T) {
	h := newFixture(t, false).server.Handler()

	rec := get(t, h, "/nonexistent")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
	assert.Contains(t, rec.Body.String(), "sidebar-nav")
}

func TestMalformedDocumentIsServerError(t *testing.T) {
	h := newFixture(t, false).server.Handler()

	rec := get(t, h, "/broken")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStaticFallback(t *testing.T) {
	h := newFixture(t, false).server.Handler()

	rec := get(t, h, "/images/logo.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<svg></svg>", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get(t, h, "/images").Code)
}

func TestContentAPI(t *testing.T) {
	h := newFixture(t, false).server.Handler()

	rec := get(t, h, "/api/content")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var records []content.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, []string{"getting-started"}, records[0].Slug)
	assert.Equal(t, "Getting Started", records[0].Meta.Title)
}

func TestNavigationAPI(t *testing.T) {
	h := newFixture(t, false).server.Handler()

	rec := get(t, h, "/api/navigation")
	require.Equal(t, http.StatusOK, rec.Code)

	var nav []content.Node
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nav))
	require.Len(t, nav, 2)
	assert.Equal(t, "/getting-started", nav[0].Href)
	assert.Equal(t, "Guides", nav[1].Title)
	require.Len(t, nav[1].Children, 1)
	assert.Equal(t, "/guides/deploy", nav[1].Children[0].Href)
}

func TestSearchAPI(t *testing.T) {
	f := newFixture(t, false)
	h := f.server.Handler()

	var hits []search.Hit
	rec := get(t, h, "/api/search?q=deploy")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hits))
	require.NotEmpty(t, hits)
	assert.Equal(t, "/guides/deploy", hits[0].Href)

	rec = get(t, h, "/api/search?q=")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hits))
	assert.Len(t, hits, 2)

	rec = get(t, h, "/api/search?q=qqqzzzxxx")
	assert.Equal(t, "[]\n", rec.Body.String())

	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.SearchesTotal))
}

func TestAssets(t *testing.T) {
	h := newFixture(t, false).server.Handler()

	rec := get(t, h, "/assets/style.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")

	rec = get(t, h, "/assets/chroma.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".chroma")

	assert.Equal(t, http.StatusNotFound, get(t, h, "/assets/missing.js").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, false)
	h := f.server.Handler()

	assert.Equal(t, "ok\n", get(t, h, "/healthz").Body.String())
	get(t, h, "/getting-started")

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docuwhat_http_requests_total")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RequestsTotal.WithLabelValues("GET /", "200")))
}

func TestLiveReloadDisabled(t *testing.T) {
	h := newFixture(t, false).server.Handler()

	rec := get(t, h, "/ws")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, get(t, h, "/").Body.String(), "WebSocket")
}

func TestLiveReload(t *testing.T) {
	f := newFixture(t, true)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()
	resp, err := http.Get(base + "/getting-started")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "WebSocket")
	assert.Equal(t, "no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"))

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return f.server.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	writeFile(t, f.contentDir, "guides/new.md", "---\ntitle: New\n---\nFresh.\n")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "reload", string(msg))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := newStatusRecorder(rec)
	sr.WriteHeader(http.StatusTeapot)
	sr.WriteHeader(http.StatusOK)
	_, _ = sr.Write([]byte("x"))

	assert.Equal(t, http.StatusTeapot, sr.statusCode)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "x"))
}
