// internal/logfields/logfields.go
package logfields

import (
	"log/slog"
	"strings"
	"time"
)

// Canonical log field names shared across packages.
const (
	KeySlug       = "slug"
	KeyPath       = "path"
	KeyRoute      = "route"
	KeyStatus     = "status"
	KeyMethod     = "method"
	KeyDurationMS = "duration_ms"
	KeyPages      = "pages"
	KeyDocuments  = "documents"
	KeyQuery      = "query"
	KeyResults    = "results"
	KeyError      = "error"
)

func Slug(segments []string) slog.Attr { return slog.String(KeySlug, strings.Join(segments, "/")) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Route(r string) slog.Attr         { return slog.String(KeyRoute, r) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Pages(n int) slog.Attr            { return slog.Int(KeyPages, n) }
func Documents(n int) slog.Attr        { return slog.Int(KeyDocuments, n) }
func Query(q string) slog.Attr         { return slog.String(KeyQuery, q) }
func Results(n int) slog.Attr          { return slog.Int(KeyResults, n) }

func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
