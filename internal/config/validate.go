// internal/config/validate.go
package config

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docuwhat/internal/util"
)

// Errors name fields by their config file keys.
func init() {
	validation.ErrorTag = "yaml"
}

// Validate checks the loaded configuration.
func (c SiteConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.ContentDir, validation.Required),
		validation.Field(&c.OutputDir, validation.Required, validation.By(c.outsideSources)),
		validation.Field(&c.Markdown),
		validation.Field(&c.Search),
		validation.Field(&c.Server),
		validation.Field(&c.Log),
	)
}

// outsideSources rejects an output directory that holds a source
// directory, since builds empty it.
func (c SiteConfig) outsideSources(value any) error {
	out, _ := value.(string)
	if out == "" {
		return nil
	}
	return CheckOutputDir(out, c.ContentDir, c.StaticDir, c.TemplateDir)
}

// CheckOutputDir fails when out is one of sources or contains one.
func CheckOutputDir(out string, sources ...string) error {
	for _, dir := range sources {
		if dir != "" && util.Within(out, dir) {
			return fmt.Errorf("must not contain the source directory %s", dir)
		}
	}
	return nil
}

func (m MarkdownConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.DefaultLanguage, validation.Required),
	)
}

func (s SearchConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Threshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&s.Distance, validation.Min(0)),
		validation.Field(&s.BrowseLimit, validation.Min(0)),
		validation.Field(&s.ResultLimit, validation.Min(1)),
	)
}

func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Min(0), validation.Max(65535)),
	)
}

func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&l.Format, validation.In("text", "json")),
	)
}

// SlogLevel maps the configured level name onto slog.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
