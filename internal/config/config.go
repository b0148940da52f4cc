// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up when no --config flag is given.
const DefaultFile = "docuwhat.yaml"

// SiteConfig holds the configuration from the docuwhat.yaml file.
// The `yaml` tags are used by the parser to map file keys to struct fields.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"base_url"`

	ContentDir  string `yaml:"content_dir"`
	StaticDir   string `yaml:"static_dir"`
	OutputDir   string `yaml:"output_dir"`
	TemplateDir string `yaml:"template_dir"`

	// Unsafe disables HTML sanitization of rendered Markdown.
	Unsafe bool `yaml:"unsafe"`
	// Strict makes a single malformed document fail the whole listing.
	Strict bool `yaml:"strict"`

	Markdown MarkdownConfig `yaml:"markdown"`
	Search   SearchConfig   `yaml:"search"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

type MarkdownConfig struct {
	DefaultLanguage string `yaml:"default_language"`
	HighlightStyle  string `yaml:"highlight_style"`
	HardWraps       bool   `yaml:"hard_wraps"`
}

type SearchConfig struct {
	Threshold       float64 `yaml:"threshold"`
	Distance        int     `yaml:"distance"`
	IgnoreLocation  bool    `yaml:"ignore_location"`
	IgnoreFieldNorm bool    `yaml:"ignore_field_norm"`
	BrowseLimit     int     `yaml:"browse_limit"`
	ResultLimit     int     `yaml:"result_limit"`
}

type ServerConfig struct {
	Port       int  `yaml:"port"`
	LiveReload bool `yaml:"live_reload"`
	Metrics    bool `yaml:"metrics"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() SiteConfig {
	return SiteConfig{
		Title:       "DocuWhat",
		Description: "A clean and elegant documentation repository for frameworks, tutorials, and resources.",
		BaseURL:     "/",
		ContentDir:  "content",
		StaticDir:   "static",
		OutputDir:   "public",
		Markdown: MarkdownConfig{
			DefaultLanguage: "bash",
			HighlightStyle:  "github",
			HardWraps:       true,
		},
		Search: SearchConfig{
			Threshold:   0.3,
			Distance:    100,
			BrowseLimit: 5,
			ResultLimit: 10,
		},
		Server: ServerConfig{
			Port:       1313,
			LiveReload: true,
			Metrics:    true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadSiteConfig reads path on top of the defaults, then applies .env and
// DOCUWHAT_* overrides and validates the result. A missing file is not an
// error; found reports whether it existed.
func LoadSiteConfig(path string) (cfg SiteConfig, found bool, err error) {
	cfg = Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return SiteConfig{}, false, fmt.Errorf("could not read config file at %s: %w", path, err)
	default:
		found = true
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return SiteConfig{}, true, fmt.Errorf("could not parse config file %s: %w", path, err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return SiteConfig{}, found, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return SiteConfig{}, found, err
	}
	if err := cfg.Validate(); err != nil {
		return SiteConfig{}, found, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, found, nil
}

// ResolvePaths makes the relative directories of c relative to root, the
// directory holding the config file.
func (c *SiteConfig) ResolvePaths(root string) {
	for _, p := range []*string{&c.ContentDir, &c.StaticDir, &c.OutputDir, &c.TemplateDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(root, *p)
		}
	}
}
