// internal/config/env.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DOCUWHAT_"

var envFiles = []string{".env", ".env.local"}

// loadDotEnv loads the first .env file that exists. Variables already set in
// the process environment are not overwritten.
func loadDotEnv() error {
	for _, name := range envFiles {
		if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		return nil
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *SiteConfig) applyEnv(lookup lookupFunc) error {
	strs := map[string]*string{
		"TITLE":        &c.Title,
		"BASE_URL":     &c.BaseURL,
		"CONTENT_DIR":  &c.ContentDir,
		"STATIC_DIR":   &c.StaticDir,
		"OUTPUT_DIR":   &c.OutputDir,
		"TEMPLATE_DIR": &c.TemplateDir,
		"LOG_LEVEL":    &c.Log.Level,
		"LOG_FORMAT":   &c.Log.Format,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"UNSAFE":      &c.Unsafe,
		"STRICT":      &c.Strict,
		"LIVE_RELOAD": &c.Server.LiveReload,
		"METRICS":     &c.Server.Metrics,
	}
	for key, dst := range bools {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
	}

	if v, ok := lookup(EnvPrefix + "PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", EnvPrefix, err)
		}
		c.Server.Port = port
	}
	return nil
}
