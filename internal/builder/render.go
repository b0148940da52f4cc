// internal/builder/render.go
package builder

import (
	"encoding/json"
	"os"
	"path/filepath"

	"docuwhat/internal/site"
	"docuwhat/internal/theme"
)

// writePage executes the theme for page and writes the output to rel under
// root.
func (b *Builder) writePage(root, rel string, page *site.Page) error {
	outPath := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := b.deps.Theme.Render(outFile, theme.PageData{Site: b.deps.Site, Page: page}); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}

// writeJSON writes v as indented JSON, creating parent directories.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
