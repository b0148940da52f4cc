// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"docuwhat/internal/config"
	"docuwhat/internal/content"
	"docuwhat/internal/site"
)

// ErrExists is returned when a scaffold would overwrite an existing file.
var ErrExists = errors.New("file already exists")

// CreateNewSite writes a starter site into dir and returns the files it
// created, relative to dir. It refuses to overwrite an existing config file
// unless force is set.
func CreateNewSite(dir string, force bool) ([]string, error) {
	cfgPath := filepath.Join(dir, config.DefaultFile)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return nil, fmt.Errorf("%s: %w", cfgPath, ErrExists)
	}

	dirs := []string{"content/guides", "static/images", "static/videos", "templates", "archetypes"}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	files := []struct{ path, content string }{
		{config.DefaultFile, siteYamlContent},
		{".env.example", envExampleContent},
		{"content/getting-started.md", gettingStartedContent},
		{"content/guides/_meta.json", guidesMetaContent},
		{"content/guides/installation.md", installationContent},
		{"content/guides/writing-docs.md", writingDocsContent},
		{"archetypes/default.md", archetypeDefaultMdContent},
	}
	created := make([]string, 0, len(files))
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(f.path)), []byte(f.content), 0644); err != nil {
			return created, fmt.Errorf("failed to write file %s: %w", f.path, err)
		}
		created = append(created, f.path)
	}
	return created, nil
}

// ContentOptions are the frontmatter fields of a new document.
type ContentOptions struct {
	Title       string
	Description string
	Tags        []string
	Order       *float64
	Video       string
	Icon        string
	// Now dates the updated field; zero means time.Now.
	Now time.Time
}

// archetypeData is passed to the archetype template.
type archetypeData struct {
	Frontmatter string
	Title       string
	Description string
}

// CreateNewContent writes contentDir/<rel>.md from archetypePath, or from
// the built-in archetype when that file does not exist. rel is a slash
// separated slug such as "guides/advanced/tuning". It returns the path of
// the new file.
func CreateNewContent(contentDir, rel, archetypePath string, opts ContentOptions) (string, error) {
	slug := strings.Split(strings.Trim(filepath.ToSlash(rel), "/"), "/")
	if !content.ValidSlug(slug) {
		return "", fmt.Errorf("invalid document path %q", rel)
	}
	p := filepath.Join(contentDir, filepath.Join(slug...)+".md")
	for _, ext := range content.Extensions {
		existing := filepath.Join(contentDir, filepath.Join(slug...)+ext)
		if _, err := os.Stat(existing); err == nil {
			return "", fmt.Errorf("%s: %w", existing, ErrExists)
		}
	}

	if opts.Title == "" {
		opts.Title = site.Humanize(slug[len(slug)-1])
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	fm, err := frontmatter(opts)
	if err != nil {
		return "", err
	}

	tmplText := archetypeDefaultMdContent
	if archetypePath != "" {
		data, err := os.ReadFile(archetypePath)
		switch {
		case err == nil:
			tmplText = string(data)
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("could not read archetype file %s: %w", archetypePath, err)
		}
	}
	tmpl, err := template.New("archetype").Parse(tmplText)
	if err != nil {
		return "", fmt.Errorf("failed to parse archetype: %w", err)
	}

	var output bytes.Buffer
	if err := tmpl.Execute(&output, archetypeData{
		Frontmatter: fm,
		Title:       opts.Title,
		Description: opts.Description,
	}); err != nil {
		return "", fmt.Errorf("failed to execute archetype template: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(p, output.Bytes(), 0644); err != nil {
		return "", err
	}
	return p, nil
}

// frontmatter renders the YAML block, omitting empty optional fields.
func frontmatter(opts ContentOptions) (string, error) {
	meta := struct {
		Title       string   `yaml:"title"`
		Description string   `yaml:"description,omitempty"`
		Tags        []string `yaml:"tags,omitempty,flow"`
		Order       *float64 `yaml:"order,omitempty"`
		Video       string   `yaml:"video,omitempty"`
		Icon        string   `yaml:"icon,omitempty"`
		Updated     string   `yaml:"updated"`
	}{
		Title:       opts.Title,
		Description: opts.Description,
		Tags:        opts.Tags,
		Order:       opts.Order,
		Video:       opts.Video,
		Icon:        opts.Icon,
		Updated:     opts.Now.Format(time.DateOnly),
	}
	out, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// Constants for default file contents
const siteYamlContent = `title: My Docs
description: Documentation powered by docuwhat.
base_url: /
content_dir: content
static_dir: static
output_dir: public
template_dir: templates

markdown:
  default_language: bash
  highlight_style: github
  hard_wraps: true

search:
  threshold: 0.3
  distance: 100
  browse_limit: 5
  result_limit: 10

server:
  port: 1313
  live_reload: true
  metrics: true

log:
  level: info
  format: text
`

const envExampleContent = `# Copy to .env to override docuwhat.yaml locally.
# DOCUWHAT_PORT=8080
# DOCUWHAT_LOG_LEVEL=debug
# DOCUWHAT_BASE_URL=/docs/
`

const gettingStartedContent = `---
title: Getting Started
description: Learn the basics and get up and running quickly.
order: 1
tags: [intro]
---

## Welcome

This site is generated from the Markdown files in ` + "`content/`" + `.
Every file becomes a page; every directory becomes a section in the sidebar.

## Next steps

- Read the [installation guide](guides/installation.md).
- Learn how to [write documents](guides/writing-docs.md).
`

const guidesMetaContent = `{
  "title": "Guides",
  "description": "Step-by-step guides.",
  "order": 2
}
`

const installationContent = `---
title: Installation
description: Install docuwhat and build your first site.
order: 1
tags: [setup]
---

## Build

` + "```" + `
docuwhat build
` + "```" + `

## Preview

` + "```" + `
docuwhat serve
` + "```" + `

Pages reload in the browser whenever a file changes.
`

const writingDocsContent = `---
title: Writing Docs
description: Frontmatter, code blocks and videos.
order: 2
tags: [writing, markdown]
---

## Frontmatter

Each document starts with a YAML block that sets its title, description,
tags and position in the sidebar:

` + "```yaml" + `
title: Writing Docs
description: Frontmatter, code blocks and videos.
order: 2
tags: [writing, markdown]
` + "```" + `

## Code

Fenced code blocks are highlighted by language:

` + "```go" + `
fmt.Println("hello")
` + "```" + `

## Videos

Images pointing at .mp4, .webm or .ogg files become video players. Put the
file under ` + "`static/videos/`" + ` and reference it:

    ![Demo](/videos/demo.mp4)
`

const archetypeDefaultMdContent = `---
{{.Frontmatter}}
---

{{with .Description}}{{.}}

{{end}}## Overview

Start writing your documentation here.
`
