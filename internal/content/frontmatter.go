// internal/content/frontmatter.go
package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// frontMatter is the decoded header; it differs from Meta only in accepting
// a scalar for tags.
type frontMatter struct {
	Title       string   `json:"title" yaml:"title" toml:"title"`
	Description string   `json:"description" yaml:"description" toml:"description"`
	Tags        tagList  `json:"tags" yaml:"tags" toml:"tags"`
	Video       string   `json:"video" yaml:"video" toml:"video"`
	Order       *float64 `json:"order" yaml:"order" toml:"order"`
	Updated     string   `json:"updated" yaml:"updated" toml:"updated"`
	Icon        string   `json:"icon" yaml:"icon" toml:"icon"`
}

// tagList decodes either a list of tags or a single comma separated string,
// so "tags: setup" and "tags: setup, cli" are accepted.
type tagList []string

func (t *tagList) UnmarshalYAML(unmarshal func(any) error) error {
	var list []string
	if err := unmarshal(&list); err == nil {
		*t = list
		return nil
	}
	var single string
	if err := unmarshal(&single); err != nil {
		return fmt.Errorf("tags must be a string or a list of strings: %w", err)
	}
	*t = splitTags(single)
	return nil
}

func (t *tagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("tags must be a string or a list of strings: %w", err)
	}
	*t = splitTags(single)
	return nil
}

func (t *tagList) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		*t = splitTags(v)
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("tags must be strings, got %T", item)
			}
			list = append(list, s)
		}
		*t = list
	default:
		return fmt.Errorf("tags must be a string or a list of strings, got %T", v)
	}
	return nil
}

func splitTags(s string) []string {
	return strings.Split(s, ",")
}

// parseDocument separates frontmatter from the body and applies the title
// fallback: a document without a title is named after its last slug segment.
func parseDocument(data []byte, slug []string) (Meta, string, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return Meta{}, "", fmt.Errorf("parse frontmatter: %w", err)
	}

	meta := Meta{
		Title:       fm.Title,
		Description: fm.Description,
		Tags:        uniqueTags(fm.Tags),
		Video:       fm.Video,
		Order:       fm.Order,
		Updated:     fm.Updated,
		Icon:        fm.Icon,
	}
	if strings.TrimSpace(meta.Title) == "" && len(slug) > 0 {
		meta.Title = slug[len(slug)-1]
	}
	return meta, string(body), nil
}

func uniqueTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
