// internal/content/navigation.go
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Node is one entry of the navigation tree. Leaves are documents, inner nodes
// are directories.
type Node struct {
	Title    string `json:"title"`
	Href     string `json:"href"`
	Children []Node `json:"children,omitempty"`
	Meta     Meta   `json:"meta"`
}

// IsCategory reports whether the node stands for a directory.
func (n Node) IsCategory() bool {
	return len(n.Children) > 0
}

// NavigationTree walks the content root like ListDocuments but returns the
// directory structure. Directories without navigable children are pruned.
func (r *Repository) NavigationTree(ctx context.Context) ([]Node, error) {
	nodes := []Node{}
	if ok, err := r.rootExists(); !ok {
		return nodes, err
	}
	tree, err := r.buildNav(ctx, ".", nil)
	if err != nil {
		return nil, err
	}
	if tree != nil {
		nodes = tree
	}
	return nodes, nil
}

func (r *Repository) buildNav(ctx context.Context, dir string, prefix []string) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := r.readDir(dir)
	if err != nil {
		return nil, r.tolerate(err)
	}

	var nodes []Node
	for _, e := range entries {
		p := path.Join(dir, e.name)
		if e.isDir {
			slug := appendSlug(prefix, e.name)
			children, err := r.buildNav(ctx, p, slug)
			if err != nil {
				return nil, err
			}
			if len(children) == 0 {
				continue
			}
			cat, err := r.category(p, e.name)
			if err != nil {
				if err := r.tolerate(err); err != nil {
					return nil, err
				}
				cat = CategoryMeta{Title: e.name}
			}
			nodes = append(nodes, Node{
				Title:    cat.Title,
				Href:     Href(slug),
				Children: children,
				Meta:     cat.meta(),
			})
			continue
		}

		rec, err := r.load(p, appendSlug(prefix, e.stem))
		if err != nil {
			if err := r.tolerate(err); err != nil {
				return nil, err
			}
			continue
		}
		nodes = append(nodes, Node{Title: rec.Meta.Title, Href: rec.Href(), Meta: rec.Meta})
	}

	SortNodes(nodes)
	return nodes, nil
}

// category reads the sidecar of dir. A missing sidecar, or one without a
// title, yields the directory name as title.
func (r *Repository) category(dir, name string) (CategoryMeta, error) {
	p := path.Join(dir, SidecarName)
	data, err := fs.ReadFile(r.fsys, p)
	if errors.Is(err, fs.ErrNotExist) {
		return CategoryMeta{Title: name}, nil
	}
	if err != nil {
		return CategoryMeta{}, &DocumentError{Path: p, Err: err}
	}

	var cat CategoryMeta
	if err := json.Unmarshal(data, &cat); err != nil {
		return CategoryMeta{}, &DocumentError{Path: p, Err: fmt.Errorf("parse sidecar: %w", err)}
	}
	if strings.TrimSpace(cat.Title) == "" {
		cat.Title = name
	}
	return cat, nil
}

// SortNodes orders siblings by ascending order. The sort is stable, so equal
// ranks keep enumeration order, which fs.ReadDir guarantees to be by name.
func SortNodes(nodes []Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Meta.Rank() < nodes[j].Meta.Rank()
	})
}

// FindNode searches the tree depth first for the node with href.
func FindNode(nodes []Node, href string) (Node, bool) {
	for _, n := range nodes {
		if n.Href == href {
			return n, true
		}
		if found, ok := FindNode(n.Children, href); ok {
			return found, true
		}
	}
	return Node{}, false
}

// FindCategory is FindNode restricted to directory nodes. A document and a
// directory may share an href; this picks the directory.
func FindCategory(nodes []Node, href string) (Node, bool) {
	for _, n := range nodes {
		if n.Href == href && n.IsCategory() {
			return n, true
		}
		if found, ok := FindCategory(n.Children, href); ok {
			return found, true
		}
	}
	return Node{}, false
}
