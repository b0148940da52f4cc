// internal/content/repository.go
package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"syscall"

	"docuwhat/internal/logfields"
)

// Extensions lists the recognized document extensions in lookup preference order.
var Extensions = []string{".mdx", ".md"}

// SidecarName is the per-directory category descriptor.
const SidecarName = "_meta.json"

// DocumentError reports a document or directory that could not be read or parsed.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Repository reads documents from a content tree. Nothing is cached: every
// call walks the filesystem again.
type Repository struct {
	fsys   fs.FS
	strict bool
	logger *slog.Logger
}

type Option func(*Repository)

// WithStrict makes the first unreadable document abort listing and navigation.
// Otherwise the document is logged and skipped.
func WithStrict(strict bool) Option {
	return func(r *Repository) { r.strict = strict }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRepository reads content from fsys, rooted at ".".
func NewRepository(fsys fs.FS, opts ...Option) *Repository {
	r := &Repository{fsys: fsys, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open reads content from the directory dir on disk.
func Open(dir string, opts ...Option) *Repository {
	return NewRepository(os.DirFS(dir), opts...)
}

// ListDocuments returns every document under the content root, depth first in
// directory enumeration order.
func (r *Repository) ListDocuments(ctx context.Context) ([]Record, error) {
	records := []Record{}
	if ok, err := r.rootExists(); !ok {
		return records, err
	}
	if err := r.collect(ctx, ".", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Repository) collect(ctx context.Context, dir string, prefix []string, out *[]Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := r.readDir(dir)
	if err != nil {
		return r.tolerate(err)
	}

	for _, e := range entries {
		p := path.Join(dir, e.name)
		if e.isDir {
			if err := r.collect(ctx, p, appendSlug(prefix, e.name), out); err != nil {
				return err
			}
			continue
		}
		rec, err := r.load(p, appendSlug(prefix, e.stem))
		if err != nil {
			if err := r.tolerate(err); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, rec)
	}
	return nil
}

// GetDocument resolves slug to a document by trying each extension in
// preference order. A slug that matches no file reports ok == false and no
// error.
func (r *Repository) GetDocument(ctx context.Context, slug []string) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	if !ValidSlug(slug) {
		return Record{}, false, nil
	}

	base := path.Join(slug...)
	for _, ext := range Extensions {
		p := base + ext
		info, err := fs.Stat(r.fsys, p)
		if isMiss(err) {
			continue
		}
		if err != nil {
			return Record{}, false, &DocumentError{Path: p, Err: err}
		}
		if info.IsDir() {
			continue
		}
		rec, err := r.load(p, appendSlug(nil, slug...))
		if err != nil {
			return Record{}, false, err
		}
		return rec, true, nil
	}
	return Record{}, false, nil
}

// ValidSlug reports whether slug can name a document: at least one segment,
// no empty, relative or reserved segments, no separators.
func ValidSlug(slug []string) bool {
	if len(slug) == 0 {
		return false
	}
	for _, seg := range slug {
		if seg == "" || seg == "." || seg == ".." || reserved(seg) {
			return false
		}
		if strings.ContainsAny(seg, `/\`) {
			return false
		}
	}
	return fs.ValidPath(path.Join(slug...))
}

func (r *Repository) load(p string, slug []string) (Record, error) {
	data, err := fs.ReadFile(r.fsys, p)
	if err != nil {
		return Record{}, &DocumentError{Path: p, Err: err}
	}
	meta, body, err := parseDocument(data, slug)
	if err != nil {
		return Record{}, &DocumentError{Path: p, Err: err}
	}
	return Record{Slug: slug, Body: body, Meta: meta, Path: p}, nil
}

type dirEntry struct {
	name  string
	isDir bool
	stem  string
	ext   string
}

// readDir lists the navigable entries of dir in enumeration order. When a stem
// exists with more than one extension only the preferred file is kept, at the
// position of the first one seen.
func (r *Repository) readDir(dir string) ([]dirEntry, error) {
	entries, err := fs.ReadDir(r.fsys, dir)
	if err != nil {
		return nil, &DocumentError{Path: dir, Err: err}
	}

	out := make([]dirEntry, 0, len(entries))
	docs := make(map[string]int)
	for _, e := range entries {
		name := e.Name()
		if reserved(name) {
			continue
		}
		if e.IsDir() {
			out = append(out, dirEntry{name: name, isDir: true})
			continue
		}
		stem, ext, ok := splitDocumentName(name)
		if !ok {
			continue
		}
		if i, seen := docs[stem]; seen {
			if extensionRank(ext) < extensionRank(out[i].ext) {
				out[i].name, out[i].ext = name, ext
			}
			continue
		}
		docs[stem] = len(out)
		out = append(out, dirEntry{name: name, stem: stem, ext: ext})
	}
	return out, nil
}

func (r *Repository) rootExists() (bool, error) {
	info, err := fs.Stat(r.fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("content root: %w", err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("content root is not a directory")
	}
	return true, nil
}

// tolerate applies the failure policy to a per-document error.
func (r *Repository) tolerate(err error) error {
	var docErr *DocumentError
	if r.strict || !errors.As(err, &docErr) {
		return err
	}
	r.logger.Warn("Skipping unreadable content", logfields.Path(docErr.Path), logfields.Error(docErr.Err))
	return nil
}

// reserved reports names excluded from listing and navigation: sidecars and
// private entries (underscore) and hidden files (dot).
func reserved(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

func splitDocumentName(name string) (stem, ext string, ok bool) {
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return strings.TrimSuffix(name, ext), ext, true
		}
	}
	return "", "", false
}

func extensionRank(ext string) int {
	for i, e := range Extensions {
		if e == ext {
			return i
		}
	}
	return len(Extensions)
}

func isMiss(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

func appendSlug(prefix []string, segments ...string) []string {
	out := make([]string, 0, len(prefix)+len(segments))
	out = append(out, prefix...)
	return append(out, segments...)
}
