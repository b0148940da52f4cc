// internal/search/index.go

// Package search ranks documents against a free-text query with weighted
// approximate matching over title, description, tags and body.
package search

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"docuwhat/internal/content"
)

// Field weights before normalization.
const (
	titleWeight       = 2.0
	descriptionWeight = 1.5
	tagsWeight        = 1.0
	bodyWeight        = 0.5
)

// epsilon stands in for a perfect field score so it still affects the product.
const epsilon = 2.220446049250313e-16

type Options struct {
	// Threshold is the worst field score still counted as a match.
	Threshold float64
	// Location is the expected match position in each field.
	Location int
	// Distance scales how far from Location a match may start.
	Distance int
	// IgnoreLocation scores matches by errors only.
	IgnoreLocation bool
	// IgnoreFieldNorm drops the field-length norm, so a match in a long body
	// counts as much as one in a short title of the same weight.
	IgnoreFieldNorm bool
	// BrowseLimit is the number of records returned for an empty query.
	BrowseLimit int
	// ResultLimit caps ranked results.
	ResultLimit int
}

func DefaultOptions() Options {
	return Options{
		Threshold:   0.3,
		Location:    0,
		Distance:    100,
		BrowseLimit: 5,
		ResultLimit: 10,
	}
}

// Result is a record with its relevance score; lower is better.
type Result struct {
	Record content.Record
	Score  float64
}

// field is a folded value with its length norm.
type field struct {
	text []rune
	norm float64
}

type entry struct {
	record      content.Record
	title       field
	description field
	tags        []field
	body        field
}

type weights struct {
	title, description, tags, body float64
}

// Index is an immutable, in-memory search index.
type Index struct {
	entries []entry
	opts    Options
	weights weights
}

// New indexes records in the given order, which is also the browse order.
func New(records []content.Record, opts Options) *Index {
	idx := &Index{
		entries: make([]entry, 0, len(records)),
		opts:    opts,
	}
	total := titleWeight + descriptionWeight + tagsWeight + bodyWeight
	idx.weights = weights{
		title:       titleWeight / total,
		description: descriptionWeight / total,
		tags:        tagsWeight / total,
		body:        bodyWeight / total,
	}

	for _, rec := range records {
		e := entry{
			record:      rec,
			title:       newField(rec.Meta.Title),
			description: newField(rec.Meta.Description),
			body:        newField(rec.Body),
		}
		for _, tag := range rec.Meta.Tags {
			e.tags = append(e.tags, newField(tag))
		}
		idx.entries = append(idx.entries, e)
	}
	return idx
}

// fold case-folds s. A Caser is stateful, so each call builds its own.
func fold(s string) []rune {
	return []rune(cases.Fold().String(s))
}

func newField(s string) field {
	return field{text: fold(s), norm: fieldNorm(s)}
}

// fieldNorm is 1/sqrt(tokens) rounded to three decimals, where tokens are
// runs of non-space characters. Short fields weigh more than long ones.
func fieldNorm(s string) float64 {
	tokens := len(strings.FieldsFunc(s, func(r rune) bool { return r == ' ' }))
	if tokens == 0 {
		tokens = 1
	}
	return math.Round(1000/math.Sqrt(float64(tokens))) / 1000
}

// Len returns the number of indexed records.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Query returns the matching records, best first.
func (idx *Index) Query(q string) []content.Record {
	results := idx.Search(q)
	records := make([]content.Record, len(results))
	for i, r := range results {
		records[i] = r.Record
	}
	return records
}

// Search ranks the records against q. A blank query browses the first
// records in index order.
func (idx *Index) Search(q string) []Result {
	results := []Result{}
	if idx == nil || len(idx.entries) == 0 {
		return results
	}

	q = strings.TrimSpace(q)
	if q == "" {
		for i := 0; i < len(idx.entries) && i < idx.opts.BrowseLimit; i++ {
			results = append(results, Result{Record: idx.entries[i].record})
		}
		return results
	}

	m := matcher{
		pattern:        fold(q),
		threshold:      idx.opts.Threshold,
		location:       idx.opts.Location,
		distance:       idx.opts.Distance,
		ignoreLocation: idx.opts.IgnoreLocation,
	}
	for _, e := range idx.entries {
		if score, ok := idx.score(m, e); ok {
			results = append(results, Result{Record: e.record, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	if limit := idx.opts.ResultLimit; limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// score multiplies the scores of every matching field of e, each raised to
// its weight times its length norm. Every matching tag contributes on its
// own. ok is false when nothing matches.
func (idx *Index) score(m matcher, e entry) (float64, bool) {
	total := 1.0
	matched := false
	add := func(f field, weight float64) {
		s, ok := m.score(f.text)
		if !ok {
			return
		}
		if s == 0 {
			s = epsilon
		}
		exp := weight
		if !idx.opts.IgnoreFieldNorm {
			exp *= f.norm
		}
		total *= math.Pow(s, exp)
		matched = true
	}

	add(e.title, idx.weights.title)
	add(e.description, idx.weights.description)
	for _, tag := range e.tags {
		add(tag, idx.weights.tags)
	}
	add(e.body, idx.weights.body)
	return total, matched
}

// Hit is the JSON shape of a result served to clients.
type Hit struct {
	Slug        []string `json:"slug"`
	Href        string   `json:"href"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Score       float64  `json:"score"`
}

func (r Result) Hit() Hit {
	return Hit{
		Slug:        r.Record.Slug,
		Href:        r.Record.Href(),
		Title:       r.Record.Meta.Title,
		Description: r.Record.Meta.Description,
		Tags:        r.Record.Meta.Tags,
		Score:       r.Score,
	}
}

// Hits converts results for serialization.
func Hits(results []Result) []Hit {
	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = r.Hit()
	}
	return hits
}
