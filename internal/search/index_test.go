package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"docuwhat/internal/content"
)

func record(slug, title, description, body string, tags ...string) content.Record {
	return content.Record{
		Slug: []string{slug},
		Body: body,
		Meta: content.Meta{Title: title, Description: description, Tags: tags},
	}
}

func sampleRecords() []content.Record {
	return []content.Record{
		record("intro", "Introduction", "What DocuWhat is", "Welcome to the docs."),
		record("install", "Installation", "Install the CLI", "Download the binary and run it."),
		record("deploy", "Deploying", "Ship the static build", "Copy the output folder to any host.", "hosting"),
		record("config", "Configuration", "Settings reference", "deploy targets are configured here"),
		record("search", "Search", "How search ranks pages", "Fuzzy matching over titles.", "fuzzy"),
		record("themes", "Themes", "Override templates", "Templates live in a directory."),
		record("faq", "FAQ", "Common questions", "Ask away."),
	}
}

func slugs(records []content.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Slug[0]
	}
	return out
}

func TestBlankQueryBrowses(t *testing.T) {
	idx := New(sampleRecords(), DefaultOptions())

	want := []string{"intro", "install", "deploy", "config", "search"}
	assert.Equal(t, want, slugs(idx.Query("")))
	assert.Equal(t, want, slugs(idx.Query("   \t")))
}

func TestNonsenseQueryIsEmpty(t *testing.T) {
	idx := New(sampleRecords(), DefaultOptions())

	got := idx.Query("qxzvkwpj")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTitleOutranksBody(t *testing.T) {
	idx := New(sampleRecords(), DefaultOptions())

	got := slugs(idx.Query("deploy"))
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, "deploy", got[0])
	assert.Contains(t, got, "config")
}

func TestSearchIsCaseInsensitiveAndFuzzy(t *testing.T) {
	idx := New(sampleRecords(), DefaultOptions())

	assert.Equal(t, "install", slugs(idx.Query("INSTALATION"))[0])
	assert.Equal(t, "search", slugs(idx.Query("fuzzy"))[0])
}

func TestSearchMatchesTags(t *testing.T) {
	idx := New(sampleRecords(), DefaultOptions())

	results := idx.Search("hosting")
	require.NotEmpty(t, results)
	assert.Equal(t, "deploy", results[0].Record.Slug[0])
	assert.Greater(t, results[0].Score, 0.0)
}

func TestLocationPenalty(t *testing.T) {
	far := record("far", "Far", "", fmt.Sprintf("%0200d needle", 0))
	opts := DefaultOptions()

	assert.Empty(t, New([]content.Record{far}, opts).Query("needle"))

	opts.IgnoreLocation = true
	assert.Len(t, New([]content.Record{far}, opts).Query("needle"), 1)
}

func TestResultLimit(t *testing.T) {
	var records []content.Record
	for i := 0; i < 15; i++ {
		records = append(records, record(fmt.Sprintf("page-%d", i), "Guide", "", ""))
	}
	idx := New(records, DefaultOptions())

	got := idx.Query("guide")
	require.Len(t, got, 10)
	assert.Equal(t, "page-0", got[0].Slug[0], "ties keep index order")
}

func TestNilAndEmptyIndex(t *testing.T) {
	var idx *Index
	assert.Empty(t, idx.Query("anything"))
	assert.Empty(t, idx.Query(""))
	assert.Equal(t, 0, idx.Len())

	empty := New(nil, DefaultOptions())
	assert.NotNil(t, empty.Search(""))
	assert.Empty(t, empty.Search("x"))
}

func TestMatcherScores(t *testing.T) {
	m := matcher{pattern: []rune("abc"), threshold: 0.5, distance: 100}

	s, ok := m.score([]rune("abc"))
	assert.True(t, ok)
	assert.Equal(t, 0.0, s)

	s, ok = m.score([]rune("xxabc"))
	assert.True(t, ok)
	assert.InDelta(t, 0.02, s, 1e-9)

	s, ok = m.score([]rune("abd"))
	assert.True(t, ok)
	assert.InDelta(t, 1.0/3.0, s, 1e-9)

	_, ok = m.score([]rune("xyz"))
	assert.False(t, ok)
}

func TestBrowseProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		limit := rapid.IntRange(0, 10).Draw(t, "limit")
		records := make([]content.Record, n)
		for i := range records {
			records[i] = record(fmt.Sprintf("doc-%d", i), rapid.String().Draw(t, "title"), "", "")
		}
		opts := DefaultOptions()
		opts.BrowseLimit = limit

		got := New(records, opts).Query("")

		want := min(n, limit)
		if len(got) != want {
			t.Fatalf("got %d records, want %d", len(got), want)
		}
		for i, r := range got {
			if r.Slug[0] != records[i].Slug[0] {
				t.Fatalf("record %d is %v, want %v", i, r.Slug, records[i].Slug)
			}
		}
	})
}

func TestFieldNorm(t *testing.T) {
	assert.Equal(t, 1.0, fieldNorm(""))
	assert.Equal(t, 1.0, fieldNorm("Install"))
	assert.Equal(t, 0.707, fieldNorm("Install  guide"))
	assert.Equal(t, 0.5, fieldNorm("a b c d"))
}

func TestShortFieldOutranksLongField(t *testing.T) {
	records := []content.Record{
		record("long", "Install the command line tool on every supported platform", "", ""),
		record("short", "Install", "", ""),
	}

	assert.Equal(t, []string{"short", "long"}, slugs(New(records, DefaultOptions()).Query("install")))

	opts := DefaultOptions()
	opts.IgnoreFieldNorm = true
	assert.Equal(t, []string{"long", "short"}, slugs(New(records, opts).Query("install")), "ties keep index order")
}

func TestEveryMatchingTagCounts(t *testing.T) {
	records := []content.Record{
		record("one", "Alpha", "", "", "guide"),
		record("two", "Beta", "", "", "guide", "guides"),
	}
	results := New(records, DefaultOptions()).Search("guide")
	require.Len(t, results, 2)
	assert.Equal(t, "two", results[0].Record.Slug[0])
	assert.Less(t, results[0].Score, results[1].Score)
}
