package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuwhat/internal/config"
	"docuwhat/internal/content"
)

func newParser(t *testing.T, cli *CLI) *kong.Kong {
	t.Helper()
	parser, err := kong.New(cli,
		kong.Name("docuwhat"),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
		kong.Vars{"version": "test", "config_file": config.DefaultFile},
	)
	require.NoError(t, err)
	return parser
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		args    []string
		command string
		check   func(t *testing.T, cli *CLI)
	}{
		{
			args:    []string{"build", "--output", "out", "--no-clean", "--strict"},
			command: "build",
			check: func(t *testing.T, cli *CLI) {
				assert.True(t, filepath.IsAbs(cli.Build.Output))
				assert.False(t, cli.Build.Clean)
				assert.True(t, cli.Build.Strict)
			},
		},
		{
			args:    []string{"serve", "-p", "8080", "--no-live-reload"},
			command: "serve",
			check: func(t *testing.T, cli *CLI) {
				assert.Equal(t, 8080, cli.Serve.Port)
				assert.True(t, cli.Serve.NoLiveReload)
			},
		},
		{
			args:    []string{"search", "getting", "started", "-n", "3"},
			command: "search",
			check: func(t *testing.T, cli *CLI) {
				assert.Equal(t, []string{"getting", "started"}, cli.Search.Query)
				assert.Equal(t, 3, cli.Search.Limit)
			},
		},
		{
			args:    []string{"new", "guides/setup", "--tags", "a,b", "--order", "2"},
			command: "new",
			check: func(t *testing.T, cli *CLI) {
				assert.Equal(t, []string{"a", "b"}, cli.New.Tags)
				assert.Equal(t, "2", cli.New.Order)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			var cli CLI
			kctx, err := newParser(t, &cli).Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.command, strings.Fields(kctx.Command())[0])
			assert.True(t, filepath.IsAbs(cli.Config))
			tt.check(t, &cli)
		})
	}
}

func TestBuildCleansByDefault(t *testing.T) {
	var cli CLI
	_, err := newParser(t, &cli).Parse([]string{"build"})
	require.NoError(t, err)
	assert.True(t, cli.Build.Clean)
	assert.Equal(t, config.DefaultFile, filepath.Base(cli.Config))
}

func TestInitNewBuild(t *testing.T) {
	dir := t.TempDir()
	g := &Globals{Config: filepath.Join(dir, config.DefaultFile), ctx: context.Background()}

	require.NoError(t, (&InitCmd{Dir: dir}).Run(g))
	require.Error(t, (&InitCmd{Dir: dir}).Run(g))

	require.NoError(t, (&NewCmd{Path: "guides/advanced-setup.md", Tags: []string{"ops"}, Order: "5"}).Run(g))
	data, err := os.ReadFile(filepath.Join(dir, "content", "guides", "advanced-setup.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Advanced Setup")
	assert.Contains(t, string(data), "order: 5")

	require.Error(t, (&NewCmd{Path: "guides/advanced-setup"}).Run(g))
	require.Error(t, (&NewCmd{Path: "faq", Order: "first"}).Run(g))

	require.NoError(t, (&BuildCmd{Clean: true}).Run(g))
	for _, p := range []string{
		"index.html",
		"404.html",
		"getting-started/index.html",
		"guides/index.html",
		"guides/installation/index.html",
		"guides/advanced-setup/index.html",
		"api/content.json",
		"api/navigation.json",
		"assets/chroma.css",
	} {
		assert.FileExists(t, filepath.Join(dir, "public", filepath.FromSlash(p)))
	}
	page, err := os.ReadFile(filepath.Join(dir, "public", "getting-started", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `href="/guides/installation"`)

	require.NoError(t, (&SearchCmd{Query: []string{"installation"}}).Run(g))
	require.NoError(t, (&TreeCmd{JSON: true}).Run(g))
}

func TestPrintTree(t *testing.T) {
	nav := []content.Node{
		{Title: "Intro", Href: "/intro"},
		{Title: "Guides", Href: "/guides", Children: []content.Node{
			{Title: "Install", Href: "/guides/install"},
		}},
	}
	var buf bytes.Buffer
	printTree(&buf, nav, 0)
	assert.Equal(t, "- Intro (/intro)\n+ Guides (/guides)\n  - Install (/guides/install)\n", buf.String())
}
