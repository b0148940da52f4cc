// cmd/docuwhat/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"docuwhat/internal/config"
	"docuwhat/internal/logfields"
)

var version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	Config  string           `short:"c" help:"Configuration file path." default:"${config_file}" type:"path"`
	Verbose bool             `short:"v" help:"Enable debug logging."`
	Version kong.VersionFlag `help:"Print the version and exit."`

	ctx context.Context
}

type CLI struct {
	Globals

	Build  BuildCmd  `cmd:"" help:"Render the site into the output directory."`
	Serve  ServeCmd  `cmd:"" help:"Run the development server with live reload."`
	Search SearchCmd `cmd:"" help:"Query the search index from the terminal."`
	Tree   TreeCmd   `cmd:"" help:"Print the navigation tree."`
	Init   InitCmd   `cmd:"" help:"Create a new documentation site."`
	New    NewCmd    `cmd:"" help:"Create a new document from the archetype."`
}

func main() {
	cli := CLI{}
	kctx := kong.Parse(&cli,
		kong.Name("docuwhat"),
		kong.Description("docuwhat - a documentation site generator and development server"),
		kong.UsageOnError(),
		kong.Vars{
			"version":     version,
			"config_file": config.DefaultFile,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cli.Globals.ctx = ctx

	if err := kctx.Run(&cli.Globals); err != nil {
		slog.Error("Operation failed", logfields.Error(err))
		stop()
		os.Exit(1)
	}
}

// setupLogger installs the default logger from the config, raised to debug
// by --verbose.
func setupLogger(cfg config.LogConfig, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
