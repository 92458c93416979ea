package main

import (
	"context"
	"io"
	"log/slog"

	kindlebeam "github.com/etanshaul/kindle-beam"
	"github.com/etanshaul/kindle-beam/pipeline"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	ConfigPath string
	Pipeline   *pipeline.Pipeline
	Converter  kindlebeam.Converter
	History    kindlebeam.HistoryService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log pipeline progress to stderr"`

	Send    SendCmd    `cmd:"" help:"Extract an article and send it to your Kindle"`
	Preview PreviewCmd `cmd:"" help:"Show the extracted article without sending"`
	History HistoryCmd `cmd:"" help:"List past deliveries"`
	Config  ConfigCmd  `cmd:"" help:"Show configuration status"`
}

// SendCmd is the "send" subcommand.
type SendCmd struct {
	URL       string `arg:"" help:"Article URL"`
	Extractor string `short:"e" default:"readability" enum:"readability,trafilatura" help:"Extraction algorithm"`
	Static    bool   `short:"s" help:"Fetch without a browser (no JavaScript rendering)"`
	Force     bool   `short:"f" help:"Send even if the URL was already delivered"`
}

// PreviewCmd is the "preview" subcommand.
type PreviewCmd struct {
	URL       string `arg:"" help:"Article URL"`
	Extractor string `short:"e" default:"readability" enum:"readability,trafilatura" help:"Extraction algorithm"`
	Static    bool   `short:"s" help:"Fetch without a browser (no JavaScript rendering)"`
	Markdown  bool   `short:"m" help:"Render the preview as Markdown"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Limit  int    `short:"n" default:"20" help:"Maximum entries to show"`
	Status string `help:"Filter by status (sent or failed)"`
}

// ConfigCmd is the "config" subcommand.
type ConfigCmd struct{}
