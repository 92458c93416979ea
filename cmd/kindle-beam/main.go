package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	kindlebeam "github.com/etanshaul/kindle-beam"
	"github.com/etanshaul/kindle-beam/bluemonday"
	"github.com/etanshaul/kindle-beam/epub"
	"github.com/etanshaul/kindle-beam/htmltomarkdown"
	beamhttp "github.com/etanshaul/kindle-beam/http"
	"github.com/etanshaul/kindle-beam/pipeline"
	"github.com/etanshaul/kindle-beam/readability"
	"github.com/etanshaul/kindle-beam/recovery"
	"github.com/etanshaul/kindle-beam/rod"
	beamslog "github.com/etanshaul/kindle-beam/slog"
	"github.com/etanshaul/kindle-beam/smtp"
	"github.com/etanshaul/kindle-beam/sqlite"
	"github.com/etanshaul/kindle-beam/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Config path. Set before calling Run().
	ConfigPath string

	// SQLite database backing the delivery history.
	DB *sqlite.DB

	// History service, exposed for end-to-end testing.
	History kindlebeam.HistoryService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:     defaultDBPath(),
		ConfigPath: kindlebeam.DefaultConfigPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:        ctx,
		Stdout:     stdout,
		Stderr:     stderr,
		ConfigPath: m.ConfigPath,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("kindle-beam"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'kindle-beam --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	// History storage is needed by send and history commands.
	if cmd == "send" || cmd == "history" {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set KINDLE_BEAM_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()

		m.History = sqlite.NewHistoryService(m.DB)
		deps.History = m.History
	}

	// Commands that process a page need the capture side of the pipeline.
	if cmd == "send" || cmd == "preview" {
		fetcher, err := m.newFetcher(cli, stderr)
		if err != nil {
			return err
		}
		defer fetcher.Close()

		extractorName := cli.Send.Extractor
		if cmd == "preview" {
			extractorName = cli.Preview.Extractor
		}
		extractor, err := newExtractor(extractorName)
		if err != nil {
			return err
		}

		deps.Pipeline = &pipeline.Pipeline{
			Fetcher:   beamslog.NewLoggingFetcher(fetcher, logger),
			Extractor: beamslog.NewLoggingExtractor(extractor, logger),
			Engine:    recovery.NewEngine(recovery.DefaultOptions()),
			Sanitizer: bluemonday.NewSanitizer(),
			History:   deps.History,
			Logger:    logger,
		}
		deps.Converter = htmltomarkdown.NewConverter()
	}

	// Only send needs delivery credentials.
	if cmd == "send" {
		cfg, err := kindlebeam.LoadConfig(m.ConfigPath)
		if err != nil {
			fmt.Fprintf(stderr, "Hint: Run 'kindle-beam config' to check your configuration\n")
			return err
		}

		deliverer, err := smtp.NewDeliverer(cfg)
		if err != nil {
			return err
		}

		deps.Pipeline.Builder = epub.NewBuilder()
		deps.Pipeline.Deliverer = beamslog.NewLoggingDeliverer(deliverer, logger)
	}

	return kongCtx.Run(deps)
}

// newFetcher starts the browser fetcher, or the static HTTP fetcher
// when --static was given.
func (m *Main) newFetcher(cli *CLI, stderr io.Writer) (kindlebeam.Fetcher, error) {
	if cli.Send.Static || cli.Preview.Static {
		return beamhttp.NewFetcher(), nil
	}

	fetcher, err := rod.NewFetcher()
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed; pass --static to fetch without a browser")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return fetcher, nil
}

func newExtractor(name string) (kindlebeam.Extractor, error) {
	switch name {
	case "", "readability":
		return readability.NewExtractor(), nil
	case "trafilatura":
		return trafilatura.NewExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown extractor %q (available: readability, trafilatura)", name)
	}
}

func defaultDBPath() string {
	if path := os.Getenv("KINDLE_BEAM_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "history.db"
	}
	dir := filepath.Join(home, ".config", "kindle-beam")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "history.db")
}
