// Command beam-host is the native messaging host the browser extension
// talks to. It reads framed send requests on stdin, builds and delivers
// the document, and writes framed responses on stdout. All failures,
// including missing configuration, are reported inside the protocol so
// the extension can show them; the host itself never crashes on them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	kindlebeam "github.com/etanshaul/kindle-beam"
	"github.com/etanshaul/kindle-beam/bluemonday"
	"github.com/etanshaul/kindle-beam/epub"
	"github.com/etanshaul/kindle-beam/nativemsg"
	"github.com/etanshaul/kindle-beam/pipeline"
	"github.com/etanshaul/kindle-beam/smtp"
	"github.com/etanshaul/kindle-beam/sqlite"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Stdout belongs to the protocol; logs go to a file so they never
	// corrupt a frame.
	logger, closeLog := newLogger()
	defer closeLog()

	p := &pipeline.Pipeline{
		Sanitizer: bluemonday.NewSanitizer(),
		Builder:   epub.NewBuilder(),
		Logger:    logger,
	}

	// History is best-effort for the host: a broken database must not
	// block deliveries.
	db := sqlite.NewDB(defaultDBPath())
	if err := db.Open(); err != nil {
		logger.Error("history unavailable", "error", err)
	} else {
		defer db.Close()
		p.History = sqlite.NewHistoryService(db)
	}

	host := &nativemsg.Host{
		In:     os.Stdin,
		Out:    os.Stdout,
		Logger: logger,
		Send: func(ctx context.Context, article *kindlebeam.Article) error {
			// The configuration is re-read per request so the user can
			// fix it without restarting the browser.
			cfg, err := kindlebeam.LoadConfig(kindlebeam.DefaultConfigPath())
			if err != nil {
				return err
			}
			deliverer, err := smtp.NewDeliverer(cfg)
			if err != nil {
				return err
			}
			p.Deliverer = deliverer

			_, err = p.SendArticle(ctx, article)
			return err
		},
	}

	return host.Run(ctx)
}

// newLogger logs to ~/.config/kindle-beam/beam-host.log, falling back
// to a discarding logger when the file cannot be opened.
func newLogger() (*slog.Logger, func()) {
	path := filepath.Join(configDir(), "beam-host.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return slog.New(slog.DiscardHandler), func() {}
	}
	return slog.New(slog.NewTextHandler(f, nil)), func() { _ = f.Close() }
}

func defaultDBPath() string {
	if path := os.Getenv("KINDLE_BEAM_DB"); path != "" {
		return path
	}
	return filepath.Join(configDir(), "history.db")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	dir := filepath.Join(home, ".config", "kindle-beam")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}
