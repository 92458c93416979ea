package slog

import (
	"log/slog"
	"time"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

// Ensure LoggingExtractor implements kindlebeam.Extractor.
var _ kindlebeam.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with operational logging.
type LoggingExtractor struct {
	next   kindlebeam.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next kindlebeam.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the operation.
func (e *LoggingExtractor) Extract(html string) (res *kindlebeam.ExtractResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"input_bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		}
		if res != nil {
			attrs = append(attrs, "title", res.Title, "length", res.Length)
		}
		e.logger.Info("extract", attrs...)
	}(time.Now())
	return e.next.Extract(html)
}
