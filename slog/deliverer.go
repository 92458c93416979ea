package slog

import (
	"context"
	"log/slog"
	"time"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

// Ensure LoggingDeliverer implements kindlebeam.Deliverer.
var _ kindlebeam.Deliverer = (*LoggingDeliverer)(nil)

// LoggingDeliverer wraps a Deliverer with operational logging.
type LoggingDeliverer struct {
	next   kindlebeam.Deliverer
	logger *slog.Logger
}

// NewLoggingDeliverer creates a new LoggingDeliverer.
func NewLoggingDeliverer(next kindlebeam.Deliverer, logger *slog.Logger) *LoggingDeliverer {
	return &LoggingDeliverer{next: next, logger: logger}
}

// Deliver delegates to the wrapped deliverer and logs the operation.
func (d *LoggingDeliverer) Deliver(ctx context.Context, article *kindlebeam.Article, att *kindlebeam.Attachment) (err error) {
	defer func(begin time.Time) {
		d.logger.Info("deliver",
			"title", article.DisplayTitle(),
			"filename", att.Filename,
			"bytes", len(att.Data),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Deliver(ctx, article, att)
}
