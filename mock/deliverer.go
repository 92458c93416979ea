package mock

import (
	"context"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

var _ kindlebeam.Deliverer = (*Deliverer)(nil)

// Deliverer is a mock implementation of kindlebeam.Deliverer.
type Deliverer struct {
	DeliverFn func(ctx context.Context, article *kindlebeam.Article, att *kindlebeam.Attachment) error
}

func (d *Deliverer) Deliver(ctx context.Context, article *kindlebeam.Article, att *kindlebeam.Attachment) error {
	return d.DeliverFn(ctx, article, att)
}
