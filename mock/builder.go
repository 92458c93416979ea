package mock

import (
	"context"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

var _ kindlebeam.Builder = (*Builder)(nil)

// Builder is a mock implementation of kindlebeam.Builder.
type Builder struct {
	BuildFn func(ctx context.Context, article *kindlebeam.Article) (*kindlebeam.Attachment, error)
}

func (b *Builder) Build(ctx context.Context, article *kindlebeam.Article) (*kindlebeam.Attachment, error) {
	return b.BuildFn(ctx, article)
}
