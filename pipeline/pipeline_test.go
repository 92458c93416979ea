package pipeline_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kindlebeam "github.com/etanshaul/kindle-beam"
	"github.com/etanshaul/kindle-beam/mock"
	"github.com/etanshaul/kindle-beam/pipeline"
	"github.com/etanshaul/kindle-beam/recovery"
)

const pageHTML = `<html><body><article>
<h2>Background</h2>
<p>The first paragraph carries enough text to anchor the heading properly.</p>
<p>More of the article body follows in a second paragraph of real length.</p>
</article></body></html>`

// extractedHTML is what a readability pass typically returns for
// pageHTML: the paragraphs survive, the subheading does not.
const extractedHTML = `<p>The first paragraph carries enough text to anchor the heading properly.</p>
<p>More of the article body follows in a second paragraph of real length.</p>`

func workingFetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(context.Context, string) (string, error) { return pageHTML, nil },
		CloseFn: func() error { return nil },
	}
}

func workingExtractor() *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(string) (*kindlebeam.ExtractResult, error) {
			return &kindlebeam.ExtractResult{
				Title:       "A Story",
				ContentHTML: extractedHTML,
				Text:        "The first paragraph carries enough text. More of the article body follows.",
				Length:      75,
			}, nil
		},
	}
}

func workingBuilder(got *kindlebeam.Article) *mock.Builder {
	return &mock.Builder{
		BuildFn: func(_ context.Context, article *kindlebeam.Article) (*kindlebeam.Attachment, error) {
			if got != nil {
				*got = *article
			}
			return &kindlebeam.Attachment{
				Filename:  "A Story.epub",
				MediaType: "application/epub+zip",
				Data:      []byte("epub-bytes"),
			}, nil
		},
	}
}

func recordingHistory(records *[]*kindlebeam.Delivery) *mock.HistoryService {
	return &mock.HistoryService{
		CreateDeliveryFn: func(_ context.Context, d *kindlebeam.Delivery) error {
			d.ID = "generated-id"
			d.DeliveredAt = time.Now().UTC()
			*records = append(*records, d)
			return nil
		},
		FindDeliveriesFn: func(context.Context, kindlebeam.DeliveryFilter) ([]*kindlebeam.Delivery, error) {
			return nil, nil
		},
	}
}

func TestPipeline_Send(t *testing.T) {
	t.Parallel()

	t.Run("delivers and records a successful cycle", func(t *testing.T) {
		t.Parallel()

		var records []*kindlebeam.Delivery
		var delivered *kindlebeam.Attachment

		p := &pipeline.Pipeline{
			Fetcher:   workingFetcher(),
			Extractor: workingExtractor(),
			Builder:   workingBuilder(nil),
			Deliverer: &mock.Deliverer{
				DeliverFn: func(_ context.Context, _ *kindlebeam.Article, att *kindlebeam.Attachment) error {
					delivered = att
					return nil
				},
			},
			History: recordingHistory(&records),
		}

		d, err := p.Send(context.Background(), "https://example.com/story", pipeline.SendOptions{})
		require.NoError(t, err)

		assert.Equal(t, kindlebeam.DeliverySent, d.Status)
		assert.Equal(t, "A Story", d.Title)
		assert.NotEmpty(t, d.ContentHash)

		require.NotNil(t, delivered)
		assert.Equal(t, "A Story.epub", delivered.Filename)

		require.Len(t, records, 1)
		assert.Equal(t, kindlebeam.DeliverySent, records[0].Status)
	})

	t.Run("repairs extracted content before building", func(t *testing.T) {
		t.Parallel()

		var built kindlebeam.Article
		p := &pipeline.Pipeline{
			Fetcher:   workingFetcher(),
			Extractor: workingExtractor(),
			Engine:    recovery.NewEngine(recovery.DefaultOptions()),
			Builder:   workingBuilder(&built),
			Deliverer: &mock.Deliverer{
				DeliverFn: func(context.Context, *kindlebeam.Article, *kindlebeam.Attachment) error { return nil },
			},
		}

		_, err := p.Send(context.Background(), "https://example.com/story", pipeline.SendOptions{})
		require.NoError(t, err)

		// The subheading dropped by extraction is reinserted.
		assert.Contains(t, built.Content, "Background")
	})

	t.Run("applies the sanitizer to prepared content", func(t *testing.T) {
		t.Parallel()

		var built kindlebeam.Article
		p := &pipeline.Pipeline{
			Fetcher:   workingFetcher(),
			Extractor: workingExtractor(),
			Sanitizer: &mock.Sanitizer{
				SanitizeFn: func(html string) string {
					return strings.ReplaceAll(html, "paragraph", "passage")
				},
			},
			Builder: workingBuilder(&built),
			Deliverer: &mock.Deliverer{
				DeliverFn: func(context.Context, *kindlebeam.Article, *kindlebeam.Attachment) error { return nil },
			},
		}

		_, err := p.Send(context.Background(), "https://example.com/story", pipeline.SendOptions{})
		require.NoError(t, err)
		assert.Contains(t, built.Content, "passage")
		assert.NotContains(t, built.Content, "paragraph")
	})

	t.Run("rejects an already sent url", func(t *testing.T) {
		t.Parallel()

		prior := &kindlebeam.Delivery{
			ID:          "old",
			URL:         "https://example.com/story",
			Status:      kindlebeam.DeliverySent,
			DeliveredAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		}

		delivererCalled := false
		p := &pipeline.Pipeline{
			Fetcher:   workingFetcher(),
			Extractor: workingExtractor(),
			Builder:   workingBuilder(nil),
			Deliverer: &mock.Deliverer{
				DeliverFn: func(context.Context, *kindlebeam.Article, *kindlebeam.Attachment) error {
					delivererCalled = true
					return nil
				},
			},
			History: &mock.HistoryService{
				CreateDeliveryFn: func(context.Context, *kindlebeam.Delivery) error { return nil },
				FindDeliveriesFn: func(_ context.Context, filter kindlebeam.DeliveryFilter) ([]*kindlebeam.Delivery, error) {
					require.NotNil(t, filter.URL)
					return []*kindlebeam.Delivery{prior}, nil
				},
			},
		}

		got, err := p.Send(context.Background(), "https://example.com/story", pipeline.SendOptions{})
		assert.Equal(t, kindlebeam.ECONFLICT, kindlebeam.ErrorCode(err))
		assert.Equal(t, prior, got)
		assert.False(t, delivererCalled)

		// Force bypasses the duplicate check.
		_, err = p.Send(context.Background(), "https://example.com/story", pipeline.SendOptions{Force: true})
		require.NoError(t, err)
		assert.True(t, delivererCalled)
	})

	t.Run("records a failed delivery", func(t *testing.T) {
		t.Parallel()

		var records []*kindlebeam.Delivery
		p := &pipeline.Pipeline{
			Fetcher:   workingFetcher(),
			Extractor: workingExtractor(),
			Builder:   workingBuilder(nil),
			Deliverer: &mock.Deliverer{
				DeliverFn: func(context.Context, *kindlebeam.Article, *kindlebeam.Attachment) error {
					return kindlebeam.Errorf(kindlebeam.EDELIVERY, "sending failed: auth rejected")
				},
			},
			History: recordingHistory(&records),
		}

		_, err := p.Send(context.Background(), "https://example.com/story", pipeline.SendOptions{})
		assert.Equal(t, kindlebeam.EDELIVERY, kindlebeam.ErrorCode(err))

		require.Len(t, records, 1)
		assert.Equal(t, kindlebeam.DeliveryFailed, records[0].Status)
		assert.Contains(t, records[0].Error, "auth rejected")
	})

	t.Run("records a failed fetch", func(t *testing.T) {
		t.Parallel()

		var records []*kindlebeam.Delivery
		p := &pipeline.Pipeline{
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) {
					return "", kindlebeam.Errorf(kindlebeam.EUNAVAILABLE, "browser did not start")
				},
				CloseFn: func() error { return nil },
			},
			Extractor: workingExtractor(),
			History:   recordingHistory(&records),
		}

		_, err := p.Send(context.Background(), "https://example.com/story", pipeline.SendOptions{})
		assert.Equal(t, kindlebeam.EUNAVAILABLE, kindlebeam.ErrorCode(err))

		require.Len(t, records, 1)
		assert.Equal(t, kindlebeam.DeliveryFailed, records[0].Status)
		assert.Equal(t, "https://example.com/story", records[0].URL)
	})

	t.Run("abandons a cycle superseded by a newer one", func(t *testing.T) {
		t.Parallel()

		var p *pipeline.Pipeline
		var deliveries int

		fetches := 0
		p = &pipeline.Pipeline{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					fetches++
					if fetches == 1 {
						// A newer request arrives while the first
						// cycle is still fetching.
						_, err := p.Send(ctx, "https://example.com/newer", pipeline.SendOptions{})
						require.NoError(t, err)
					}
					return pageHTML, nil
				},
				CloseFn: func() error { return nil },
			},
			Extractor: workingExtractor(),
			Builder:   workingBuilder(nil),
			Deliverer: &mock.Deliverer{
				DeliverFn: func(context.Context, *kindlebeam.Article, *kindlebeam.Attachment) error {
					deliveries++
					return nil
				},
			},
		}

		_, err := p.Send(context.Background(), "https://example.com/older", pipeline.SendOptions{})
		assert.Equal(t, kindlebeam.ECONFLICT, kindlebeam.ErrorCode(err))

		// Only the newer cycle delivered.
		assert.Equal(t, 1, deliveries)
	})

	t.Run("requires fetcher and extractor", func(t *testing.T) {
		t.Parallel()

		p := &pipeline.Pipeline{}
		_, err := p.Send(context.Background(), "https://example.com", pipeline.SendOptions{})
		assert.Equal(t, kindlebeam.EUNAVAILABLE, kindlebeam.ErrorCode(err))
	})
}

func TestPipeline_SendArticle(t *testing.T) {
	t.Parallel()

	t.Run("delivers pre-repaired content directly", func(t *testing.T) {
		t.Parallel()

		var built kindlebeam.Article
		p := &pipeline.Pipeline{
			Builder: workingBuilder(&built),
			Deliverer: &mock.Deliverer{
				DeliverFn: func(context.Context, *kindlebeam.Article, *kindlebeam.Attachment) error { return nil },
			},
		}

		d, err := p.SendArticle(context.Background(), &kindlebeam.Article{
			Title:   "From The Extension",
			Content: "<p>Already repaired content arrives from the browser.</p>",
			URL:     "https://example.com/ext",
		})
		require.NoError(t, err)
		assert.Equal(t, kindlebeam.DeliverySent, d.Status)
		assert.Equal(t, "From The Extension", built.Title)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		t.Parallel()

		p := &pipeline.Pipeline{
			Builder: workingBuilder(nil),
			Deliverer: &mock.Deliverer{
				DeliverFn: func(context.Context, *kindlebeam.Article, *kindlebeam.Attachment) error { return nil },
			},
		}
		_, err := p.SendArticle(context.Background(), &kindlebeam.Article{Title: "No Body"})
		assert.Equal(t, kindlebeam.EINVALID, kindlebeam.ErrorCode(err))
	})

	t.Run("fails without a configured deliverer", func(t *testing.T) {
		t.Parallel()

		p := &pipeline.Pipeline{Builder: workingBuilder(nil)}
		_, err := p.SendArticle(context.Background(), &kindlebeam.Article{
			Content: "<p>content</p>",
		})
		assert.Equal(t, kindlebeam.EUNAVAILABLE, kindlebeam.ErrorCode(err))
	})
}

func TestPipeline_Preview(t *testing.T) {
	t.Parallel()

	t.Run("returns the repaired article without delivering", func(t *testing.T) {
		t.Parallel()

		p := &pipeline.Pipeline{
			Fetcher:   workingFetcher(),
			Extractor: workingExtractor(),
			Engine:    recovery.NewEngine(recovery.DefaultOptions()),
		}

		article, err := p.Preview(context.Background(), "https://example.com/story")
		require.NoError(t, err)

		assert.Equal(t, "A Story", article.Title)
		assert.Contains(t, article.Content, "Background")
		assert.Equal(t, "https://example.com/story", article.URL)
	})

	t.Run("propagates extraction failures", func(t *testing.T) {
		t.Parallel()

		p := &pipeline.Pipeline{
			Fetcher: workingFetcher(),
			Extractor: &mock.Extractor{
				ExtractFn: func(string) (*kindlebeam.ExtractResult, error) {
					return nil, kindlebeam.Errorf(kindlebeam.EUNPARSABLE, "no content found")
				},
			},
		}

		_, err := p.Preview(context.Background(), "https://example.com/story")
		assert.Equal(t, kindlebeam.EUNPARSABLE, kindlebeam.ErrorCode(err))
	})
}

func TestSession(t *testing.T) {
	t.Parallel()

	var s pipeline.Session

	first := s.Begin()
	assert.False(t, s.Stale(first))

	second := s.Begin()
	assert.True(t, s.Stale(first))
	assert.False(t, s.Stale(second))
}
