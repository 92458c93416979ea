// Package pipeline orchestrates the send cycle: fetch the rendered
// page, extract its main content, repair the extraction against the
// original document, sanitize, build the EPUB and deliver it, recording
// every attempt in the delivery history.
package pipeline

import (
	"context"
	"log/slog"

	kindlebeam "github.com/etanshaul/kindle-beam"
	"github.com/etanshaul/kindle-beam/recovery"
)

// Pipeline wires the collaborators of a send cycle. Fetcher, Extractor
// and Deliverer are required for Send; the rest degrade gracefully when
// nil (no repair, no sanitizing, no history).
type Pipeline struct {
	Fetcher   kindlebeam.Fetcher
	Extractor kindlebeam.Extractor
	Engine    *recovery.Engine
	Sanitizer kindlebeam.Sanitizer
	Builder   kindlebeam.Builder
	Deliverer kindlebeam.Deliverer
	History   kindlebeam.HistoryService
	Logger    *slog.Logger

	session Session
}

// SendOptions modify a single Send call.
type SendOptions struct {
	// Force delivers even when the URL was already sent.
	Force bool
}

// Send runs the full cycle for a URL and returns the recorded
// delivery. A URL that was already delivered is rejected with ECONFLICT
// unless opts.Force is set. A cycle superseded by a newer Send or
// Preview call is abandoned with ECONFLICT and leaves no history
// record.
func (p *Pipeline) Send(ctx context.Context, url string, opts SendOptions) (*kindlebeam.Delivery, error) {
	token := p.session.Begin()
	logger := p.logger()

	if !opts.Force {
		if prior, err := p.priorDelivery(ctx, url); err != nil {
			return nil, err
		} else if prior != nil {
			return prior, kindlebeam.Errorf(kindlebeam.ECONFLICT,
				"already sent on %s", prior.DeliveredAt.Format("2006-01-02"))
		}
	}

	article, err := p.prepare(ctx, token, url)
	if err != nil {
		if kindlebeam.ErrorCode(err) != kindlebeam.ECONFLICT {
			p.record(ctx, &kindlebeam.Article{URL: url}, kindlebeam.DeliveryFailed, err)
		}
		return nil, err
	}

	if p.session.Stale(token) {
		logger.Info("cycle superseded, discarding result", "url", url)
		return nil, kindlebeam.Errorf(kindlebeam.ECONFLICT, "superseded by a newer request")
	}

	return p.SendArticle(ctx, article)
}

// SendArticle delivers an article whose content is already repaired,
// building the document and recording the attempt. The native
// messaging host uses this entry point directly.
func (p *Pipeline) SendArticle(ctx context.Context, article *kindlebeam.Article) (*kindlebeam.Delivery, error) {
	logger := p.logger()

	if err := article.Validate(); err != nil {
		return nil, err
	}
	if p.Builder == nil || p.Deliverer == nil {
		return nil, kindlebeam.Errorf(kindlebeam.EUNAVAILABLE, "delivery is not configured")
	}

	if p.Sanitizer != nil {
		article.Content = p.Sanitizer.Sanitize(article.Content)
	}

	att, err := p.Builder.Build(ctx, article)
	if err != nil {
		logger.Error("document build failed", "url", article.URL, "error", err)
		return p.record(ctx, article, kindlebeam.DeliveryFailed, err), err
	}
	logger.Info("document built", "url", article.URL, "bytes", len(att.Data))

	if err := p.Deliverer.Deliver(ctx, article, att); err != nil {
		logger.Error("delivery failed", "url", article.URL, "error", err)
		return p.record(ctx, article, kindlebeam.DeliveryFailed, err), err
	}
	logger.Info("delivered", "url", article.URL, "title", article.DisplayTitle())

	return p.record(ctx, article, kindlebeam.DeliverySent, nil), nil
}

// Preview runs the cycle up to the repaired, sanitized article without
// delivering it.
func (p *Pipeline) Preview(ctx context.Context, url string) (*kindlebeam.Article, error) {
	token := p.session.Begin()

	article, err := p.prepare(ctx, token, url)
	if err != nil {
		return nil, err
	}
	if p.session.Stale(token) {
		return nil, kindlebeam.Errorf(kindlebeam.ECONFLICT, "superseded by a newer request")
	}
	return article, nil
}

// prepare fetches, extracts, repairs and sanitizes the page at url.
func (p *Pipeline) prepare(ctx context.Context, token Token, url string) (*kindlebeam.Article, error) {
	logger := p.logger()

	if p.Fetcher == nil {
		return nil, kindlebeam.Errorf(kindlebeam.EUNAVAILABLE, "no fetcher configured")
	}
	if p.Extractor == nil {
		return nil, kindlebeam.Errorf(kindlebeam.EUNAVAILABLE, "no extractor configured")
	}

	rawHTML, err := p.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	logger.Info("page fetched", "url", url, "bytes", len(rawHTML))

	if p.session.Stale(token) {
		return nil, kindlebeam.Errorf(kindlebeam.ECONFLICT, "superseded by a newer request")
	}

	res, err := p.Extractor.Extract(rawHTML)
	if err != nil {
		return nil, err
	}
	logger.Info("content extracted", "url", url, "title", res.Title, "length", res.Length)

	content := res.ContentHTML
	if p.Engine != nil {
		if doc, err := recovery.ParseDocument(rawHTML); err == nil {
			content = p.Engine.Recover(doc, content)
		}
	}
	if p.Sanitizer != nil {
		content = p.Sanitizer.Sanitize(content)
	}

	return &kindlebeam.Article{
		Title:   res.Title,
		Content: content,
		URL:     url,
	}, nil
}

// priorDelivery returns the most recent successful delivery of url,
// if any.
func (p *Pipeline) priorDelivery(ctx context.Context, url string) (*kindlebeam.Delivery, error) {
	if p.History == nil {
		return nil, nil
	}

	status := kindlebeam.DeliverySent
	prior, err := p.History.FindDeliveries(ctx, kindlebeam.DeliveryFilter{
		URL:    &url,
		Status: &status,
		Limit:  1,
	})
	if err != nil {
		return nil, err
	}
	if len(prior) == 0 {
		return nil, nil
	}
	return prior[0], nil
}

// record writes the attempt to the history. History failures are
// logged, not returned: the delivery outcome already happened.
func (p *Pipeline) record(ctx context.Context, article *kindlebeam.Article, status string, cause error) *kindlebeam.Delivery {
	d := &kindlebeam.Delivery{
		URL:    article.URL,
		Title:  article.DisplayTitle(),
		Status: status,
	}
	if article.Content != "" {
		d.ContentHash = kindlebeam.HashContent(article.Content)
	}
	if cause != nil {
		d.Error = kindlebeam.ErrorMessage(cause)
	}

	if p.History == nil {
		return d
	}
	if err := p.History.CreateDelivery(ctx, d); err != nil {
		p.logger().Error("recording delivery failed", "url", article.URL, "error", err)
	}
	return d
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}
