// Package epub builds self-contained EPUB documents from articles.
// Remote images referenced by the article are downloaded and embedded
// so the document renders offline on the device; downloads that fail
// leave the remote URL in place rather than failing the build.
package epub

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	goepub "github.com/go-shiori/go-epub"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

// MediaType is the MIME type of documents produced by Builder.
const MediaType = "application/epub+zip"

// DefaultImageTimeout bounds each individual image download.
const DefaultImageTimeout = 10 * time.Second

// DefaultConcurrency is the number of parallel image downloads.
const DefaultConcurrency = 4

// DefaultHostRPS is the per-host image request rate.
const DefaultHostRPS = 4.0

// maxFilenameLen bounds the title-derived part of the attachment
// filename so library views stay readable.
const maxFilenameLen = 50

var rxFilenameUnsafe = regexp.MustCompile(`[^\w\s-]`)

// Ensure Builder implements kindlebeam.Builder at compile time.
var _ kindlebeam.Builder = (*Builder)(nil)

// Builder assembles EPUB attachments from articles.
type Builder struct {
	client      *http.Client
	limiter     *HostLimiter
	concurrency int
	timeout     time.Duration
}

// Option configures a Builder.
type Option func(*Builder)

// WithHTTPClient sets the client used for image downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Builder) {
		b.client = c
	}
}

// WithConcurrency sets the number of parallel image downloads.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		b.concurrency = n
	}
}

// WithImageTimeout bounds each individual image download.
func WithImageTimeout(d time.Duration) Option {
	return func(b *Builder) {
		b.timeout = d
	}
}

// WithHostRPS sets the per-host image request rate.
func WithHostRPS(rps float64) Option {
	return func(b *Builder) {
		b.limiter = NewHostLimiter(rps)
	}
}

// NewBuilder creates a Builder with sensible download defaults.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		concurrency: DefaultConcurrency,
		timeout:     DefaultImageTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.client == nil {
		b.client = &http.Client{Timeout: b.timeout}
	}
	if b.limiter == nil {
		b.limiter = NewHostLimiter(DefaultHostRPS)
	}
	return b
}

// Build converts the article into an EPUB attachment. Images are
// localized via localizeImages before the content is added as the
// single section of the book.
func (b *Builder) Build(ctx context.Context, article *kindlebeam.Article) (*kindlebeam.Attachment, error) {
	if article == nil {
		return nil, kindlebeam.Errorf(kindlebeam.EINVALID, "no article provided")
	}
	if err := article.Validate(); err != nil {
		return nil, err
	}

	title := article.DisplayTitle()

	book, err := goepub.NewEpub(title)
	if err != nil {
		return nil, kindlebeam.Errorf(kindlebeam.EINTERNAL, "create epub: %v", err)
	}
	book.SetDescription("Sent via Kindle Beam")

	tmpDir, err := os.MkdirTemp("", "kindle_beam_")
	if err != nil {
		return nil, kindlebeam.Errorf(kindlebeam.EINTERNAL, "create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	content, err := b.localizeImages(ctx, book, article, tmpDir)
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf("<h1>%s</h1>\n%s", htmlEscape(title), content)
	if _, err := book.AddSection(body, title, "article.xhtml", ""); err != nil {
		return nil, kindlebeam.Errorf(kindlebeam.EINTERNAL, "add section: %v", err)
	}

	var buf bytes.Buffer
	if _, err := book.WriteTo(&buf); err != nil {
		return nil, kindlebeam.Errorf(kindlebeam.EINTERNAL, "write epub: %v", err)
	}

	return &kindlebeam.Attachment{
		Filename:  Filename(title),
		MediaType: MediaType,
		Data:      buf.Bytes(),
	}, nil
}

// Filename derives a mail-safe attachment filename from a title.
// Characters outside word characters, spaces and hyphens are dropped
// and the result is capped at 50 characters before the extension.
func Filename(title string) string {
	name := rxFilenameUnsafe.ReplaceAllString(title, "")
	name = strings.TrimSpace(name)
	if len(name) > maxFilenameLen {
		name = strings.TrimSpace(name[:maxFilenameLen])
	}
	if name == "" {
		name = "article"
	}
	return name + ".epub"
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
)

func htmlEscape(s string) string {
	return htmlEscaper.Replace(s)
}
