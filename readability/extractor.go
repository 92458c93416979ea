package readability

import (
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	kindlebeam "github.com/etanshaul/kindle-beam"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements kindlebeam.Extractor at compile time.
var _ kindlebeam.Extractor = (*Extractor)(nil)

// ParseFunc is the extraction algorithm. It matches the signature of
// readability.FromReader so the real library plugs in directly and tests
// can substitute failing or panicking algorithms.
type ParseFunc func(input io.Reader, pageURL *url.URL) (readability.Article, error)

// Extractor wraps go-readability to extract main content from HTML.
//
// The algorithm always runs on a tree parsed from the input string, so
// the caller's document is never mutated. Failures never escape as
// panics; they are converted to coded errors.
type Extractor struct {
	parse ParseFunc
}

// NewExtractor creates an Extractor backed by go-readability.
func NewExtractor() *Extractor {
	return &Extractor{parse: readability.FromReader}
}

// NewExtractorWithParser creates an Extractor with a custom extraction
// algorithm. A nil parse function models the algorithm being unavailable:
// Extract then fails with EUNAVAILABLE.
func NewExtractorWithParser(parse ParseFunc) *Extractor {
	return &Extractor{parse: parse}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (result *kindlebeam.ExtractResult, err error) {
	if e.parse == nil {
		return nil, kindlebeam.Errorf(kindlebeam.EUNAVAILABLE, "readability library not available")
	}
	if rawHTML == "" {
		return nil, kindlebeam.Errorf(kindlebeam.EINVALID, "empty HTML input")
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = kindlebeam.Errorf(kindlebeam.EINTERNAL, "extraction failed: %v", r)
		}
	}()

	article, err := e.parse(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, kindlebeam.Errorf(kindlebeam.EUNPARSABLE, "could not parse content: %v", err)
	}

	if article.Content == "" && article.TextContent == "" {
		return nil, kindlebeam.Errorf(kindlebeam.EUNPARSABLE, "no readable content found")
	}

	length := article.Length
	if length == 0 {
		length = utf8.RuneCountInString(article.TextContent)
	}

	return &kindlebeam.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
		Text:        article.TextContent,
		Length:      length,
	}, nil
}
