package trafilatura

import (
	"bytes"
	"strings"
	"unicode/utf8"

	kindlebeam "github.com/etanshaul/kindle-beam"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements kindlebeam.Extractor at compile time.
var _ kindlebeam.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
// An alternative to the readability extractor, selectable from the CLI.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (result *kindlebeam.ExtractResult, err error) {
	if rawHTML == "" {
		return nil, kindlebeam.Errorf(kindlebeam.EINVALID, "empty HTML input")
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = kindlebeam.Errorf(kindlebeam.EINTERNAL, "extraction failed: %v", r)
		}
	}()

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	res, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, kindlebeam.Errorf(kindlebeam.EUNPARSABLE, "could not parse content: %v", err)
	}

	var contentHTML string
	if res.ContentNode != nil {
		contentHTML, err = renderNode(res.ContentNode)
		if err != nil {
			return nil, err
		}
	}
	if contentHTML == "" && res.ContentText == "" {
		return nil, kindlebeam.Errorf(kindlebeam.EUNPARSABLE, "no readable content found")
	}

	return &kindlebeam.ExtractResult{
		Title:       res.Metadata.Title,
		ContentHTML: contentHTML,
		Text:        res.ContentText,
		Length:      utf8.RuneCountInString(res.ContentText),
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
