package readability_test

import (
	"errors"
	"io"
	"net/url"
	"testing"

	kindlebeam "github.com/etanshaul/kindle-beam"
	"github.com/etanshaul/kindle-beam/readability"
	goreadability "github.com/go-shiori/go-readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_RejectsEmptyInput(t *testing.T) {
	t.Parallel()

	ext := readability.NewExtractor()
	_, err := ext.Extract("")

	require.Error(t, err)
	assert.Equal(t, kindlebeam.EINVALID, kindlebeam.ErrorCode(err))
}

func TestExtractor_UnavailableAlgorithm(t *testing.T) {
	t.Parallel()

	ext := readability.NewExtractorWithParser(nil)
	_, err := ext.Extract("<html><body><p>content</p></body></html>")

	require.Error(t, err)
	assert.Equal(t, kindlebeam.EUNAVAILABLE, kindlebeam.ErrorCode(err))
}

func TestExtractor_ParserErrorIsUnparsable(t *testing.T) {
	t.Parallel()

	ext := readability.NewExtractorWithParser(func(io.Reader, *url.URL) (goreadability.Article, error) {
		return goreadability.Article{}, errors.New("boom")
	})
	_, err := ext.Extract("<html><body><p>content</p></body></html>")

	require.Error(t, err)
	assert.Equal(t, kindlebeam.EUNPARSABLE, kindlebeam.ErrorCode(err))
	assert.Contains(t, kindlebeam.ErrorMessage(err), "boom")
}

func TestExtractor_EmptyResultIsUnparsable(t *testing.T) {
	t.Parallel()

	ext := readability.NewExtractorWithParser(func(io.Reader, *url.URL) (goreadability.Article, error) {
		return goreadability.Article{Title: "Empty"}, nil
	})
	_, err := ext.Extract("<html><body><p>content</p></body></html>")

	require.Error(t, err)
	assert.Equal(t, kindlebeam.EUNPARSABLE, kindlebeam.ErrorCode(err))
}

func TestExtractor_RecoversParserPanic(t *testing.T) {
	t.Parallel()

	ext := readability.NewExtractorWithParser(func(io.Reader, *url.URL) (goreadability.Article, error) {
		panic("algorithm exploded")
	})

	var result *kindlebeam.ExtractResult
	var err error
	require.NotPanics(t, func() {
		result, err = ext.Extract("<html><body><p>content</p></body></html>")
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, kindlebeam.EINTERNAL, kindlebeam.ErrorCode(err))
	assert.Contains(t, kindlebeam.ErrorMessage(err), "algorithm exploded")
}

func TestExtractor_ExtractsTitle(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Page Title</title></head>
<body><article><p>Content</p></article></body>
</html>`

	ext := readability.NewExtractor()
	result, err := ext.Extract(html)

	require.NoError(t, err)
	assert.Equal(t, "Page Title", result.Title)
}

func TestExtractor_PopulatesTextAndLength(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<article><p>This is the main article content that should be preserved in the output.</p></article>
</body>
</html>`

	ext := readability.NewExtractor()
	result, err := ext.Extract(html)

	require.NoError(t, err)
	assert.Contains(t, result.Text, "main article content")
	assert.Greater(t, result.Length, 0)
}

func TestExtractor_RemovesNavigation(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<nav><a href="/home">Home Nav Link</a><a href="/about">About Nav Link</a></nav>
<article><p>This is the main article content that should be preserved in the output.</p></article>
</body>
</html>`

	ext := readability.NewExtractor()
	result, err := ext.Extract(html)

	require.NoError(t, err)
	assert.NotContains(t, result.ContentHTML, "Home Nav Link")
	assert.NotContains(t, result.ContentHTML, "About Nav Link")
}

func TestExtractor_KeepsMainArticleContent(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<nav><a href="/home">Home</a></nav>
<article><p>This is the important article paragraph text that must be kept.</p></article>
<footer><p>Footer copyright text 2024</p></footer>
</body>
</html>`

	ext := readability.NewExtractor()
	result, err := ext.Extract(html)

	require.NoError(t, err)
	assert.Contains(t, result.ContentHTML, "important article paragraph text")
	assert.NotContains(t, result.ContentHTML, "Footer copyright text")
}

func TestExtractor_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<article><p>Stable content that the extractor reads but never alters.</p></article>
</body>
</html>`
	before := html

	ext := readability.NewExtractor()
	_, err := ext.Extract(html)

	require.NoError(t, err)
	assert.Equal(t, before, html)
}
