package epub_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kindlebeam "github.com/etanshaul/kindle-beam"
	"github.com/etanshaul/kindle-beam/epub"
	beamhttp "github.com/etanshaul/kindle-beam/http"
)

// tinyPNG is a 1x1 transparent PNG.
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestBuilder_Build(t *testing.T) {
	t.Parallel()

	t.Run("produces an epub attachment", func(t *testing.T) {
		t.Parallel()

		b := epub.NewBuilder()
		att, err := b.Build(context.Background(), &kindlebeam.Article{
			Title:   "A Quiet Place",
			Content: "<p>Some long enough paragraph of article text.</p>",
			URL:     "https://example.com/quiet",
		})
		require.NoError(t, err)

		assert.Equal(t, "A Quiet Place.epub", att.Filename)
		assert.Equal(t, epub.MediaType, att.MediaType)
		assert.NotEmpty(t, att.Data)

		// EPUB files are zip archives starting with PK.
		assert.True(t, bytes.HasPrefix(att.Data, []byte("PK")))
	})

	t.Run("embeds downloaded images", func(t *testing.T) {
		t.Parallel()

		var gotUA atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA.Store(r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(tinyPNG)
		}))
		defer srv.Close()

		b := epub.NewBuilder()
		att, err := b.Build(context.Background(), &kindlebeam.Article{
			Title:   "Photo Essay",
			Content: `<p>Intro text for the essay.</p><img src="` + srv.URL + `/photo.png" alt="A photo">`,
			URL:     srv.URL + "/essay",
		})
		require.NoError(t, err)

		assert.Equal(t, beamhttp.UserAgent, gotUA.Load())

		section := sectionContent(t, att.Data)
		assert.Contains(t, section, `images/img_`)
		assert.NotContains(t, section, srv.URL+"/photo.png")
		assert.True(t, hasImageEntry(t, att.Data, ".png"))
	})

	t.Run("resolves relative image urls against the article url", func(t *testing.T) {
		t.Parallel()

		var gotPath atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath.Store(r.URL.Path)
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write(tinyPNG)
		}))
		defer srv.Close()

		b := epub.NewBuilder()
		_, err := b.Build(context.Background(), &kindlebeam.Article{
			Title:   "Relative",
			Content: `<p>Body text goes here.</p><img src="/pics/a.jpg">`,
			URL:     srv.URL + "/articles/relative",
		})
		require.NoError(t, err)

		assert.Equal(t, "/pics/a.jpg", gotPath.Load())
	})

	t.Run("keeps the remote url when a download fails", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		b := epub.NewBuilder()
		att, err := b.Build(context.Background(), &kindlebeam.Article{
			Title:   "Broken Image",
			Content: `<p>Text around the image.</p><img src="` + srv.URL + `/gone.jpg">`,
			URL:     srv.URL + "/broken",
		})
		require.NoError(t, err)

		section := sectionContent(t, att.Data)
		assert.Contains(t, section, srv.URL+"/gone.jpg")
		assert.False(t, hasImageEntry(t, att.Data, ".jpg"))
	})

	t.Run("skips data uri images without requests", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
		}))
		defer srv.Close()

		b := epub.NewBuilder()
		_, err := b.Build(context.Background(), &kindlebeam.Article{
			Title:   "Inline",
			Content: `<p>Paragraph with inline art.</p><img src="data:image/gif;base64,R0lGOD">`,
			URL:     srv.URL,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(0), requests.Load())
	})

	t.Run("deduplicates repeated image sources", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(tinyPNG)
		}))
		defer srv.Close()

		b := epub.NewBuilder()
		_, err := b.Build(context.Background(), &kindlebeam.Article{
			Title: "Twice",
			Content: `<p>Leading paragraph before repeats.</p>` +
				`<img src="` + srv.URL + `/same.png"><img src="` + srv.URL + `/same.png">`,
			URL: srv.URL,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(1), requests.Load())
	})

	t.Run("rejects missing content", func(t *testing.T) {
		t.Parallel()

		b := epub.NewBuilder()

		_, err := b.Build(context.Background(), nil)
		assert.Equal(t, kindlebeam.EINVALID, kindlebeam.ErrorCode(err))

		_, err = b.Build(context.Background(), &kindlebeam.Article{Title: "Empty"})
		assert.Equal(t, kindlebeam.EINVALID, kindlebeam.ErrorCode(err))
	})

	t.Run("untitled articles still get a filename", func(t *testing.T) {
		t.Parallel()

		b := epub.NewBuilder()
		att, err := b.Build(context.Background(), &kindlebeam.Article{
			Content: "<p>Content without a title at all.</p>",
		})
		require.NoError(t, err)
		assert.Equal(t, "Untitled.epub", att.Filename)
	})
}

func TestFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "My Article", "My Article.epub"},
		{"strips punctuation", `Breaking: "News" <Today>!`, "Breaking News Today.epub"},
		{"keeps hyphens", "Back-of-the-envelope", "Back-of-the-envelope.epub"},
		{"truncates long titles", strings.Repeat("a", 80), strings.Repeat("a", 50) + ".epub"},
		{"empty after sanitizing", "???", "article.epub"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, epub.Filename(tt.title))
		})
	}
}

// sectionContent returns the concatenated xhtml content of the epub.
func sectionContent(t *testing.T, data []byte) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var sb strings.Builder
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".xhtml") {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		sb.Write(content)
	}
	return sb.String()
}

// hasImageEntry reports whether the epub contains an embedded image
// with the given extension.
func hasImageEntry(t *testing.T, data []byte, ext string) bool {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	for _, f := range zr.File {
		if strings.Contains(f.Name, "img_") && strings.HasSuffix(f.Name, ext) {
			return true
		}
	}
	return false
}
