package epub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	shioridom "github.com/go-shiori/dom"
	goepub "github.com/go-shiori/go-epub"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	kindlebeam "github.com/etanshaul/kindle-beam"
	beamhttp "github.com/etanshaul/kindle-beam/http"
)

// maxImageBytes caps a single downloaded image. Anything larger is
// skipped to keep attachments within mail provider limits.
const maxImageBytes = 20 << 20

// imageExtensions are the file extensions embedded as-is; anything
// else is stored with a .jpg extension.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

// localizeImages downloads the images referenced by the article,
// embeds them in the book, and returns the content with img src
// attributes rewritten to the embedded paths. Every failure is
// tolerated: the affected img keeps its remote URL.
func (b *Builder) localizeImages(ctx context.Context, book *goepub.Epub, article *kindlebeam.Article, tmpDir string) (string, error) {
	doc, err := html.Parse(strings.NewReader(article.Content))
	if err != nil {
		// Unparsable content is embedded untouched.
		return article.Content, nil
	}

	imgs := shioridom.GetElementsByTagName(doc, "img")
	if len(imgs) == 0 {
		return article.Content, nil
	}

	base, _ := url.Parse(article.URL)

	// Deduplicate sources so a repeated image is fetched once.
	sources := make(map[string][]*html.Node)
	for _, img := range imgs {
		src := resolveImageURL(base, shioridom.GetAttribute(img, "src"))
		if src == "" {
			continue
		}
		sources[src] = append(sources[src], img)
	}
	if len(sources) == 0 {
		return article.Content, nil
	}

	var mu sync.Mutex
	fetched := make(map[string][]byte) // remote src -> image bytes

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for src := range sources {
		src := src
		g.Go(func() error {
			data, err := b.downloadImage(gctx, src)
			if err != nil {
				// Degrade gracefully: the remote URL stays in place.
				return nil
			}
			mu.Lock()
			fetched[src] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	// go-epub is not documented as goroutine-safe, so embedding
	// happens on this goroutine only.
	local := make(map[string]string) // remote src -> embedded path
	for src, data := range fetched {
		embedded, err := embedImage(book, src, data, tmpDir)
		if err != nil {
			continue
		}
		local[src] = embedded
	}

	for src, nodes := range sources {
		embedded, ok := local[src]
		if !ok {
			continue
		}
		for _, img := range nodes {
			shioridom.SetAttribute(img, "src", embedded)
		}
	}

	body := shioridom.GetElementsByTagName(doc, "body")
	if len(body) == 0 {
		return article.Content, nil
	}
	return shioridom.InnerHTML(body[0]), nil
}

// embedImage adds downloaded image bytes to the book, returning the
// internal path to reference from the section HTML. go-epub embeds
// from files, so the bytes pass through tmpDir.
func embedImage(book *goepub.Epub, src string, data []byte, tmpDir string) (string, error) {
	name := imageFilename(src)
	tmpPath := filepath.Join(tmpDir, name)
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return "", err
	}
	return book.AddImage(tmpPath, name)
}

func (b *Builder) downloadImage(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, err
	}
	if err := b.limiter.Wait(ctx, u.Host); err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", beamhttp.UserAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, src)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image %s exceeds %d bytes", src, maxImageBytes)
	}
	return data, nil
}

// resolveImageURL resolves src against the article URL and filters out
// sources that cannot be downloaded.
func resolveImageURL(base *url.URL, src string) string {
	src = strings.TrimSpace(src)
	if src == "" || strings.HasPrefix(src, "data:") {
		return ""
	}
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}

// imageFilename derives a stable collision-free filename from the
// source URL. The extension is preserved when it is a known image
// extension.
func imageFilename(src string) string {
	ext := strings.ToLower(path.Ext(strippedPath(src)))
	if !imageExtensions[ext] {
		ext = ".jpg"
	}
	sum := xxhash.Sum64String(src)
	return fmt.Sprintf("img_%012x%s", sum&0xffffffffffff, ext)
}

func strippedPath(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return src
	}
	return u.Path
}
