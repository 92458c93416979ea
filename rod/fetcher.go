package rod

import (
	"context"
	"fmt"

	kindlebeam "github.com/etanshaul/kindle-beam"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements kindlebeam.Fetcher at compile time.
var _ kindlebeam.Fetcher = (*Fetcher)(nil)

// snapshotScript runs in the page before the HTML is captured. It bakes
// layout facts the recovery engine needs into attributes, since they do
// not survive serialization: the rendered bounding box of every image and
// the resolved URL of every CSS background image.
const snapshotScript = `() => {
	const mark = (el, rect) => {
		el.setAttribute("data-beam-w", String(Math.round(rect.width)));
		el.setAttribute("data-beam-h", String(Math.round(rect.height)));
	};
	for (const img of document.querySelectorAll("img")) {
		mark(img, img.getBoundingClientRect());
	}
	for (const el of document.querySelectorAll("*")) {
		const bg = getComputedStyle(el).backgroundImage;
		if (!bg || bg === "none") continue;
		const m = bg.match(/url\(["']?([^"')]+)["']?\)/);
		if (!m || m[1].startsWith("data:")) continue;
		el.setAttribute("data-beam-bg", m[1]);
		mark(el, el.getBoundingClientRect());
	}
}`

// Fetcher retrieves rendered HTML from URLs using Chrome browser
// automation and annotates the snapshot with rendered image geometry.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	browser *rod.Browser
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher() (*Fetcher, error) {
	// Launch browser using rod's launcher (finds or downloads Chrome)
	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill() // Clean up launched process on connection failure
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &Fetcher{browser: browser}, nil
}

// Fetch navigates to the URL and returns the annotated rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	// Check context before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Create a new page
	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	// Set context for all subsequent operations
	page = page.Context(ctx)

	// Navigate to URL
	if err := page.Navigate(url); err != nil {
		return "", err
	}

	// Wait for page to load
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	// Bake rendered geometry into the DOM before capturing it
	if _, err := page.Eval(snapshotScript); err != nil {
		return "", err
	}

	// Get annotated HTML
	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	return html, nil
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.browser.Close()
}
