package recovery

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// Annotation attributes written by browser-backed fetchers (see the rod
// package): rendered width and height in CSS pixels, and the resolved
// background-image URL of styled elements.
const (
	AttrRenderedWidth   = "data-beam-w"
	AttrRenderedHeight  = "data-beam-h"
	AttrBackgroundImage = "data-beam-bg"
)

// heroImageStyle makes the injected image fit the device's rendering
// surface regardless of its native dimensions.
const heroImageStyle = "max-width: 100%; height: auto; display: block; margin-bottom: 1em;"

// Box is an element's rendered size in CSS pixels.
type Box struct {
	Width  float64
	Height float64
}

// Measurer reports the rendered bounding box of an element. A zero Box
// means the size is unknown; unknown sizes exclude an image from
// recovery, since the size filter cannot be verified.
type Measurer func(n *html.Node) Box

// imageCandidate is a content image present in the original document and
// missing from the extracted output.
type imageCandidate struct {
	src string
	alt string
}

var (
	rxBackgroundURL = regexp.MustCompile(`(?i)background(?:-image)?\s*:[^;]*?url\(\s*['"]?([^'")]+)['"]?\s*\)`)
	rxStylePixels   = regexp.MustCompile(`(?i)(width|height)\s*:\s*([\d.]+)px`)
)

// imageCandidates collects <img> elements and CSS background images
// inside container that pass the size and keyword filters and whose URL
// does not already appear in the extracted output. All matches are
// collected in document order; only the first is ultimately injected.
func (e *Engine) imageCandidates(container *html.Node, extractedHTML string) []imageCandidate {
	var candidates []imageCandidate
	seen := make(map[string]bool)

	add := func(n *html.Node, src, alt string) {
		if src == "" || seen[src] {
			return
		}
		if !e.imageEligible(n, src, extractedHTML) {
			return
		}
		seen[src] = true
		candidates = append(candidates, imageCandidate{src: src, alt: alt})
	}

	for _, img := range dom.QuerySelectorAll(container, "img") {
		add(img, dom.GetAttribute(img, "src"), dom.GetAttribute(img, "alt"))
	}

	for _, n := range dom.QuerySelectorAll(container, "*") {
		src := dom.GetAttribute(n, AttrBackgroundImage)
		if src == "" {
			src = backgroundURL(dom.GetAttribute(n, "style"))
		}
		add(n, src, "")
	}

	return candidates
}

// imageEligible applies the candidate filters: no data URIs, not already
// present in the extracted output, no profile/avatar/emoji URLs, rendered
// box at least MinImageSize in both dimensions.
func (e *Engine) imageEligible(n *html.Node, src, extractedHTML string) bool {
	if strings.HasPrefix(src, "data:") {
		return false
	}
	if strings.Contains(extractedHTML, src) {
		return false
	}

	lower := strings.ToLower(src)
	for _, word := range e.opts.ExcludedImageURLWords {
		if strings.Contains(lower, word) {
			return false
		}
	}

	box := e.opts.Measurer(n)
	return box.Width >= e.opts.MinImageSize && box.Height >= e.opts.MinImageSize
}

// injectImage inserts the hero image as the first child of the extracted
// body, or appends it when the body is empty.
func (e *Engine) injectImage(body *html.Node, c imageCandidate) {
	img := dom.CreateElement("img")
	dom.SetAttribute(img, "src", c.src)
	if c.alt != "" {
		dom.SetAttribute(img, "alt", c.alt)
	}
	dom.SetAttribute(img, "style", heroImageStyle)

	if body.FirstChild != nil {
		body.InsertBefore(img, body.FirstChild)
	} else {
		dom.AppendChild(body, img)
	}
}

// backgroundURL extracts the URL from an inline background-image
// declaration. Returns "" when the style has none.
func backgroundURL(style string) string {
	m := rxBackgroundURL.FindStringSubmatch(style)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// AttributeMeasurer reads an element's rendered size from the snapshot
// annotations written by browser-backed fetchers, falling back to the
// width/height attributes and then to inline style pixel values. Elements
// with no size information measure as zero and are excluded from image
// recovery.
func AttributeMeasurer(n *html.Node) Box {
	var box Box

	box.Width = parseDimension(dom.GetAttribute(n, AttrRenderedWidth))
	box.Height = parseDimension(dom.GetAttribute(n, AttrRenderedHeight))
	if box.Width > 0 && box.Height > 0 {
		return box
	}

	if box.Width == 0 {
		box.Width = parseDimension(dom.GetAttribute(n, "width"))
	}
	if box.Height == 0 {
		box.Height = parseDimension(dom.GetAttribute(n, "height"))
	}
	if box.Width > 0 && box.Height > 0 {
		return box
	}

	for _, m := range rxStylePixels.FindAllStringSubmatch(dom.GetAttribute(n, "style"), -1) {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[1]) {
		case "width":
			if box.Width == 0 {
				box.Width = v
			}
		case "height":
			if box.Height == 0 {
				box.Height = v
			}
		}
	}

	return box
}

// parseDimension parses a pixel dimension attribute, tolerating a "px"
// suffix. Returns 0 for anything unparsable.
func parseDimension(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
