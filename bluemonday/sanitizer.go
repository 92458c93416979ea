// Package bluemonday sanitizes repaired article HTML before it is
// built into a document. The policy keeps the markup the reader device
// understands: text structure, headings, links and images, including
// the inline sizing style that image recovery attaches.
package bluemonday

import (
	"github.com/microcosm-cc/bluemonday"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

// Ensure Sanitizer implements kindlebeam.Sanitizer at compile time.
var _ kindlebeam.Sanitizer = (*Sanitizer)(nil)

// Sanitizer strips scripts, event handlers and unknown markup from
// article HTML while preserving reading structure.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a Sanitizer with the article policy.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()

	// Image recovery injects inline sizing on the hero image; the
	// default UGC policy would strip it.
	p.AllowAttrs("style").OnElements("img")
	p.AllowStyles("max-width", "height", "display", "margin-bottom").OnElements("img")

	// Keep width/height attributes so devices without CSS support
	// still scale images sensibly.
	p.AllowAttrs("width", "height").OnElements("img")

	return &Sanitizer{policy: p}
}

// Sanitize returns the fragment with unsafe markup removed.
func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
