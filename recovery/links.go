package recovery

import (
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// recoverLinkText splices dropped link text back into the extracted
// document's text nodes. For each link in the container whose text the
// extractor dropped, the text that follows the link in the original
// serves as an anchor: the extracted document is scanned in document
// order for the first text node containing a shortened form of that
// anchor, and the link's text is spliced in immediately before the match
// with a single space separator. First match wins per link.
//
// Reports whether any text node was mutated.
func (e *Engine) recoverLinkText(container, extractedBody *html.Node, extractedText string) bool {
	changed := false

	for _, a := range dom.QuerySelectorAll(container, "a[href]") {
		text := normalizeSpace(dom.TextContent(a))
		if runeLen(text) < e.opts.LinkMinTextLen {
			continue
		}
		if strings.Contains(extractedText, text) {
			// The extractor kept this link's text; nothing to restore.
			continue
		}
		if hasAncestorTag(a, "h1", "h2", "h3", "h4", "h5", "h6") {
			// Heading links are handled by header recovery.
			continue
		}

		// Anchor on following text, skipping text inside other links so
		// adjacent nav links don't become anchors.
		follow := followingText(a, e.opts.LinkFollowMinLen, func(tn *html.Node) bool {
			return hasAncestorTag(tn, "a")
		})
		if follow == "" {
			continue
		}

		key := truncateRunes(follow, e.opts.LinkKeyLen)
		needle := truncateRunes(key, e.opts.LinkMatchLen)
		if needle == "" {
			continue
		}

		forEachTextNode(extractedBody, func(tn *html.Node) bool {
			idx := strings.Index(tn.Data, needle)
			if idx < 0 {
				return true
			}
			tn.Data = tn.Data[:idx] + text + " " + tn.Data[idx:]
			changed = true
			return false
		})
	}

	return changed
}
