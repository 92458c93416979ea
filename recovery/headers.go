package recovery

import (
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// headerCandidate is a heading from the original document that the
// extractor dropped, anchored by the text that follows it in document
// order.
type headerCandidate struct {
	// tag is one of h1..h4.
	tag string

	// text is the heading's normalized text.
	text string

	// key is the start of the first substantial text following the
	// heading. Injection scans the extracted document for a paragraph
	// opening with this key and reinserts the heading before it.
	key string
}

// headerCandidates collects the headings inside container that are absent
// from the extracted text and have a usable following-text anchor.
// Headings whose following text never meets the length threshold are
// dropped: without an anchor there is nowhere to reinsert them.
func (e *Engine) headerCandidates(container *html.Node, extractedText string) []headerCandidate {
	var candidates []headerCandidate

	for _, h := range dom.QuerySelectorAll(container, "h1, h2, h3, h4") {
		text := normalizeSpace(dom.TextContent(h))
		if runeLen(text) < e.opts.MinHeaderTextLen {
			continue
		}
		if strings.Contains(extractedText, text) {
			// The extractor kept this heading; never insert a duplicate.
			continue
		}

		follow := followingText(h, e.opts.HeaderFollowMinLen, nil)
		if follow == "" {
			continue
		}

		candidates = append(candidates, headerCandidate{
			tag:  dom.TagName(h),
			text: text,
			key:  truncateRunes(follow, e.opts.HeaderKeyLen),
		})
	}

	return candidates
}

// injectHeaders inserts each candidate heading before the first leaf
// paragraph whose text matches the candidate's anchor. First match wins;
// candidates with no matching paragraph are silently dropped. Earlier
// document order breaks ties between equally plausible paragraphs.
func (e *Engine) injectHeaders(body *html.Node, candidates []headerCandidate) {
	if len(candidates) == 0 {
		return
	}

	leaves := e.leafParagraphs(body)

	for _, c := range candidates {
		for _, p := range leaves {
			if !e.paragraphMatches(normalizeSpace(dom.TextContent(p)), c.key) {
				continue
			}
			heading := dom.CreateElement(c.tag)
			dom.AppendChild(heading, &html.Node{Type: html.TextNode, Data: c.text})
			p.Parent.InsertBefore(heading, p)
			break
		}
	}
}

// paragraphMatches applies the relaxed prefix/contains check: the
// paragraph either starts with a shortened prefix of the anchor or
// contains an even shorter one anywhere.
func (e *Engine) paragraphMatches(paragraphText, key string) bool {
	prefix := truncateRunes(key, e.opts.HeaderMatchPrefixLen)
	if prefix != "" && strings.HasPrefix(paragraphText, prefix) {
		return true
	}
	loose := truncateRunes(key, e.opts.HeaderMatchLooseLen)
	return loose != "" && strings.Contains(paragraphText, loose)
}
