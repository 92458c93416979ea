package recovery

import (
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// normalizeSpace collapses all runs of whitespace into single spaces and
// trims the result. Containment checks between the two trees run on
// normalized text so formatting differences don't defeat them.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes returns the first n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// runeLen returns the number of runes in s.
func runeLen(s string) int {
	return len([]rune(s))
}

// nextInDocument returns the node following n in document order:
// first child, else next sibling, else the next sibling of the nearest
// ancestor that has one.
func nextInDocument(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	return nextSkippingChildren(n)
}

// nextSkippingChildren returns the node following n in document order
// without descending into n's subtree.
func nextSkippingChildren(n *html.Node) *html.Node {
	for n != nil {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}

// forEachTextNode visits the text nodes of the subtree rooted at root in
// document order. Visiting stops when fn returns false.
func forEachTextNode(root *html.Node, fn func(*html.Node) bool) {
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.TextNode && !fn(n) {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
}

// followingText returns the first text after start, in document order and
// outside start's own subtree, whose trimmed length exceeds minLen.
// Text nodes for which skip returns true are passed over. Returns "" when
// no such text exists.
func followingText(start *html.Node, minLen int, skip func(*html.Node) bool) string {
	for node := nextSkippingChildren(start); node != nil; node = nextInDocument(node) {
		if node.Type != html.TextNode {
			continue
		}
		if skip != nil && skip(node) {
			continue
		}
		text := normalizeSpace(node.Data)
		if runeLen(text) > minLen {
			return text
		}
	}
	return ""
}

// hasAncestorTag reports whether any ancestor of n has one of the given
// tag names.
func hasAncestorTag(n *html.Node, tags ...string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		for _, tag := range tags {
			if p.Data == tag {
				return true
			}
		}
	}
	return false
}

// leafParagraphs returns the paragraph-like elements of the subtree in
// document order: elements with substantial text and no nested block
// children. These anchor header reinsertion.
func (e *Engine) leafParagraphs(root *html.Node) []*html.Node {
	var leaves []*html.Node
	for _, node := range dom.QuerySelectorAll(root, "p, div") {
		if runeLen(normalizeSpace(dom.TextContent(node))) <= e.opts.LeafMinTextLen {
			continue
		}
		if len(dom.QuerySelectorAll(node, "p, div")) > 0 {
			continue
		}
		leaves = append(leaves, node)
	}
	return leaves
}
