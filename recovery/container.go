package recovery

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// resolveContainer selects the article container in the original
// document: the first element matching the priority selector list, or the
// document body when none match. All recovery scans are bounded by this
// subtree so navigation, sidebars and footers never contribute
// candidates.
func (e *Engine) resolveContainer(original *html.Node) *html.Node {
	doc := goquery.NewDocumentFromNode(original)

	for _, selector := range e.opts.ContainerSelectors {
		// Compile leniently: an invalid caller-supplied selector matches
		// nothing instead of panicking, keeping Recover failure-free.
		matcher, err := cascadia.Compile(selector)
		if err != nil {
			continue
		}
		if sel := doc.FindMatcher(matcher); len(sel.Nodes) > 0 {
			return sel.Nodes[0]
		}
	}

	if body := doc.Find("body"); len(body.Nodes) > 0 {
		return body.Nodes[0]
	}
	return original
}
