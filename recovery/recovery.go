// Package recovery repairs readability extractor output.
//
// Readability algorithms aggressively strip "noise" from a page and, as a
// side effect, often strip legitimate structure: subheadings, the lead
// content image, and inline link text. The Engine reconciles the original
// document against the extractor's output and reinserts what was dropped,
// producing a single merged HTML fragment.
//
// The two trees share no node identity; they are correlated purely by
// text content and document order. All heuristic thresholds are carried
// in Options so they are configuration, not control flow.
package recovery

import (
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// Options configures the Engine's heuristics. The zero value of any field
// is replaced by its default; see DefaultOptions.
type Options struct {
	// ContainerSelectors is the priority-ordered list of CSS selectors
	// used to locate the article container in the original document.
	// The document body is the fallback when none match.
	ContainerSelectors []string

	// MinHeaderTextLen is the minimum trimmed heading text length
	// considered for recovery.
	MinHeaderTextLen int

	// HeaderFollowMinLen is the length the text following a heading must
	// exceed to serve as the heading's anchor.
	HeaderFollowMinLen int

	// HeaderKeyLen caps the anchor text recorded for a heading.
	HeaderKeyLen int

	// HeaderMatchPrefixLen and HeaderMatchLooseLen shorten the anchor
	// for the relaxed prefix/contains paragraph match during injection.
	HeaderMatchPrefixLen int
	HeaderMatchLooseLen  int

	// MinImageSize is the minimum rendered width and height, in pixels,
	// for an image to be a recovery candidate. Filters out avatars,
	// icons and decorative glyphs.
	MinImageSize float64

	// ExcludedImageURLWords rejects image URLs containing any of these
	// substrings.
	ExcludedImageURLWords []string

	// LinkMinTextLen is the minimum trimmed link text length considered
	// for recovery.
	LinkMinTextLen int

	// LinkFollowMinLen is the length the text following a link must
	// exceed to serve as the link's anchor.
	LinkFollowMinLen int

	// LinkKeyLen caps the anchor text recorded for a link;
	// LinkMatchLen further narrows it for the substring search.
	LinkKeyLen   int
	LinkMatchLen int

	// LeafMinTextLen is the minimum text length for an element to count
	// as a leaf paragraph during header injection.
	LeafMinTextLen int

	// Measurer reports the rendered bounding box of an element.
	// Defaults to AttributeMeasurer.
	Measurer Measurer
}

// DefaultContainerSelectors is the container priority list: specific
// article markup first, then generic semantic roles, with the body as the
// implicit fallback.
var DefaultContainerSelectors = []string{
	"article",
	`[role="main"]`,
	"main",
	".post-content",
	".article-content",
	".entry-content",
	".article-body",
	".post-body",
	"#content",
	".content",
}

// DefaultOptions returns the thresholds used by the production pipeline.
func DefaultOptions() Options {
	return Options{
		ContainerSelectors:    DefaultContainerSelectors,
		MinHeaderTextLen:      3,
		HeaderFollowMinLen:    20,
		HeaderKeyLen:          150,
		HeaderMatchPrefixLen:  50,
		HeaderMatchLooseLen:   30,
		MinImageSize:          100,
		ExcludedImageURLWords: []string{"profile", "avatar", "emoji"},
		LinkMinTextLen:        2,
		LinkFollowMinLen:      3,
		LinkKeyLen:            30,
		LinkMatchLen:          15,
		LeafMinTextLen:        30,
		Measurer:              AttributeMeasurer,
	}
}

// Engine reconciles an original document against extractor output.
// An Engine is stateless and safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine. Zero-valued Options fields are replaced by
// their defaults, so NewEngine(recovery.Options{}) behaves the same as
// NewEngine(recovery.DefaultOptions()).
func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if opts.ContainerSelectors == nil {
		opts.ContainerSelectors = def.ContainerSelectors
	}
	if opts.MinHeaderTextLen == 0 {
		opts.MinHeaderTextLen = def.MinHeaderTextLen
	}
	if opts.HeaderFollowMinLen == 0 {
		opts.HeaderFollowMinLen = def.HeaderFollowMinLen
	}
	if opts.HeaderKeyLen == 0 {
		opts.HeaderKeyLen = def.HeaderKeyLen
	}
	if opts.HeaderMatchPrefixLen == 0 {
		opts.HeaderMatchPrefixLen = def.HeaderMatchPrefixLen
	}
	if opts.HeaderMatchLooseLen == 0 {
		opts.HeaderMatchLooseLen = def.HeaderMatchLooseLen
	}
	if opts.MinImageSize == 0 {
		opts.MinImageSize = def.MinImageSize
	}
	if opts.ExcludedImageURLWords == nil {
		opts.ExcludedImageURLWords = def.ExcludedImageURLWords
	}
	if opts.LinkMinTextLen == 0 {
		opts.LinkMinTextLen = def.LinkMinTextLen
	}
	if opts.LinkFollowMinLen == 0 {
		opts.LinkFollowMinLen = def.LinkFollowMinLen
	}
	if opts.LinkKeyLen == 0 {
		opts.LinkKeyLen = def.LinkKeyLen
	}
	if opts.LinkMatchLen == 0 {
		opts.LinkMatchLen = def.LinkMatchLen
	}
	if opts.LeafMinTextLen == 0 {
		opts.LeafMinTextLen = def.LeafMinTextLen
	}
	if opts.Measurer == nil {
		opts.Measurer = def.Measurer
	}
	return &Engine{opts: opts}
}

// Recover reconciles the original document against the extractor's output
// HTML and returns the repaired fragment.
//
// Recover is a pure function of its inputs and never fails: every lookup
// is optional and absence simply skips that enhancement. When nothing is
// recovered the input HTML is returned byte-identical. The original
// document is never mutated; the extracted document is a disposable
// working copy owned by this call.
//
// Recovery is meant to run exactly once per article, immediately after
// extraction. Re-running it on already-repaired output is not guaranteed
// to be idempotent because absence checks run against the text passed in,
// not against earlier repairs.
func (e *Engine) Recover(original *html.Node, extractedHTML string) string {
	if original == nil || strings.TrimSpace(extractedHTML) == "" {
		return extractedHTML
	}

	extractedDoc, err := html.Parse(strings.NewReader(extractedHTML))
	if err != nil {
		return extractedHTML
	}
	body := documentBody(extractedDoc)
	if body == nil {
		return extractedHTML
	}

	container := e.resolveContainer(original)
	if container == nil {
		return extractedHTML
	}

	extractedText := normalizeSpace(dom.TextContent(body))

	headers := e.headerCandidates(container, extractedText)
	images := e.imageCandidates(container, extractedHTML)
	spliced := e.recoverLinkText(container, body, extractedText)

	if len(headers) == 0 && len(images) == 0 {
		if !spliced {
			return extractedHTML
		}
		return dom.InnerHTML(body)
	}

	e.injectHeaders(body, headers)
	if len(images) > 0 {
		e.injectImage(body, images[0])
	}

	return dom.InnerHTML(body)
}

// ParseDocument parses a full HTML document for use as the original
// document in Recover.
func ParseDocument(rawHTML string) (*html.Node, error) {
	return html.Parse(strings.NewReader(rawHTML))
}

// documentBody returns the body element of a parsed document.
func documentBody(doc *html.Node) *html.Node {
	bodies := dom.GetElementsByTagName(doc, "body")
	if len(bodies) == 0 {
		return nil
	}
	return bodies[0]
}
