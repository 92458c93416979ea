package kindlebeam

// ExtractResult holds the output of a readability extraction.
type ExtractResult struct {
	// Title is the article title reported by the extraction algorithm.
	Title string

	// ContentHTML is the main content as an HTML fragment. The algorithm
	// strips boilerplate aggressively and, as a side effect, often strips
	// legitimate structure; see the recovery package.
	ContentHTML string

	// Text is the plain text of the extracted content.
	Text string

	// Length is the character length of Text.
	Length int
}

// Extractor runs a readability algorithm over a rendered document and
// returns its main content.
//
// Failures are reported as coded errors: EUNAVAILABLE when the
// extraction algorithm is not available, EUNPARSABLE when it produced
// nothing, EINTERNAL when it failed unexpectedly. An Extractor never
// panics and never mutates its input.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}
