package kindlebeam

// Converter converts HTML to Markdown.
// Used to render article previews in the terminal.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input should be clean HTML (e.g., repaired extractor output).
	Convert(html string) (string, error)
}

// Sanitizer removes unsafe or unwanted markup from an HTML fragment.
// Applied to repaired content before it is converted and delivered.
type Sanitizer interface {
	Sanitize(html string) string
}
