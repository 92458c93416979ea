package kindlebeam

import "context"

// Attachment is a built document ready for delivery.
type Attachment struct {
	// Filename is the attachment filename, already sanitized for mail
	// transport and for the device's library view.
	Filename string

	// MediaType is the MIME type of Data.
	MediaType string

	// Data is the document payload.
	Data []byte
}

// Builder converts an article into a deliverable document (EPUB).
type Builder interface {
	// Build converts the article's HTML content, localizing remote images
	// so the document is self-contained. Image downloads that fail leave
	// the remote URL in place rather than failing the build.
	Build(ctx context.Context, article *Article) (*Attachment, error)
}

// Deliverer sends a built document to the configured device address.
// Errors are reported with the EDELIVERY code and a human-readable
// message suitable for display.
type Deliverer interface {
	Deliver(ctx context.Context, article *Article, att *Attachment) error
}
