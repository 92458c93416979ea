package kindlebeam

import "strings"

// Article is the unit of delivery: a repaired, self-contained piece of
// readable content addressed to the configured Kindle device.
type Article struct {
	// Title is shown as the document title on the device. The user may
	// edit it before sending.
	Title string `json:"title"`

	// Content is the repaired article body as an HTML fragment.
	Content string `json:"content"`

	// URL is the address the article was captured from. Used to resolve
	// relative image URLs during conversion.
	URL string `json:"url"`
}

// Validate returns an error if the article cannot be delivered.
func (a *Article) Validate() error {
	if a.Content == "" {
		return Errorf(EINVALID, "no content provided")
	}
	return nil
}

// DisplayTitle returns the title, or a placeholder when none was found.
func (a *Article) DisplayTitle() string {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return "Untitled"
	}
	return title
}
