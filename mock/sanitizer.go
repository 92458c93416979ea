package mock

import kindlebeam "github.com/etanshaul/kindle-beam"

var _ kindlebeam.Sanitizer = (*Sanitizer)(nil)

// Sanitizer is a mock implementation of kindlebeam.Sanitizer.
type Sanitizer struct {
	SanitizeFn func(html string) string
}

func (s *Sanitizer) Sanitize(html string) string {
	return s.SanitizeFn(html)
}
