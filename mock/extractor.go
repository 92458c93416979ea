package mock

import kindlebeam "github.com/etanshaul/kindle-beam"

var _ kindlebeam.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of kindlebeam.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*kindlebeam.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*kindlebeam.ExtractResult, error) {
	return e.ExtractFn(html)
}
