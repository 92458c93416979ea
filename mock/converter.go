package mock

import kindlebeam "github.com/etanshaul/kindle-beam"

var _ kindlebeam.Converter = (*Converter)(nil)

// Converter is a mock implementation of kindlebeam.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
