package stage

import (
	"github.com/indigo-web/mpfetch/internal/scan"
)

// Preamble drops everything up to and including the first boundary. A message without any
// boundary therefore yields nothing at all.
type Preamble struct {
	src    scan.Stream
	passed bool
}

func NewPreamble(src scan.Stream) *Preamble {
	return &Preamble{src: src}
}

func (p *Preamble) Next() (scan.Item, error) {
	for !p.passed {
		item, err := p.src.Next()
		if err != nil {
			return item, err
		}

		p.passed = item.Boundary
	}

	return p.src.Next()
}

func (p *Preamble) Close() error {
	return p.src.Close()
}
