package codec

import (
	"io"

	"github.com/klauspost/compress/flate"
)

func NewDeflate() Codec {
	return newBaseCodec("deflate", newBaseInstance(func(r io.Reader, a *readerAdapter) (io.Reader, error) {
		if r == nil {
			r = flate.NewReader(nil)
		}

		return r, r.(flate.Resetter).Reset(a, nil)
	}))
}
