package codec

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

func NewGZIP() Codec {
	return newBaseCodec("gzip", newBaseInstance(func(r io.Reader, a *readerAdapter) (io.Reader, error) {
		if r == nil {
			r = new(gzip.Reader)
		}

		return r, r.(*gzip.Reader).Reset(a)
	}))
}
