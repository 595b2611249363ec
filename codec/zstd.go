package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

func NewZSTD() Codec {
	return newBaseCodec("zstd", newBaseInstance(func(r io.Reader, a *readerAdapter) (io.Reader, error) {
		if r == nil {
			decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
			if err != nil {
				return nil, err
			}

			r = decoder
		}

		return r, r.(*zstd.Decoder).Reset(a)
	}))
}
