package transport

import (
	"errors"
	"strings"

	"github.com/indigo-web/mpfetch/codec"
	"github.com/indigo-web/mpfetch/internal/strutil"
	"github.com/indigo-web/utils/strcomp"
)

var ErrUnsupportedEncoding = errors.New("unsupported content encoding")

// decoded resets the decompressor on the first fetch, as some of them read the stream
// header right away.
type decoded struct {
	decompressor codec.Decompressor
	upstream     codec.Fetcher
	bufferSize   int
	ready        bool
	err          error
	src          Source
}

func (d *decoded) Fetch() ([]byte, error) {
	if !d.ready {
		d.ready = true
		d.err = d.decompressor.Reset(d.upstream, d.bufferSize)
	}

	if d.err != nil {
		return nil, d.err
	}

	return d.decompressor.Fetch()
}

func (d *decoded) Close() error {
	return d.src.Close()
}

// Decode wraps the source into decompressors, as listed by the Content-Encoding value. The
// codings are undone in the reverse order of their application. An empty value or identity
// leave the source as is. Nothing is read from the source until the first fetch.
func Decode(src Source, contentEncoding string, bufferSize int) (Source, error) {
	tokens := strings.Split(contentEncoding, ",")
	out := src

	for i := len(tokens) - 1; i >= 0; i-- {
		token := strutil.StripWS(tokens[i])
		if len(token) == 0 || strcomp.EqualFold(token, "identity") {
			continue
		}

		c, found := codec.Lookup(token)
		if !found {
			return nil, ErrUnsupportedEncoding
		}

		out = &decoded{
			decompressor: c.New(),
			upstream:     out,
			bufferSize:   bufferSize,
			src:          src,
		}
	}

	return out, nil
}
