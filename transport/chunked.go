package transport

import (
	"io"

	"github.com/indigo-web/chunkedbody"
)

type chunked struct {
	src     Source
	parser  *chunkedbody.Parser
	pending []byte
	trailer bool
	done    bool
	err     error
}

// Chunked decodes the HTTP/1.1 chunked transfer encoding on the fly. The trailer flag tells
// whether the trailer fields might follow the last chunk. If the source ends before the last
// chunk, io.ErrUnexpectedEOF is returned.
//
// Closing the returned Source closes the underlying one.
func Chunked(src Source, trailer bool) Source {
	return &chunked{
		src:     src,
		parser:  chunkedbody.NewParser(chunkedbody.DefaultSettings()),
		trailer: trailer,
	}
}

func (c *chunked) Fetch() ([]byte, error) {
	for !c.done {
		if len(c.pending) == 0 {
			if c.err != nil {
				return nil, c.err
			}

			c.pending, c.err = c.src.Fetch()
			if c.err == io.EOF {
				c.err = io.ErrUnexpectedEOF
			}

			continue
		}

		chunk, extra, err := c.parser.Parse(c.pending, c.trailer)
		c.pending = extra
		switch err {
		case nil:
		case io.EOF:
			c.done = true
		default:
			c.err, c.pending = err, nil
			return nil, err
		}

		if len(chunk) > 0 {
			return chunk, nil
		}
	}

	return nil, io.EOF
}

func (c *chunked) Close() error {
	return c.src.Close()
}
