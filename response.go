package mpfetch

import (
	"net/http"

	"github.com/indigo-web/mpfetch/config"
	"github.com/indigo-web/mpfetch/internal/buffer"
	"github.com/indigo-web/mpfetch/internal/scan"
	"github.com/indigo-web/mpfetch/mime"
	"github.com/indigo-web/mpfetch/transport"
)

// FromResponse returns a reader over the response body. The boundary and the subtype are
// taken from the Content-Type header, and the body is decompressed if the Content-Encoding
// header says so. The response body is closed by the reader once the message is over or
// the reader is closed.
func FromResponse(resp *http.Response, cfg *config.Config) (*Reader, error) {
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, ErrNoBody
	}

	if cfg == nil {
		cfg = config.Default()
	}

	params, err := mime.ParseMultipart(resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	bufferSize := cfg.NET.ReadBufferSize.Default
	src, err := transport.Decode(
		transport.NewReader(resp.Body, make([]byte, bufferSize)),
		resp.Header.Get("Content-Encoding"),
		bufferSize,
	)
	if err != nil {
		return nil, err
	}

	return NewFromParams(src, params, cfg), nil
}

// ParseBody decodes a single entity out of the source: a header block followed by the body,
// without any multipart framing. If the header block can't be found, the part is marked
// as Raw. No Content-Type is implied. The source is closed once it's exhausted or fails.
func ParseBody(src transport.Source, cfg *config.Config) (*Part, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	return extractPart(
		&sourceChunks{src: src},
		buffer.New(cfg.Headers.Space.Default, cfg.Headers.Space.Maximal),
		cfg,
	)
}

type sourceChunks struct {
	src transport.Source
	err error
}

func (s *sourceChunks) Next() (scan.Chunk, error) {
	for s.err == nil {
		data, err := s.src.Fetch()
		if err != nil {
			s.err = err
			_ = s.src.Close()
		}

		if len(data) > 0 {
			return scan.Chunk{Data: data}, nil
		}
	}

	return scan.Chunk{}, s.err
}
