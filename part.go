package mpfetch

import (
	"github.com/indigo-web/mpfetch/config"
	"github.com/indigo-web/mpfetch/internal/buffer"
	"github.com/indigo-web/mpfetch/internal/headers"
	"github.com/indigo-web/mpfetch/internal/scan"
	"github.com/indigo-web/mpfetch/kv"
	"github.com/indigo-web/mpfetch/mime"
)

// Part is a single entity of a multipart message.
type Part struct {
	// Headers hold the part's header fields in the order of appearance. If the part declares
	// no Content-Type or an empty one, the implied one is set.
	Headers *kv.Storage
	// Body is valid until the next part is requested.
	Body *Body
	// Raw is set if the header block couldn't be found, either because it's too big or
	// because the part ended before it. The accumulated data is then the beginning of
	// the body.
	Raw bool
}

// ContentType returns the value of the Content-Type header.
func (p *Part) ContentType() string {
	return p.Headers.Value("Content-Type")
}

func assemble(chunks scan.ChunkStream, buff *buffer.Buffer, subtype string, cfg *config.Config) (*Part, error) {
	part, err := extractPart(chunks, buff, cfg)
	if err != nil {
		return nil, err
	}

	if len(part.Headers.Value("Content-Type")) == 0 {
		part.Headers.Set("Content-Type", mime.DefaultPartType(subtype))
	}

	return part, nil
}

func extractPart(chunks scan.ChunkStream, buff *buffer.Buffer, cfg *config.Config) (*Part, error) {
	result, err := headers.Extract(chunks, buff)
	if err != nil {
		return nil, err
	}

	hdrs := kv.NewPrealloc(max(len(result.Headers)+1, cfg.Headers.Number.Default))
	for _, pair := range result.Headers {
		hdrs.Add(pair.Key, pair.Value)
	}

	part := &Part{
		Headers: hdrs,
		Raw:     !result.Parsed,
	}
	part.Body = newBody(part, chunks, result.Raw, result.Remainder.Data, cfg)

	return part, nil
}
