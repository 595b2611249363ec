package mpfetch

import (
	"errors"
	"io"
	"iter"

	"github.com/indigo-web/mpfetch/config"
	"github.com/indigo-web/mpfetch/internal/buffer"
	"github.com/indigo-web/mpfetch/internal/scan"
	"github.com/indigo-web/mpfetch/internal/stage"
	"github.com/indigo-web/mpfetch/mime"
	"github.com/indigo-web/mpfetch/transport"
)

var (
	ErrClosed               = errors.New("reader is closed")
	ErrNoBody               = errors.New("response has no body")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

// Reader decodes a multipart message from a source, producing parts one by one. Parts are
// produced lazily in the order of appearance. Nothing is read from the source until the
// first part is requested.
//
// A Reader isn't safe for concurrent use.
type Reader struct {
	cfg      *config.Config
	params   mime.Params
	splitter *stage.Splitter
	hdrbuff  *buffer.Buffer
	part     *Part
	err      error
}

// New returns a reader over the source, taking the boundary and the subtype out of the
// Content-Type value. If the value is unsuitable, an error from the mime package is
// returned and the source is left untouched. Otherwise, the reader owns the source and
// is responsible for closing it.
//
// Nil cfg means config.Default().
func New(src transport.Source, contentType string, cfg *config.Config) (*Reader, error) {
	params, err := mime.ParseMultipart(contentType)
	if err != nil {
		return nil, err
	}

	return NewFromParams(src, params, cfg), nil
}

// NewFromParams returns a reader over the source with the already known boundary and subtype.
func NewFromParams(src transport.Source, params mime.Params, cfg *config.Config) *Reader {
	if cfg == nil {
		cfg = config.Default()
	}

	scanner := scan.New(src, params.Boundary)
	// the preamble stage consumes the first boundary, therefore the epilogue one starts
	// already after it.
	epilogue := stage.NewEpilogue(stage.NewPreamble(scanner), scanner.Stop, true)

	return &Reader{
		cfg:      cfg,
		params:   params,
		splitter: stage.NewSplitter(epilogue),
		hdrbuff:  buffer.New(cfg.Headers.Space.Default, cfg.Headers.Space.Maximal),
	}
}

// Subtype returns the lowercased multipart subtype, e.g. mixed or digest.
func (r *Reader) Subtype() string {
	return r.params.Subtype
}

func (r *Reader) Boundary() string {
	return r.params.Boundary
}

// NextPart returns the next part of the message, or io.EOF if there are none left. The rest
// of the previous part's body is discarded, so bodies must be consumed before requesting the
// next part. Source errors are returned as is, and the reader stays in the failed state
// forever.
func (r *Reader) NextPart() (*Part, error) {
	if r.err != nil {
		return nil, r.err
	}

	if r.part != nil {
		if err := r.part.Body.Discard(); err != nil {
			return nil, r.fail(err)
		}

		r.part = nil
	}

	group, err := r.splitter.Next()
	if err != nil {
		return nil, r.fail(err)
	}

	part, err := assemble(stage.NewPadding(group), r.hdrbuff, r.params.Subtype, r.cfg)
	if err != nil {
		return nil, r.fail(err)
	}

	r.part = part
	return part, nil
}

// Parts iterates over the rest of the parts. If the loop is broken, the reader is closed.
// The end of the message isn't reported as an error.
func (r *Reader) Parts() iter.Seq2[*Part, error] {
	return func(yield func(*Part, error) bool) {
		for {
			part, err := r.NextPart()
			switch err {
			case nil:
			case io.EOF:
				return
			default:
				yield(nil, err)
				return
			}

			if !yield(part, nil) {
				_ = r.Close()
				return
			}
		}
	}
}

// Close abandons the decoding, releasing the source if it wasn't released yet. Further
// calls to NextPart return ErrClosed, unless the message was already over or failed.
func (r *Reader) Close() error {
	if r.err == nil {
		r.err = ErrClosed
	}

	r.part = nil
	return r.splitter.Close()
}

func (r *Reader) fail(err error) error {
	r.err = err
	r.part = nil
	return err
}
