package mpfetch

import (
	"io"

	"github.com/indigo-web/mpfetch/config"
	"github.com/indigo-web/mpfetch/internal/scan"
	"github.com/indigo-web/mpfetch/mime"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

type BodyCallback func([]byte) error

// Body is a forward-only stream of a part's body. Bytes returned by Fetch and Callback are
// valid only until the next call, as they might alias reused buffers. Only a single way of
// consuming the body should be chosen.
type Body struct {
	part    *Part
	src     scan.ChunkStream
	cfg     *config.Config
	head    [2][]byte
	buff    []byte
	pending []byte
	error   error
}

func newBody(part *Part, src scan.ChunkStream, raw, remainder []byte, cfg *config.Config) *Body {
	return &Body{
		part: part,
		src:  src,
		cfg:  cfg,
		head: [2][]byte{raw, remainder},
	}
}

// Fetch returns the next piece of the body. Returned pieces are never empty. When the body
// is over, io.EOF is returned.
func (b *Body) Fetch() ([]byte, error) {
	if b.error != nil {
		return nil, b.error
	}

	for i, data := range b.head {
		if len(data) > 0 {
			b.head[i] = nil
			return data, nil
		}
	}

	for {
		chunk, err := b.src.Next()
		if err != nil {
			b.error = err
			return nil, err
		}

		if len(chunk.Data) > 0 {
			return chunk.Data, nil
		}
	}
}

// Callback invokes the callback every time there's a piece of body available for reading.
// If the callback returns an error, it'll be passed back to the caller. The callback isn't
// notified when there's no more data.
func (b *Body) Callback(cb BodyCallback) error {
	for {
		data, err := b.Fetch()
		switch err {
		case nil:
		case io.EOF:
			return nil
		default:
			return err
		}

		if err = cb(data); err != nil {
			return err
		}
	}
}

// Bytes returns the whole body at once. The result stays valid after the next part is
// requested.
func (b *Body) Bytes() ([]byte, error) {
	if b.error == io.EOF {
		return b.buff, nil
	}

	if b.buff == nil {
		b.buff = make([]byte, 0, b.cfg.Body.BufferPrealloc)
	}

	for {
		data, err := b.Fetch()
		switch err {
		case nil:
			b.buff = append(b.buff, data...)
		case io.EOF:
			return b.buff, nil
		default:
			return nil, err
		}
	}
}

// String returns the whole body at once in a string representation.
func (b *Body) String() (string, error) {
	bytes, err := b.Bytes()
	return uf.B2S(bytes), err
}

// Read implements the io.Reader interface.
func (b *Body) Read(into []byte) (n int, err error) {
	if len(b.pending) == 0 && b.error == nil {
		b.pending, _ = b.Fetch()
	}

	n = copy(into, b.pending)
	b.pending = b.pending[n:]

	if len(b.pending) == 0 && b.error != nil {
		err = b.error
	}

	return n, err
}

// JSON decodes the body as JSON into the model.
//
// Please note: this method cannot be used on parts with Content-Type incompatible with
// mime.JSON (in this case, ErrUnsupportedMediaType is returned).
func (b *Body) JSON(model any) error {
	if !mime.Complies(mime.JSON, b.part.ContentType()) {
		return ErrUnsupportedMediaType
	}

	data, err := b.Bytes()
	if err != nil {
		return err
	}

	iterator := json.ConfigDefault.BorrowIterator(data)
	iterator.ReadVal(model)
	err = iterator.Error
	json.ConfigDefault.ReturnIterator(iterator)

	return err
}

// Discard skips the rest of the body (if any). If no error was encountered, nil is returned.
func (b *Body) Discard() error {
	for b.error == nil {
		_, _ = b.Fetch()
	}

	b.pending = nil
	if b.error == io.EOF {
		return nil
	}

	return b.error
}

// Error returns a previously encountered error, otherwise nil. io.EOF means the body was read
// till the end.
func (b *Body) Error() error {
	return b.error
}
