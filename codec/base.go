package codec

import (
	"io"
)

var _ Codec = baseCodec{}

type instantiator = func() Decompressor

type baseCodec struct {
	token   string
	newInst instantiator
}

func newBaseCodec(token string, newInst instantiator) baseCodec {
	return baseCodec{
		token:   token,
		newInst: newInst,
	}
}

func (b baseCodec) Token() string {
	return b.token
}

func (b baseCodec) New() Decompressor {
	return b.newInst()
}

var _ Decompressor = new(baseInstance)

// decoderResetter resets the decoder to read from the adapter, creating the decoder if it's
// nil, as some of them can't be instantiated without a valid stream.
type decoderResetter = func(io.Reader, *readerAdapter) (io.Reader, error)

type baseInstance struct {
	reset   decoderResetter
	adapter *readerAdapter
	r       io.Reader
	buff    []byte
}

func newBaseInstance(reset decoderResetter) instantiator {
	return func() Decompressor {
		return &baseInstance{
			reset:   reset,
			adapter: newAdapter(),
		}
	}
}

func (b *baseInstance) Reset(source Fetcher, bufferSize int) (err error) {
	if cap(b.buff) < bufferSize {
		b.buff = make([]byte, bufferSize)
	}

	b.buff = b.buff[:bufferSize]
	b.adapter.Reset(source)
	b.r, err = b.reset(b.r, b.adapter)

	return err
}

func (b *baseInstance) Fetch() ([]byte, error) {
	n, err := b.r.Read(b.buff)
	return b.buff[:n], err
}

type readerAdapter struct {
	fetcher Fetcher
	err     error
	data    []byte
}

func newAdapter() *readerAdapter {
	return new(readerAdapter)
}

func (r *readerAdapter) Read(b []byte) (n int, err error) {
	if len(r.data) == 0 {
		if r.err != nil {
			return 0, r.err
		}

		r.data, r.err = r.fetcher.Fetch()
	}

	n = copy(b, r.data)
	r.data = r.data[n:]
	if len(r.data) == 0 {
		err = r.err
	}

	return n, err
}

func (r *readerAdapter) Reset(fetcher Fetcher) {
	*r = readerAdapter{fetcher: fetcher}
}
