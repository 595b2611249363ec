package stage

import (
	"github.com/indigo-web/mpfetch/internal/scan"
)

type paddingState uint8

const (
	ePadding2 paddingState = iota
	ePadding1
	ePassthrough
)

// Padding strips the CRLF terminating the boundary line, which is the first thing in every
// group. The CRLF might be split between chunks. If the group starts with anything else, it's
// passed as is.
type Padding struct {
	src      scan.ChunkStream
	state    paddingState
	deferred scan.Chunk
	pending  bool
}

func NewPadding(src scan.ChunkStream) *Padding {
	return &Padding{src: src}
}

func (p *Padding) Next() (scan.Chunk, error) {
	if p.pending {
		p.pending = false
		chunk := p.deferred
		p.deferred = scan.Chunk{}
		return chunk, nil
	}

	for {
		chunk, err := p.src.Next()
		if err != nil {
			if p.state == ePadding1 {
				// a lone CR is the whole group, so it's data.
				p.state = ePassthrough
				return carriageReturn(), nil
			}

			return chunk, err
		}

		data := chunk.Data
		if len(data) == 0 {
			continue
		}

		switch p.state {
		case ePassthrough:
			return chunk, nil
		case ePadding2:
			if len(data) == 1 {
				if data[0] == '\r' {
					p.state = ePadding1
					continue
				}

				p.state = ePassthrough
				return chunk, nil
			}

			p.state = ePassthrough
			if data[0] == '\r' && data[1] == '\n' {
				if len(data) == 2 {
					continue
				}

				return scan.Chunk{Data: data[2:], Owned: chunk.Owned}, nil
			}

			return chunk, nil
		case ePadding1:
			p.state = ePassthrough
			if data[0] == '\n' {
				if len(data) == 1 {
					continue
				}

				return scan.Chunk{Data: data[1:], Owned: chunk.Owned}, nil
			}

			p.deferred, p.pending = chunk, true
			return carriageReturn(), nil
		}
	}
}

func carriageReturn() scan.Chunk {
	return scan.Chunk{Data: []byte{'\r'}, Owned: true}
}
