package dummy

import (
	"io"
)

// Source returns the data it was initialised with, one piece per fetch. After the data is
// over, it returns io.EOF, or a custom error if one is set. It also tracks how many times it
// was fetched past the end and how many times it was closed, making it suitable for testing
// resource release.
type Source struct {
	data    [][]byte
	pointer int
	err     error
	closes  int
	fetches int
	reuse   []byte
}

func NewSource(data ...[]byte) *Source {
	return &Source{
		data: data,
		err:  io.EOF,
	}
}

// NewStringSource is a convenience wrapper over NewSource.
func NewStringSource(data ...string) *Source {
	pieces := make([][]byte, len(data))
	for i, str := range data {
		pieces[i] = []byte(str)
	}

	return NewSource(pieces...)
}

// WithError sets an error returned instead of io.EOF once the data is over.
func (s *Source) WithError(err error) *Source {
	s.err = err
	return s
}

// Reusing makes the source return every piece through the same internal buffer, the same
// way network readers do. Retaining a returned chunk past the next Fetch is therefore
// detectable.
func (s *Source) Reusing() *Source {
	s.reuse = make([]byte, 0, 64)
	return s
}

func (s *Source) Fetch() ([]byte, error) {
	s.fetches++
	if s.pointer >= len(s.data) {
		return nil, s.err
	}

	piece := s.data[s.pointer]
	s.pointer++

	if s.reuse != nil {
		for i := range s.reuse {
			s.reuse[i] = 0
		}

		s.reuse = append(s.reuse[:0], piece...)
		piece = s.reuse
	}

	return piece, nil
}

func (s *Source) Close() error {
	s.closes++
	return nil
}

// Closes returns how many times Close was called.
func (s *Source) Closes() int {
	return s.closes
}

// Exhausted reports whether every piece was fetched.
func (s *Source) Exhausted() bool {
	return s.pointer >= len(s.data)
}

// Fetches returns the total number of Fetch calls.
func (s *Source) Fetches() int {
	return s.fetches
}
