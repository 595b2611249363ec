package scan

import (
	"bytes"
	"io"
)

var crlf = []byte("\r\n")

// Source is a pull-based producer of byte chunks. The returned chunk may be reused by the
// source on the next call to Fetch. io.EOF signals the end, optionally along with the last
// chunk.
type Source interface {
	Fetch() ([]byte, error)
	Close() error
}

// Scanner splits a chunked byte stream into data segments and boundary events. The delimiter
// is searched with a streaming variant of Boyer-Moore-Horspool: bytes which might be the
// beginning of a delimiter split between chunks are held back in the lookbehind buffer
// until the next chunk either completes or refutes the match.
//
// Data found within a source chunk is returned as a borrowed view into it; data released from
// the lookbehind is always an owned copy.
type Scanner struct {
	src        Source
	needle     []byte
	skip       [256]int
	lookbehind []byte
	window     []byte
	queue      []Item
	head       int
	started    bool
	stopped    bool
	released   bool
	err        error
}

func New(src Source, boundary string) *Scanner {
	needle := []byte("\r\n--" + boundary)
	s := &Scanner{
		src:        src,
		needle:     needle,
		lookbehind: make([]byte, 0, len(needle)),
		window:     make([]byte, 0, 2*len(needle)),
	}

	for i := range s.skip {
		s.skip[i] = len(needle)
	}

	for i := 0; i < len(needle)-1; i++ {
		s.skip[needle[i]] = len(needle) - 1 - i
	}

	return s
}

// Stop disables the delimiter matching. All the pending items are dropped and the following
// calls to Next are only draining the source until it's exhausted.
func (s *Scanner) Stop() {
	s.stopped = true
}

// Next returns the next item. io.EOF is returned when the source is exhausted, any other
// source error is returned as is. Both are sticky.
func (s *Scanner) Next() (Item, error) {
	for {
		if s.stopped {
			return Item{}, s.drain()
		}

		if s.head < len(s.queue) {
			item := s.queue[s.head]
			s.queue[s.head] = Item{}
			s.head++
			return item, nil
		}

		if s.err != nil {
			return Item{}, s.err
		}

		s.queue, s.head = s.queue[:0], 0
		s.pull()
	}
}

// Close releases the source. It's closed exactly once, no matter how many times Close is
// called or whether the source was already exhausted.
func (s *Scanner) Close() error {
	if s.err == nil {
		s.err = io.EOF
	}

	s.queue, s.head = s.queue[:0], 0
	s.lookbehind = s.lookbehind[:0]

	return s.release()
}

func (s *Scanner) pull() {
	if !s.started {
		// the very first boundary isn't preceded by a CRLF, so feed one artificially in
		// order to match it the same way as all the others.
		s.started = true
		s.push(crlf)
		return
	}

	data, err := s.src.Fetch()
	if len(data) > 0 {
		s.push(data)
	}

	if err != nil {
		if err == io.EOF {
			s.emitOwned(s.lookbehind)
			s.lookbehind = s.lookbehind[:0]
		}

		s.err = err
		_ = s.release()
	}
}

func (s *Scanner) drain() error {
	s.queue, s.head = s.queue[:0], 0
	s.lookbehind = s.lookbehind[:0]

	for s.err == nil {
		if _, err := s.src.Fetch(); err != nil {
			s.err = err
			_ = s.release()
		}
	}

	return s.err
}

func (s *Scanner) release() error {
	if s.released {
		return nil
	}

	s.released = true
	return s.src.Close()
}

func (s *Scanner) push(data []byte) {
	if len(s.lookbehind) > 0 {
		offset, ok := s.resolveLookbehind(data)
		if !ok {
			return
		}

		data = data[offset:]
	}

	s.search(data)
}

// resolveLookbehind checks whether the delimiter starts somewhere within the lookbehind. It
// returns the offset in data the regular search must continue from. If data is too short to
// decide, it's entirely absorbed by the lookbehind and false is returned.
func (s *Scanner) resolveLookbehind(data []byte) (offset int, ok bool) {
	lb, n := s.lookbehind, len(s.needle)
	s.window = append(s.window[:0], lb...)
	s.window = append(s.window, data[:min(len(data), n-1)]...)

	for pos := 0; pos < len(lb); pos++ {
		rest := s.window[pos:]
		if len(rest) >= n {
			if !bytes.Equal(rest[:n], s.needle) {
				continue
			}

			s.emitOwned(lb[:pos])
			s.queue = append(s.queue, Boundary())
			s.lookbehind = lb[:0]
			return pos + n - len(lb), true
		}

		if !bytes.HasPrefix(s.needle, rest) {
			continue
		}

		// the window contains the whole data here, as it's shorter than the delimiter.
		s.emitOwned(lb[:pos])
		s.lookbehind = append(lb[:0], rest...)
		return 0, false
	}

	s.emitOwned(lb)
	s.lookbehind = lb[:0]
	return 0, true
}

func (s *Scanner) search(data []byte) {
	n := len(s.needle)
	last := n - 1
	begin, i := 0, 0

	for i+n <= len(data) {
		c := data[i+last]
		if c == s.needle[last] && bytes.Equal(data[i:i+last], s.needle[:last]) {
			s.emit(data[begin:i])
			s.queue = append(s.queue, Boundary())
			i += n
			begin = i
			continue
		}

		i += s.skip[c]
	}

	// no full match may start before len(data)-n+1, however positions after it might be
	// a beginning of the delimiter continued in the next chunk.
	tail := max(begin, len(data)-n+1)
	for ; tail < len(data); tail++ {
		if bytes.HasPrefix(s.needle, data[tail:]) {
			break
		}
	}

	s.emit(data[begin:tail])
	s.lookbehind = append(s.lookbehind[:0], data[tail:]...)
}

func (s *Scanner) emit(data []byte) {
	if len(data) > 0 {
		s.queue = append(s.queue, Data(data, false))
	}
}

func (s *Scanner) emitOwned(data []byte) {
	if len(data) > 0 {
		s.queue = append(s.queue, Data(bytes.Clone(data), true))
	}
}
