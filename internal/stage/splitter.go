package stage

import (
	"io"

	"github.com/indigo-web/mpfetch/internal/scan"
)

// Splitter regroups a flat item sequence into groups, one per part. A group is a run of data
// chunks up to (not including) the next boundary. Groups exist only for items following a
// boundary, so a boundary right at the end of the stream doesn't open a new one, whereas two
// adjacent boundaries produce an empty group in between.
type Splitter struct {
	src   scan.Stream
	group *Group
}

func NewSplitter(src scan.Stream) *Splitter {
	return &Splitter{src: src}
}

// Next returns the next group. The unread rest of the previous group is discarded first.
// io.EOF is returned when no more groups are left.
func (s *Splitter) Next() (*Group, error) {
	if s.group != nil {
		if err := s.group.discard(); err != nil {
			return nil, err
		}

		s.group = nil
	}

	item, err := s.src.Next()
	if err != nil {
		return nil, err
	}

	group := &Group{src: s.src}
	if item.Boundary {
		group.done = true
	} else {
		group.first, group.hasFirst = item.Chunk, true
	}

	s.group = group
	return group, nil
}

func (s *Splitter) Close() error {
	if s.group != nil {
		s.group.done = true
		s.group.hasFirst = false
	}

	return s.src.Close()
}

// Group is a lazy sequence of data chunks of a single part. It shares the upstream with the
// Splitter, so it must be consumed before the next group is requested.
type Group struct {
	src      scan.Stream
	first    scan.Chunk
	hasFirst bool
	done     bool
}

// Next returns the next chunk of the group or io.EOF if the group is over.
func (g *Group) Next() (scan.Chunk, error) {
	if g.hasFirst {
		g.hasFirst = false
		chunk := g.first
		g.first = scan.Chunk{}
		return chunk, nil
	}

	if g.done {
		return scan.Chunk{}, io.EOF
	}

	item, err := g.src.Next()
	switch {
	case err == io.EOF:
		g.done = true
		return scan.Chunk{}, io.EOF
	case err != nil:
		return scan.Chunk{}, err
	case item.Boundary:
		g.done = true
		return scan.Chunk{}, io.EOF
	}

	return item.Chunk, nil
}

func (g *Group) discard() error {
	for {
		_, err := g.Next()
		switch err {
		case nil:
		case io.EOF:
			return nil
		default:
			return err
		}
	}
}
