package stage

import (
	"io"

	"github.com/indigo-web/mpfetch/internal/scan"
)

type tailState uint8

const (
	eNoTail tailState = iota
	// eTail2 means the last item was a boundary, so two dashes right after it would make
	// it the closing one.
	eTail2
	// eTail1 means a single dash was withheld right after a boundary.
	eTail1
	eTerminated
)

// Epilogue recognizes the closing delimiter, which is a boundary immediately followed by two
// dashes. Once met, the stop hook is called (normally disabling the upstream scanner) and
// the rest of the stream is drained without being inspected, so the epilogue never reaches
// the consumer. A single dash, which turned out not to be a part of the closing delimiter,
// is restored in its place.
type Epilogue struct {
	src      scan.Stream
	stop     func()
	state    tailState
	deferred scan.Item
	pending  bool
	err      error
}

// NewEpilogue returns the epilogue stage. The opened flag tells whether a boundary was already
// consumed upstream, which is the case when the stage follows the Preamble.
func NewEpilogue(src scan.Stream, stop func(), opened bool) *Epilogue {
	e := &Epilogue{
		src:  src,
		stop: stop,
	}

	if opened {
		e.state = eTail2
	}

	return e
}

func (e *Epilogue) Next() (scan.Item, error) {
	if e.pending {
		e.pending = false
		item := e.deferred
		e.deferred = scan.Item{}
		return item, nil
	}

	for {
		if e.state == eTerminated {
			return scan.Item{}, e.err
		}

		item, err := e.src.Next()
		if err != nil {
			if e.state == eTail1 {
				// the stream is over right after a lone dash. As errors are sticky, the
				// next call is going to return the same error again.
				e.state = eNoTail
				return dash(), nil
			}

			return item, err
		}

		switch e.state {
		case eNoTail:
			if item.Boundary {
				e.state = eTail2
			}

			return item, nil
		case eTail2:
			if item.Boundary {
				return item, nil
			}

			data := item.Data
			if len(data) == 1 {
				if data[0] == '-' {
					e.state = eTail1
					continue
				}

				e.state = eNoTail
				return item, nil
			}

			if data[0] == '-' && data[1] == '-' {
				return e.terminate()
			}

			e.state = eNoTail
			return item, nil
		case eTail1:
			if item.Boundary {
				e.state = eTail2
				e.deferItem(item)
				return dash(), nil
			}

			if item.Data[0] == '-' {
				return e.terminate()
			}

			e.state = eNoTail
			e.deferItem(item)
			return dash(), nil
		}
	}
}

// Close releases the upstream. The stage returns io.EOF afterward.
func (e *Epilogue) Close() error {
	if e.state != eTerminated {
		e.state = eTerminated
		e.err = io.EOF
	}

	e.pending = false
	e.deferred = scan.Item{}

	return e.src.Close()
}

func (e *Epilogue) terminate() (scan.Item, error) {
	e.state = eTerminated
	if e.stop != nil {
		e.stop()
	}

	for {
		if _, err := e.src.Next(); err != nil {
			e.err = err
			return scan.Item{}, err
		}
	}
}

func (e *Epilogue) deferItem(item scan.Item) {
	e.deferred = item
	e.pending = true
}

func dash() scan.Item {
	return scan.Data([]byte{'-'}, true)
}
