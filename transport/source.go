package transport

import (
	"io"
	"net"
	"time"
)

// Source is a pull-based producer of byte chunks. The returned chunk might be reused on the
// next call to Fetch. io.EOF signals the end, optionally along with the last chunk. Close
// must be safe to call multiple times.
type Source interface {
	Fetch() ([]byte, error)
	Close() error
}

type reader struct {
	r      io.Reader
	buff   []byte
	closed bool
}

// NewReader adapts an io.Reader into the Source, reading into the buff. If r is an io.Closer,
// it'll be closed at most once by Close.
func NewReader(r io.Reader, buff []byte) Source {
	return &reader{
		r:    r,
		buff: buff,
	}
}

func (r *reader) Fetch() ([]byte, error) {
	n, err := r.r.Read(r.buff)
	return r.buff[:n], err
}

func (r *reader) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true
	if closer, ok := r.r.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

type conn struct {
	conn   net.Conn
	buff   []byte
	closed bool
}

// NewConn adapts a connection into the Source. Every read is limited by the timeout, unless
// it's zero.
func NewConn(c net.Conn, timeout time.Duration, buff []byte) Source {
	return &conn{
		conn: WithReadTimeout(c, timeout),
		buff: buff,
	}
}

// Fetch reads data into the internal buffer and returns a piece of it back.
func (c *conn) Fetch() ([]byte, error) {
	n, err := c.conn.Read(c.buff)
	return c.buff[:n], err
}

// Close closes the connection.
func (c *conn) Close() error {
	if c.closed {
		return nil
	}

	c.closed = true
	return c.conn.Close()
}

type timeoutConn struct {
	net.Conn
	timeout time.Duration
}

// WithReadTimeout returns the connection with the read deadline renewed before every read,
// so the timeout limits how long a single read may block rather than the whole exchange.
// Zero timeout returns the connection as is.
func WithReadTimeout(c net.Conn, timeout time.Duration) net.Conn {
	if timeout <= 0 {
		return c
	}

	return &timeoutConn{Conn: c, timeout: timeout}
}

func (t *timeoutConn) Read(b []byte) (int, error) {
	if err := t.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
		return 0, err
	}

	return t.Conn.Read(b)
}
