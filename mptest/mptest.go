// Package mptest builds multipart messages for tests.
package mptest

import (
	"strings"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/mpfetch/kv"
)

// BoundaryLen is the length of generated boundaries.
const BoundaryLen = 32

// RandomBoundary returns a boundary which is practically guaranteed not to occur in the
// message content.
func RandomBoundary() string {
	return uniuri.NewLen(BoundaryLen)
}

type Part struct {
	Headers []kv.Pair
	Body    string
}

// Message builds a multipart message. The zero value produces a message with a random
// boundary and no preamble or epilogue.
type Message struct {
	Boundary string
	Preamble string
	Epilogue string
	Parts    []Part
}

func NewMessage(parts ...Part) *Message {
	return &Message{
		Boundary: RandomBoundary(),
		Parts:    parts,
	}
}

// Add appends a part with headers given as key-value pairs, e.g.
// Add("Hello", "Content-Type", "text/plain").
func (m *Message) Add(body string, headers ...string) *Message {
	part := Part{Body: body}
	for i := 0; i+1 < len(headers); i += 2 {
		part.Headers = append(part.Headers, kv.Pair{Key: headers[i], Value: headers[i+1]})
	}

	m.Parts = append(m.Parts, part)
	return m
}

// ContentType returns the Content-Type value for the message.
func (m *Message) ContentType(subtype string) string {
	return "multipart/" + subtype + `; boundary="` + m.boundary() + `"`
}

func (m *Message) String() string {
	var b strings.Builder
	boundary := m.boundary()

	if len(m.Preamble) > 0 {
		b.WriteString(m.Preamble)
		b.WriteString("\r\n")
	}

	for _, part := range m.Parts {
		b.WriteString("--" + boundary + "\r\n")
		for _, header := range part.Headers {
			b.WriteString(header.Key + ": " + header.Value + "\r\n")
		}

		b.WriteString("\r\n")
		b.WriteString(part.Body)
		b.WriteString("\r\n")
	}

	b.WriteString("--" + boundary + "--")
	if len(m.Epilogue) > 0 {
		b.WriteString("\r\n")
		b.WriteString(m.Epilogue)
	}

	return b.String()
}

func (m *Message) boundary() string {
	if len(m.Boundary) == 0 {
		m.Boundary = RandomBoundary()
	}

	return m.Boundary
}

// Scatter splits the text into pieces of the step size, the last one might be shorter.
func Scatter(text string, step int) (pieces []string) {
	for i := 0; i < len(text); i += step {
		pieces = append(pieces, text[i:min(i+step, len(text))])
	}

	return pieces
}
