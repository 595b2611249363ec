package headers

import (
	"bytes"
	"io"
	"strings"

	"github.com/indigo-web/mpfetch/internal/buffer"
	"github.com/indigo-web/mpfetch/internal/scan"
	"github.com/indigo-web/mpfetch/kv"
)

// Result is the outcome of the header extraction.
//
// If the header block was found, Parsed is set and Headers contain every field in the order of
// appearance, whereas Remainder holds the beginning of the body, arrived in the same chunk as
// the blank line. Otherwise, Raw contains all the accumulated bytes, which must be treated as
// the body, followed by the Remainder (if any).
//
// Raw and Remainder alias the passed buffer, so they're valid until it's cleared.
type Result struct {
	Headers   []kv.Pair
	Raw       []byte
	Remainder scan.Chunk
	Parsed    bool
}

// Extract accumulates chunks until an empty line is met and parses everything before it as a
// header block. A line break is a CR immediately followed by an LF, which may be split between
// chunks.
//
// If the buffer overflows, the accumulated data is given up on as a header block and returned
// raw, with the chunk caused the overflow being the Remainder. The same happens, except for
// the Remainder, if the stream ends before the blank line. Upstream errors are returned as is.
func Extract(src scan.ChunkStream, buff *buffer.Buffer) (Result, error) {
	buff.Clear()

	var (
		lines  []span
		cursor int
	)

	for {
		chunk, err := src.Next()
		switch err {
		case nil:
		case io.EOF:
			return Result{Raw: buff.Preview()}, nil
		default:
			return Result{}, err
		}

		offset := buff.Len()
		if !buff.Append(chunk.Data) {
			return Result{Raw: buff.Preview(), Remainder: chunk}, nil
		}

		data := buff.Preview()
		// the CR might be the last byte of the previous chunk.
		from := max(cursor, offset-1)

		for {
			lf := lineBreak(data, from)
			if lf == -1 {
				break
			}

			if lf == cursor {
				return Result{
					Headers:   parse(data, lines),
					Remainder: scan.Chunk{Data: data[lf+2:]},
					Parsed:    true,
				}, nil
			}

			lines = append(lines, span{cursor, lf})
			cursor = lf + 2
			from = cursor
		}
	}
}

type span struct {
	begin, end int
}

// lineBreak returns the position of the first CRLF starting at or after from, or -1 if none
// was found.
func lineBreak(data []byte, from int) int {
	for from < len(data) {
		cr := bytes.IndexByte(data[from:], '\r')
		if cr == -1 {
			return -1
		}

		cr += from
		if cr+1 < len(data) && data[cr+1] == '\n' {
			return cr
		}

		from = cr + 1
	}

	return -1
}

func parse(data []byte, lines []span) []kv.Pair {
	pairs := make([]kv.Pair, 0, len(lines))

	for _, line := range lines {
		// the line is copied out, as the buffer is going to be reused. Any CR left in
		// the line isn't followed by an LF, so it's considered a whitespace.
		text := strings.ReplaceAll(string(data[line.begin:line.end]), "\r", " ")

		if len(text) > 0 && text[0] != ' ' && text[0] != '\t' {
			if colon := strings.IndexByte(text, ':'); colon != -1 {
				pairs = append(pairs, kv.Pair{
					Key:   strings.TrimSpace(text[:colon]),
					Value: strings.TrimSpace(text[colon+1:]),
				})
				continue
			}
		}

		// obs-fold or a malformed line, both are a continuation of the previous value.
		if len(pairs) == 0 {
			continue
		}

		last := &pairs[len(pairs)-1]
		last.Value += " " + strings.TrimSpace(text)
	}

	return pairs
}
