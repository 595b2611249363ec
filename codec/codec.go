package codec

import (
	"strings"
)

// Fetcher is a pull-based source of bytes, returning io.EOF at the end.
type Fetcher interface {
	Fetch() ([]byte, error)
}

type Codec interface {
	// Token returns a coding token associated with the codec itself.
	Token() string
	New() Decompressor
}

// Decompressor is a Fetcher, which yields decoded data of the source it was reset to.
type Decompressor interface {
	Fetcher
	Reset(source Fetcher, bufferSize int) error
}

var builtin = []Codec{NewGZIP(), NewZSTD(), NewDeflate()}

// Lookup returns a codec by its coding token, case-insensitively. x-gzip is an alias to gzip.
func Lookup(token string) (Codec, bool) {
	token = strings.ToLower(token)
	if token == "x-gzip" {
		token = "gzip"
	}

	for _, c := range builtin {
		if c.Token() == token {
			return c, true
		}
	}

	return nil, false
}
