package mime

import (
	"strings"

	"github.com/indigo-web/mpfetch/internal/strutil"
)

type MIME = string

const (
	OctetStream MIME = "application/octet-stream"
	Plain       MIME = "text/plain"
	HTML        MIME = "text/html"
	JSON        MIME = "application/json"
	RFC822      MIME = "message/rfc822"
)

// Multipart subtypes registered by RFC 2046 and its successors.
const (
	Mixed       = "mixed"
	Alternative = "alternative"
	Digest      = "digest"
	Parallel    = "parallel"
	FormData    = "form-data"
	Related     = "related"
	ByteRanges  = "byteranges"
)

// Complies returns whether two MIMEs are compatible. Empty MIME is considered compatible with
// any other MIME.
func Complies(mime MIME, with string) bool {
	// get rid of parameters if any
	with, _ = strutil.CutHeader(with)
	with = strutil.StripWS(with)
	return len(with) == 0 || strings.EqualFold(with, mime)
}

// DefaultPartType returns the Content-Type a part implicitly has, if it declares none. Parts
// of a digest are messages themselves, whereas in any other subtype they are plain text.
func DefaultPartType(subtype string) MIME {
	if subtype == Digest {
		return RFC822
	}

	return Plain
}
