package mime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/indigo-web/mpfetch/internal/strutil"
	"github.com/indigo-web/utils/strcomp"
)

var (
	ErrNoContentType      = errors.New("no content type")
	ErrInvalidContentType = errors.New("invalid content type")
	ErrNotMultipart       = errors.New("not a multipart content type")
	ErrNoBoundary         = errors.New("no boundary")
)

// Params are the parts of a multipart Content-Type value the decoding depends on. Type and
// Subtype are lowercased.
type Params struct {
	Type     string
	Subtype  string
	Boundary string
}

// MaxBoundaryLen is the boundary length limit imposed by RFC 2046. Only ValidBoundary
// enforces it.
const MaxBoundaryLen = 70

// ParseMultipart parses a multipart Content-Type value, e.g.
// `multipart/mixed; boundary="simple boundary"`.
//
// An empty value results in ErrNoContentType. A value, which can't be parsed, results in
// ErrInvalidContentType, wrapping the exact cause. Valid non-multipart types result in
// ErrNotMultipart and a missing or empty boundary in ErrNoBoundary. The boundary isn't
// checked against RFC 2046, as plenty of senders don't follow it; if the parameter is
// repeated, the last one wins.
func ParseMultipart(value string) (Params, error) {
	value = strutil.StripWS(value)
	if len(value) == 0 {
		return Params{}, ErrNoContentType
	}

	mediaType, params := strutil.CutHeader(value)
	typ, subtype, found := strings.Cut(strutil.RStripWS(mediaType), "/")
	if !found || !strutil.IsToken(typ) || !strutil.IsToken(subtype) {
		return Params{}, fmt.Errorf("%w: malformed media type %q", ErrInvalidContentType, mediaType)
	}

	var boundary string

	for key, val := range strutil.WalkParams(params) {
		if len(key) == 0 {
			return Params{}, fmt.Errorf("%w: malformed parameters %q", ErrInvalidContentType, params)
		}

		if strcomp.EqualFold(key, "boundary") {
			boundary = val
		}
	}

	if !strcomp.EqualFold(typ, "multipart") {
		return Params{}, ErrNotMultipart
	}

	if len(boundary) == 0 {
		return Params{}, ErrNoBoundary
	}

	return Params{
		Type:     strings.ToLower(typ),
		Subtype:  strings.ToLower(subtype),
		Boundary: boundary,
	}, nil
}

// ValidBoundary reports whether the boundary is 1 to 70 characters long, consists only of
// bchars and doesn't end with a space, as RFC 2046 requires.
func ValidBoundary(boundary string) bool {
	if len(boundary) == 0 || len(boundary) > MaxBoundaryLen || boundary[len(boundary)-1] == ' ' {
		return false
	}

	for i := 0; i < len(boundary); i++ {
		if !bchars[boundary[i]] {
			return false
		}
	}

	return true
}

var bchars = [256]bool{}

func init() {
	for c := '0'; c <= '9'; c++ {
		bchars[c] = true
	}

	for c := 'a'; c <= 'z'; c++ {
		bchars[c] = true
		bchars[c-'a'+'A'] = true
	}

	for _, c := range "'()+_,-./:=? " {
		bchars[c] = true
	}
}
