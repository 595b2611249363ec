package strutil

import (
	"iter"
	"strings"
)

// tokenChars are the characters permitted in tokens by RFC 2045: any visible US-ASCII
// character except tspecials.
var tokenChars = [256]bool{}

func init() {
	for c := 0x21; c < 0x7f; c++ {
		tokenChars[c] = true
	}

	for _, c := range `()<>@,;:\"/[]?=` {
		tokenChars[c] = false
	}
}

// IsToken reports whether the string is a non-empty RFC 2045 token.
func IsToken(str string) bool {
	if len(str) == 0 {
		return false
	}

	for i := 0; i < len(str); i++ {
		if !tokenChars[str[i]] {
			return false
		}
	}

	return true
}

// WalkParams iterates over media type parameters, in form of `key=value; key="quoted value"`.
// Quoted values are unquoted, including escaped characters. Unquoted values are more tolerant
// than tokens are, as mail agents tend to put `=` and `/` in boundaries without quoting them.
// A trailing semicolon is allowed. Malformed input yields a pair of empty strings, after which
// the iteration stops.
func WalkParams(data string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		var key, value string

	paramKey:
		data = LStripWS(data)
		if len(data) == 0 {
			return
		}

		for i := 0; i < len(data); i++ {
			if data[i] == '=' {
				key = RStripWS(data[:i])
				data = LStripWS(data[i+1:])
				if !IsToken(key) {
					yield("", "")
					return
				}

				if len(data) > 0 && data[0] == '"' {
					goto quotedValue
				}

				goto paramValue
			}
		}

		yield("", "")
		return

	paramValue:
		{
			end := strings.IndexByte(data, ';')
			if end == -1 {
				end = len(data)
			}

			value, data = RStripWS(data[:end]), data[end:]
			if !isValue(value) {
				yield("", "")
				return
			}
		}

		goto separator

	quotedValue:
		{
			var ok bool
			value, data, ok = unquote(data)
			if !ok {
				yield("", "")
				return
			}
		}

	separator:
		if !yield(key, value) {
			return
		}

		data = LStripWS(data)
		if len(data) == 0 {
			return
		}

		if data[0] != ';' {
			yield("", "")
			return
		}

		data = data[1:]
		goto paramKey
	}
}

func isValue(str string) bool {
	if len(str) == 0 {
		return false
	}

	for i := 0; i < len(str); i++ {
		if c := str[i]; c <= 0x20 || c >= 0x7f || c == '"' || c == '\\' {
			return false
		}
	}

	return true
}

// unquote consumes a quoted-string at the beginning of data, returning its content and the
// rest of the data.
func unquote(data string) (value, rest string, ok bool) {
	var escapes bool

	for i := 1; i < len(data); i++ {
		switch data[i] {
		case '\\':
			escapes = true
			i++
		case '"':
			value = data[1:i]
			if escapes {
				value = unescape(value)
			}

			return value, data[i+1:], true
		case '\r', '\n':
			return "", "", false
		}
	}

	return "", "", false
}

func unescape(str string) string {
	var b strings.Builder
	b.Grow(len(str))

	for i := 0; i < len(str); i++ {
		if str[i] == '\\' && i+1 < len(str) {
			i++
		}

		b.WriteByte(str[i])
	}

	return b.String()
}
