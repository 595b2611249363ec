package mpfetch

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/indigo-web/mpfetch/mime"
	"github.com/indigo-web/mpfetch/mptest"
	"github.com/indigo-web/mpfetch/transport"
	"github.com/indigo-web/mpfetch/transport/dummy"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func firstPart(t *testing.T, m *mptest.Message, step int) *Part {
	src := dummy.NewStringSource(mptest.Scatter(m.String(), step)...)
	r, err := New(src, m.ContentType("mixed"), nil)
	require.NoError(t, err)
	part, err := r.NextPart()
	require.NoError(t, err)
	return part
}

func TestBody(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		m := mptest.NewMessage().Add(`{"name": "mpfetch", "parts": 2}`, "Content-Type", "application/json; charset=utf-8")

		var model struct {
			Name  string `json:"name"`
			Parts int    `json:"parts"`
		}
		require.NoError(t, firstPart(t, m, 3).Body.JSON(&model))
		require.Equal(t, "mpfetch", model.Name)
		require.Equal(t, 2, model.Parts)
	})

	t.Run("json of a plain text part", func(t *testing.T) {
		m := mptest.NewMessage().Add(`{}`)
		var model map[string]any
		require.ErrorIs(t, firstPart(t, m, 3).Body.JSON(&model), ErrUnsupportedMediaType)
	})

	t.Run("reader", func(t *testing.T) {
		text := strings.Repeat("Hello, world! ", 50)
		m := mptest.NewMessage().Add(text)
		data, err := io.ReadAll(firstPart(t, m, 7).Body)
		require.NoError(t, err)
		require.Equal(t, text, string(data))
	})

	t.Run("callback", func(t *testing.T) {
		text := strings.Repeat("Hello, world! ", 50)
		m := mptest.NewMessage().Add(text)

		var b strings.Builder
		err := firstPart(t, m, 11).Body.Callback(func(data []byte) error {
			require.NotEmpty(t, data)
			b.Write(data)
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, text, b.String())
	})

	t.Run("callback error", func(t *testing.T) {
		m := mptest.NewMessage().Add("some body").Add("next")
		src := dummy.NewStringSource(m.String())
		r, err := New(src, m.ContentType("mixed"), nil)
		require.NoError(t, err)

		part, err := r.NextPart()
		require.NoError(t, err)
		failure := errors.New("enough")
		require.Equal(t, failure, part.Body.Callback(func([]byte) error {
			return failure
		}))

		next, err := r.NextPart()
		require.NoError(t, err)
		body, err := next.Body.String()
		require.NoError(t, err)
		require.Equal(t, "next", body)
	})

	t.Run("bytes survive the next part", func(t *testing.T) {
		m := mptest.NewMessage().Add("first").Add("second")
		src := dummy.NewStringSource(mptest.Scatter(m.String(), 2)...).Reusing()
		r, err := New(src, m.ContentType("mixed"), nil)
		require.NoError(t, err)

		part, err := r.NextPart()
		require.NoError(t, err)
		first, err := part.Body.Bytes()
		require.NoError(t, err)

		_, err = r.NextPart()
		require.NoError(t, err)
		require.Equal(t, "first", string(first))
	})
}

func gzipped(text string) []byte {
	buff := bytes.NewBuffer(nil)
	w := gzip.NewWriter(buff)
	_, _ = w.Write([]byte(text))
	_ = w.Close()
	return buff.Bytes()
}

type trackingBody struct {
	io.Reader
	reads  int
	closes int
}

func (t *trackingBody) Read(b []byte) (int, error) {
	t.reads++
	return t.Reader.Read(b)
}

func (t *trackingBody) Close() error {
	t.closes++
	return nil
}

func TestFromResponse(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		body := &trackingBody{Reader: strings.NewReader(digestMessage)}
		resp := &http.Response{
			Header: http.Header{"Content-Type": {`multipart/digest; boundary="boundary"`}},
			Body:   body,
		}

		r, err := FromResponse(resp, nil)
		require.NoError(t, err)
		require.Len(t, readAll(t, r), 3)
		require.Equal(t, 1, body.closes)
	})

	t.Run("gzip", func(t *testing.T) {
		body := &trackingBody{Reader: bytes.NewReader(gzipped(digestMessage))}
		resp := &http.Response{
			Header: http.Header{
				"Content-Type":     {`multipart/digest; boundary="boundary"`},
				"Content-Encoding": {"gzip"},
			},
			Body: body,
		}

		r, err := FromResponse(resp, nil)
		require.NoError(t, err)
		require.Zero(t, body.reads)
		parts := readAll(t, r)
		require.Len(t, parts, 3)
		require.Equal(t, "Method: PATCH\r\nDate: Sat, 08 Jun 2024 00:11:22 GMT\r\n\r\n", parts[0].Body)
		require.Equal(t, 1, body.closes)
	})

	t.Run("corrupted gzip", func(t *testing.T) {
		body := &trackingBody{Reader: strings.NewReader("definitely not gzip")}
		resp := &http.Response{
			Header: http.Header{
				"Content-Type":     {"multipart/mixed; boundary=b"},
				"Content-Encoding": {"gzip"},
			},
			Body: body,
		}

		r, err := FromResponse(resp, nil)
		require.NoError(t, err)
		require.Zero(t, body.reads)

		_, err = r.NextPart()
		require.Error(t, err)
		require.NotEqual(t, io.EOF, err)
		require.Equal(t, 1, body.closes)
	})

	t.Run("no body", func(t *testing.T) {
		resp := &http.Response{
			Header: http.Header{"Content-Type": {"multipart/mixed; boundary=b"}},
			Body:   http.NoBody,
		}
		_, err := FromResponse(resp, nil)
		require.ErrorIs(t, err, ErrNoBody)
	})

	t.Run("not multipart", func(t *testing.T) {
		resp := &http.Response{
			Header: http.Header{"Content-Type": {"text/html"}},
			Body:   io.NopCloser(strings.NewReader("<html></html>")),
		}
		_, err := FromResponse(resp, nil)
		require.ErrorIs(t, err, mime.ErrNotMultipart)
	})

	t.Run("unsupported encoding", func(t *testing.T) {
		resp := &http.Response{
			Header: http.Header{
				"Content-Type":     {"multipart/mixed; boundary=b"},
				"Content-Encoding": {"br"},
			},
			Body: io.NopCloser(strings.NewReader("")),
		}
		_, err := FromResponse(resp, nil)
		require.ErrorIs(t, err, transport.ErrUnsupportedEncoding)
	})
}

func TestParseBody(t *testing.T) {
	const entity = "Content-Type: text/plain\r\n\r\nThe quick brown fox jumps over the lazy dog.\r\n"

	for _, step := range []int{1, 5, len(entity)} {
		src := dummy.NewStringSource(mptest.Scatter(entity, step)...).Reusing()
		part, err := ParseBody(src, nil)
		require.NoError(t, err)
		require.Equal(t, mime.Plain, part.ContentType())

		body, err := part.Body.String()
		require.NoError(t, err)
		require.Equal(t, "The quick brown fox jumps over the lazy dog.\r\n", body)
		require.Equal(t, 1, src.Closes())
	}

	t.Run("no header block", func(t *testing.T) {
		src := dummy.NewStringSource("just a body")
		part, err := ParseBody(src, nil)
		require.NoError(t, err)
		require.True(t, part.Raw)
		require.Empty(t, part.ContentType())

		body, err := part.Body.String()
		require.NoError(t, err)
		require.Equal(t, "just a body", body)
	})
}
