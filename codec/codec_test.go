package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/indigo-web/mpfetch/transport/dummy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

func gzipped(text string) []byte {
	buff := bytes.NewBuffer(nil)
	c := gzip.NewWriter(buff)
	if _, err := c.Write([]byte(text)); err != nil {
		panic("unexpected error during gzipping")
	}

	if c.Close() != nil {
		panic("unexpected error during closing gzip writer")
	}

	return buff.Bytes()
}

func zstded(text string) []byte {
	c, err := zstd.NewWriter(nil)
	if err != nil {
		panic(err)
	}

	return c.EncodeAll([]byte(text), nil)
}

func deflated(text string) []byte {
	buff := bytes.NewBuffer(nil)
	c, err := flate.NewWriter(buff, 5)
	if err != nil {
		panic(err)
	}

	if _, err = c.Write([]byte(text)); err != nil {
		panic(err)
	}

	if c.Close() != nil {
		panic("unexpected error during closing flate writer")
	}

	return buff.Bytes()
}

func decode(c Codec, data ...[]byte) (string, error) {
	dc := c.New()
	if err := dc.Reset(dummy.NewSource(data...), 64); err != nil {
		return "", err
	}

	return fetchAll(dc)
}

func fetchAll(source Fetcher) (string, error) {
	builder := strings.Builder{}

	for {
		data, err := source.Fetch()
		builder.Write(data)
		switch err {
		case nil:
		case io.EOF:
			return builder.String(), nil
		default:
			return "", err
		}
	}
}

func scatter(b []byte, step int) (pieces [][]byte) {
	for i := 0; i < len(b); i += step {
		pieces = append(pieces, b[i:min(i+step, len(b))])
	}

	return pieces
}

func TestCodecs(t *testing.T) {
	text := strings.Repeat("Hello, world! Lorem ipsum! ", 100)

	for _, tc := range []struct {
		Codec  Codec
		Encode func(string) []byte
	}{
		{NewGZIP(), gzipped},
		{NewZSTD(), zstded},
		{NewDeflate(), deflated},
	} {
		t.Run(tc.Codec.Token(), func(t *testing.T) {
			t.Run("default", func(t *testing.T) {
				result, err := decode(tc.Codec, tc.Encode("Hello, world!"))
				require.NoError(t, err)
				require.Equal(t, "Hello, world!", result)
			})

			t.Run("scattered", func(t *testing.T) {
				result, err := decode(tc.Codec, scatter(tc.Encode(text), 2)...)
				require.NoError(t, err)
				require.Equal(t, text, result)
			})

			t.Run("reuse", func(t *testing.T) {
				dc := tc.Codec.New()
				for _, str := range []string{"first", "second"} {
					require.NoError(t, dc.Reset(dummy.NewSource(tc.Encode(str)), 16))
					result, err := fetchAll(dc)
					require.NoError(t, err)
					require.Equal(t, str, result)
				}
			})
		})
	}

	t.Run("corrupted gzip", func(t *testing.T) {
		_, err := decode(NewGZIP(), []byte("definitely not gzip"))
		require.Error(t, err)
	})
}

func TestLookup(t *testing.T) {
	for _, token := range []string{"gzip", "GZIP", "x-gzip", "zstd", "deflate"} {
		_, found := Lookup(token)
		require.True(t, found, token)
	}

	_, found := Lookup("br")
	require.False(t, found)
}
