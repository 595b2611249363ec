package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/indigo-web/mpfetch/mptest"
	"github.com/stretchr/testify/require"
)

func message() *mptest.Message {
	return (&mptest.Message{Boundary: "b", Preamble: "ignored"}).
		Add("Hello, world!", "Content-Type", "text/plain", "X-Index", "1").
		Add("second")
}

const wantDump = "--- part #1\n" +
	"Content-Type: text/plain\n" +
	"X-Index: 1\n" +
	"\n" +
	"Hello, world!\n" +
	"--- part #2\n" +
	"Content-Type: text/plain\n" +
	"\n" +
	"second\n" +
	"--- 2 parts (multipart/mixed)\n"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	cmd := newRootCommand()
	out := bytes.NewBuffer(nil)
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMPDump(t *testing.T) {
	t.Run("stdin", func(t *testing.T) {
		out, err := execute(t, message().String(), "-t", "multipart/mixed; boundary=b")
		require.NoError(t, err)
		require.Equal(t, wantDump, out)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "message.txt")
		require.NoError(t, os.WriteFile(path, []byte(message().String()), 0o600))

		out, err := execute(t, "", "--content-type", "multipart/mixed; boundary=b", "--summary", path)
		require.NoError(t, err)
		require.Contains(t, out, "(13 bytes)\n")
		require.Contains(t, out, "(6 bytes)\n")
	})

	t.Run("chunked", func(t *testing.T) {
		msg := message().String()
		var b strings.Builder
		for _, piece := range mptest.Scatter(msg, 16) {
			b.WriteString(strconv.FormatInt(int64(len(piece)), 16) + "\r\n" + piece + "\r\n")
		}
		b.WriteString("0\r\n\r\n")

		out, err := execute(t, b.String(), "-t", "multipart/mixed; boundary=b", "--chunked")
		require.NoError(t, err)
		require.Equal(t, wantDump, out)
	})

	t.Run("url", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "multipart/mixed; boundary=b")
			_, _ = w.Write([]byte(message().String()))
		}))
		defer server.Close()

		out, err := execute(t, "", server.URL)
		require.NoError(t, err)
		require.Equal(t, wantDump, out)
	})

	t.Run("slow url", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "multipart/mixed; boundary=b")
			for _, piece := range mptest.Scatter(message().String(), 8) {
				_, _ = w.Write([]byte(piece))
				w.(http.Flusher).Flush()
				time.Sleep(50 * time.Millisecond)
			}
		}))
		defer server.Close()

		// the whole transfer takes longer than the timeout, every single read doesn't
		path := writeConfig(t, "net:\n  read_timeout: 300ms\n")
		out, err := execute(t, "", "-c", path, server.URL)
		require.NoError(t, err)
		require.Equal(t, wantDump, out)
	})

	t.Run("stalled url", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "multipart/mixed; boundary=b")
			_, _ = w.Write([]byte("--b\r\n"))
			w.(http.Flusher).Flush()
			time.Sleep(500 * time.Millisecond)
		}))
		defer server.Close()

		path := writeConfig(t, "net:\n  read_timeout: 50ms\n")
		_, err := execute(t, "", "-c", path, server.URL)
		require.Error(t, err)
	})

	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("headers:\n  space:\n    default: 4\n    maximal: 8\n"), 0o600))

		out, err := execute(t, message().String(), "-t", "multipart/mixed; boundary=b", "-c", path)
		require.NoError(t, err)
		// the first part's header block doesn't fit, so it's dumped as the body
		require.Contains(t, out, "X-Index: 1\r\n\r\nHello, world!\n")
	})

	t.Run("missing content type", func(t *testing.T) {
		_, err := execute(t, message().String())
		require.Error(t, err)
	})

	t.Run("invalid content type", func(t *testing.T) {
		_, err := execute(t, message().String(), "-t", "text/plain")
		require.Error(t, err)
	})
}
