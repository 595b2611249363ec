package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/indigo-web/mpfetch"
	"github.com/indigo-web/mpfetch/config"
	"github.com/indigo-web/mpfetch/transport"
	"github.com/spf13/cobra"
)

type options struct {
	ContentType string
	ConfigPath  string
	Encoding    string
	Chunked     bool
	Summary     bool
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "mpdump [file | url | -]",
		Short: "Decode a multipart message and dump its parts",
		Long: "Decodes a multipart message read from a file, the standard input or an HTTP(S) URL\n" +
			"and prints headers and bodies of every part.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) > 0 {
				input = args[0]
			}

			return run(cmd, input, opts)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.ContentType, "content-type", "t", "",
		"Content-Type of the message, required unless fetched from a URL")
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	flags.StringVarP(&opts.Encoding, "encoding", "e", "", "Content-Encoding the message is compressed with")
	flags.BoolVar(&opts.Chunked, "chunked", false, "the message is in the chunked transfer encoding")
	flags.BoolVarP(&opts.Summary, "summary", "s", false, "print body sizes instead of bodies")

	return cmd
}

func run(cmd *cobra.Command, input string, opts options) error {
	cfg := config.Default()
	if len(opts.ConfigPath) > 0 {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return err
		}
	}

	reader, err := open(cmd, input, opts, cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = reader.Close()
	}()

	return dump(reader, cmd.OutOrStdout(), opts.Summary)
}

func open(cmd *cobra.Command, input string, opts options, cfg *config.Config) (*mpfetch.Reader, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return fetch(input, opts, cfg)
	}

	if len(opts.ContentType) == 0 {
		return nil, errors.New("--content-type is required when reading a file")
	}

	// the standard input mustn't be closed along with the message
	var r io.Reader = io.NopCloser(cmd.InOrStdin())
	if input != "-" {
		file, err := os.Open(input)
		if err != nil {
			return nil, err
		}

		r = file
	}

	bufferSize := cfg.NET.ReadBufferSize.Default
	src := transport.NewReader(r, make([]byte, bufferSize))
	if opts.Chunked {
		src = transport.Chunked(src, false)
	}

	decoded, err := transport.Decode(src, opts.Encoding, bufferSize)
	if err != nil {
		_ = src.Close()
		return nil, err
	}

	reader, err := mpfetch.New(decoded, opts.ContentType, cfg)
	if err != nil {
		_ = src.Close()
		return nil, err
	}

	return reader, nil
}

func fetch(url string, opts options, cfg *config.Config) (*mpfetch.Reader, error) {
	resp, err := newHTTPClient(cfg.NET.ReadTimeout).Get(url)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected response status: %s", resp.Status)
	}

	if len(opts.ContentType) > 0 {
		resp.Header.Set("Content-Type", opts.ContentType)
	}

	reader, err := mpfetch.FromResponse(resp, cfg)
	if err != nil {
		_ = resp.Body.Close()
		return nil, err
	}

	return reader, nil
}

// newHTTPClient limits every single read rather than the whole request, so long streamed
// messages aren't cut off as long as the data keeps coming.
func newHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = timeout
	tr.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		return transport.WithReadTimeout(conn, timeout), nil
	}

	return &http.Client{Transport: tr}
}
