package config

import (
	"time"
)

type (
	HeadersNumber struct {
		Default int `yaml:"default"`
	}

	HeadersSpace struct {
		Default int `yaml:"default"`
		Maximal int `yaml:"maximal"`
	}

	NETReadBufferSize struct {
		Default int `yaml:"default"`
	}
)

type (
	Headers struct {
		// Number is responsible for the number of header pairs pre-allocated for every part.
		Number HeadersNumber `yaml:"number"`
		// Space limits the amount of memory occupied by a single part's header block. The
		// default value is the initial buffer capacity, maximal is the hard limit. Once
		// the limit is reached, the part is considered headerless and everything accumulated
		// so far is handed over to the body as is.
		Space HeadersSpace `yaml:"space"`
	}

	Body struct {
		// BufferPrealloc is the initial capacity of a buffer storing a whole part body when
		// it's requested at once (e.g. via Body.Bytes()).
		BufferPrealloc int `yaml:"buffer_prealloc"`
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// the underlying reader or connection.
		ReadBufferSize NETReadBufferSize `yaml:"read_buffer_size"`
		// ReadTimeout limits how long a single read from a connection may block. Zero
		// disables deadlines.
		ReadTimeout time.Duration `yaml:"read_timeout"`
	}
)

// Config holds settings used across the decoder, mainly limitations and pre-allocations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	Headers Headers `yaml:"headers"`
	Body    Body    `yaml:"body"`
	NET     NET     `yaml:"net"`
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Headers: Headers{
			Number: HeadersNumber{
				Default: 8,
			},
			Space: HeadersSpace{
				Default: 1 * 1024,
				// part headers are rarely big, however some mail parts carry long
				// folded values.
				Maximal: 1024 * 1024,
			},
		},
		Body: Body{
			BufferPrealloc: 1024,
		},
		NET: NET{
			ReadBufferSize: NETReadBufferSize{
				Default: 4 * 1024,
			},
			ReadTimeout: 90 * time.Second,
		},
	}
}
