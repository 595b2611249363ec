package main

import (
	"fmt"
	"io"
	"log"

	"github.com/indigo-web/mpfetch"
)

func dump(r *mpfetch.Reader, w io.Writer, summary bool) error {
	var count int

	for part, err := range r.Parts() {
		if err != nil {
			return err
		}

		count++
		if part.Raw {
			log.Printf("WARNING: part #%d has no recognizable header block, dumping it as is", count)
		}

		fmt.Fprintf(w, "--- part #%d\n", count)
		for key, value := range part.Headers.Pairs() {
			fmt.Fprintf(w, "%s: %s\n", key, value)
		}

		fmt.Fprintln(w)

		if summary {
			var size int
			err = part.Body.Callback(func(data []byte) error {
				size += len(data)
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "(%d bytes)\n", size)
			continue
		}

		if _, err = io.Copy(w, part.Body); err != nil {
			return err
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "--- %d parts (multipart/%s)\n", count, r.Subtype())
	return nil
}
