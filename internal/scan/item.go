package scan

// Chunk is a view over a byte range. Borrowed chunks (Owned == false) alias a buffer which
// is going to be reused, so they are valid only until the next pull from the stream they
// came from. Owned chunks may be retained indefinitely.
type Chunk struct {
	Data  []byte
	Owned bool
}

// Retain returns the chunk's data in a form safe to keep past the next pull.
func (c Chunk) Retain() []byte {
	if c.Owned {
		return c.Data
	}

	return append([]byte(nil), c.Data...)
}

// Item is an element of the scanned sequence: either a non-empty data chunk or a boundary
// event, which carries no data at all.
type Item struct {
	Chunk
	Boundary bool
}

func Data(data []byte, owned bool) Item {
	return Item{Chunk: Chunk{Data: data, Owned: owned}}
}

func Boundary() Item {
	return Item{Boundary: true}
}

// Stream is a pull-based sequence of items. Next returns io.EOF once the sequence is
// exhausted; this and any other error is sticky. Close releases the upstream and is safe
// to be called multiple times.
type Stream interface {
	Next() (Item, error)
	Close() error
}

// ChunkStream is a pull-based sequence of data chunks, bounded by a single part. Next returns
// io.EOF once the part is over. Errors are sticky.
type ChunkStream interface {
	Next() (Chunk, error)
}
