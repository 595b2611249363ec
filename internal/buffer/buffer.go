package buffer

// Buffer is a growable byte slice with a hard upper size limit. It's used to accumulate
// data streamingly until some delimiter is met, while guarding against unbounded growth.
type Buffer struct {
	memory  []byte
	maxSize int
}

func New(initialSize, maxSize int) *Buffer {
	return &Buffer{
		memory:  make([]byte, 0, initialSize),
		maxSize: maxSize,
	}
}

// Append writes data, checking whether the new amount of elements (bytes) doesn't exceed the
// limit, otherwise discarding the data and returning false.
func (b *Buffer) Append(elements []byte) (ok bool) {
	if len(b.memory)+len(elements) > b.maxSize {
		return false
	}

	b.memory = append(b.memory, elements...)
	return true
}

// Len returns the number of currently stored bytes.
func (b *Buffer) Len() int {
	return len(b.memory)
}

// Cap returns the hard limit.
func (b *Buffer) Cap() int {
	return b.maxSize
}

// Preview returns stored data. The returned slice is valid until the next Clear.
func (b *Buffer) Preview() []byte {
	return b.memory
}

// Clear just resets the pointers, so old values may be overridden by new ones.
func (b *Buffer) Clear() {
	b.memory = b.memory[:0]
}
