package wav

// Allocator controls how a File obtains the scratch buffer used for
// sample transcoding. Install one with WithAllocator when opening the
// handle; changing it while the handle is in use is not supported.
type Allocator interface {
	Alloc(size int) []byte
	Realloc(buf []byte, size int) []byte
	Free(buf []byte)
}

// heapAllocator is the default Allocator backed by the Go heap.
type heapAllocator struct{}

func (heapAllocator) Alloc(size int) []byte {
	return make([]byte, size)
}

func (heapAllocator) Realloc(buf []byte, size int) []byte {
	if cap(buf) >= size {
		return buf[:size]
	}

	out := make([]byte, size)
	copy(out, buf)

	return out
}

func (heapAllocator) Free([]byte) {}
