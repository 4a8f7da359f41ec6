package component

import (
	"bytes"
	"io"
	"sync"
)

// readerPool pools bytes.Reader instances across the many short-lived
// section/type decodes a single Decode call makes (one per section, plus
// one per recursive type/canon/alias entry), to keep that traffic from
// allocating a fresh *bytes.Reader per call.
var readerPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Reader{}
	},
}

// getReader gets a pooled reader initialized with data
func getReader(data []byte) *bytes.Reader {
	r := readerPool.Get().(*bytes.Reader)
	r.Reset(data)
	return r
}

// putReader returns a reader to the pool. It first rewinds the reader over
// a nil slice so the pool doesn't pin the section's backing array in memory
// between decodes — section bodies can be large (nested components, core
// modules) and callers may hold CopyBorrowedBytes=false views into them.
func putReader(r *bytes.Reader) {
	r.Reset(nil)
	readerPool.Put(r)
}

// readByte reads a single byte efficiently without allocation
func readByte(r io.Reader) (byte, error) {
	if br, ok := r.(io.ByteReader); ok {
		return br.ReadByte()
	}
	// Fallback for readers that don't implement ByteReader
	var b [1]byte
	_, err := r.Read(b[:])
	return b[0], err
}
