// Package pool keeps reusable byte buffers for dataset serialization and
// block reads.
package pool

import (
	"io"
	"sync"
)

// Initial and retained capacities of the shared pools.
const (
	BlockBufferSize      = 64 << 10 // one descriptor block
	BlockBufferRetainCap = 4 << 20
	IndexBufferSize      = 4 << 10 // dataset header plus master index table
	IndexBufferRetainCap = 1 << 20
)

// Buffer is a growable byte slice that implements io.Writer and io.WriterTo.
type Buffer struct {
	B []byte
}

// Bytes returns the buffered bytes.
func (b *Buffer) Bytes() []byte {
	return b.B
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return len(b.B)
}

// Resize sets the length to n, reallocating when the capacity is short. The
// contents up to the old length are preserved; the rest is unspecified.
func (b *Buffer) Resize(n int) {
	if n <= cap(b.B) {
		b.B = b.B[:n]
		return
	}

	grown := make([]byte, n, growCap(cap(b.B), n))
	copy(grown, b.B)
	b.B = grown
}

// growCap returns the capacity for a buffer of capacity c that must hold n
// bytes: small buffers grow in IndexBufferSize steps, large ones by a quarter.
func growCap(c, n int) int {
	step := IndexBufferSize
	if c > BlockBufferSize {
		step = c / 4
	}

	return max(c+step, n)
}

// Write appends p.
func (b *Buffer) Write(p []byte) (int, error) {
	b.B = append(b.B, p...)
	return len(p), nil
}

// WriteTo writes the buffered bytes to w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.B)
	return int64(n), err
}

// BufferPool recycles Buffers. Buffers that grew past retainCap are released
// to the garbage collector on Put.
type BufferPool struct {
	pool      sync.Pool
	retainCap int
}

// NewBufferPool creates a pool of Buffers starting at size bytes of capacity.
func NewBufferPool(size, retainCap int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any { return &Buffer{B: make([]byte, 0, size)} },
		},
		retainCap: retainCap,
	}
}

// Get returns an empty Buffer.
func (p *BufferPool) Get() *Buffer {
	b, _ := p.pool.Get().(*Buffer)
	return b
}

// Put recycles b. A nil b is ignored.
func (p *BufferPool) Put(b *Buffer) {
	if b == nil || (p.retainCap > 0 && cap(b.B) > p.retainCap) {
		return
	}
	b.B = b.B[:0]
	p.pool.Put(b)
}

var (
	blockPool = NewBufferPool(BlockBufferSize, BlockBufferRetainCap)
	indexPool = NewBufferPool(IndexBufferSize, IndexBufferRetainCap)
)

// GetBlockBuffer returns a buffer sized for one stored block.
func GetBlockBuffer() *Buffer { return blockPool.Get() }

// PutBlockBuffer recycles a buffer obtained from GetBlockBuffer.
func PutBlockBuffer(b *Buffer) { blockPool.Put(b) }

// GetIndexBuffer returns a buffer sized for the dataset header and master index table.
func GetIndexBuffer() *Buffer { return indexPool.Get() }

// PutIndexBuffer recycles a buffer obtained from GetIndexBuffer.
func PutIndexBuffer(b *Buffer) { indexPool.Put(b) }
