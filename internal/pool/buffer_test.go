package pool

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }

func TestBuffer_WriteAndWriteTo(t *testing.T) {
	b := &Buffer{}

	n, err := b.Write([]byte("ACGT"))
	require.NoError(t, err)
	require.Equal(t, 4, n)
	_, _ = b.Write([]byte("NN"))
	require.Equal(t, []byte("ACGTNN"), b.Bytes())
	require.Equal(t, 6, b.Len())

	var out bytes.Buffer
	written, err := b.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(6), written)
	require.Equal(t, "ACGTNN", out.String())

	_, err = b.WriteTo(failingWriter{})
	require.Error(t, err)
}

func TestBuffer_Resize(t *testing.T) {
	t.Run("Within capacity", func(t *testing.T) {
		b := &Buffer{B: make([]byte, 0, 16)}
		_, _ = b.Write([]byte{1, 2, 3})
		b.Resize(10)
		require.Equal(t, 10, b.Len())
		require.Equal(t, 16, cap(b.B))
		require.Equal(t, []byte{1, 2, 3}, b.B[:3])

		b.Resize(2)
		require.Equal(t, []byte{1, 2}, b.Bytes())
	})

	t.Run("Small buffer grows by a step", func(t *testing.T) {
		b := &Buffer{B: make([]byte, 0, 8)}
		_, _ = b.Write([]byte{9})
		b.Resize(100)
		require.Equal(t, 100, b.Len())
		require.Equal(t, 8+IndexBufferSize, cap(b.B))
		require.Equal(t, byte(9), b.B[0])
	})

	t.Run("Large buffer grows by a quarter", func(t *testing.T) {
		c := 4 * BlockBufferSize
		b := &Buffer{B: make([]byte, 0, c)}
		b.Resize(c + 1)
		require.Equal(t, c+c/4, cap(b.B))
	})

	t.Run("Request larger than the step", func(t *testing.T) {
		b := &Buffer{}
		b.Resize(3 * IndexBufferSize)
		require.Equal(t, 3*IndexBufferSize, cap(b.B))
	})
}

func TestBufferPool(t *testing.T) {
	p := NewBufferPool(32, 64)

	b := p.Get()
	require.NotNil(t, b)
	require.Zero(t, b.Len())
	require.GreaterOrEqual(t, cap(b.B), 32)

	_, _ = b.Write([]byte("data"))
	p.Put(b)

	again := p.Get()
	require.Zero(t, again.Len(), "recycled buffers come back empty")

	big := &Buffer{B: make([]byte, 0, 128)}
	require.NotPanics(t, func() { p.Put(big) })
	require.NotPanics(t, func() { p.Put(nil) })
}

func TestSharedPools(t *testing.T) {
	blk := GetBlockBuffer()
	require.GreaterOrEqual(t, cap(blk.B), BlockBufferSize)
	blk.Resize(BlockBufferRetainCap + 1)
	PutBlockBuffer(blk)

	idx := GetIndexBuffer()
	require.GreaterOrEqual(t, cap(idx.B), IndexBufferSize)
	PutIndexBuffer(idx)
}

func TestBufferPool_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for range 100 {
				b := GetBlockBuffer()
				b.Resize(i * 1000)
				PutBlockBuffer(b)
			}
		}(i)
	}
	wg.Wait()
}
