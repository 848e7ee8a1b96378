package bitstream

import (
	"fmt"
	"io"

	"github.com/arloliu/mgindex/errs"
)

// writerSpillSize is the number of buffered bytes after which a Writer hands its
// buffer to the underlying stream without waiting for Flush.
const writerSpillSize = 16 * 1024

// Writer packs bit fields MSB-first into an io.Writer.
//
// Errors are sticky: after the first failure every write is a no-op and Err,
// Flush and Close report the original error.
type Writer struct {
	w       io.Writer
	buf     []byte // completed bytes waiting to be written
	bitBuf  uint64 // pending bits, right-aligned
	bitCnt  int    // number of valid bits in bitBuf, always < 8 between calls
	written uint64 // bits accepted so far, including alignment padding
	err     error
	closed  bool
}

// NewWriter creates a Writer on top of w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, buf: make([]byte, 0, 256)}
}

// WithWriter runs fn with a fresh Writer over w and flushes it exactly once
// afterwards, whether fn succeeds or not. The error from fn takes precedence
// over the flush error.
func WithWriter(w io.Writer, fn func(bw *Writer) error) error {
	bw := NewWriter(w)
	fnErr := fn(bw)
	closeErr := bw.Close()
	if fnErr != nil {
		return fnErr
	}

	return closeErr
}

// Err returns the first error encountered by the Writer.
func (w *Writer) Err() error {
	return w.err
}

// BitsWritten returns the number of bits accepted so far, including the zero
// bits added by AlignToByte.
func (w *Writer) BitsWritten() uint64 {
	return w.written
}

// IsAligned reports whether the next bit starts a new byte.
func (w *Writer) IsAligned() bool {
	return w.bitCnt == 0
}

// WriteBit appends one bit; any non-zero value writes a 1.
func (w *Writer) WriteBit(bit uint8) error {
	if bit != 0 {
		return w.WriteBits(1, 1)
	}

	return w.WriteBits(1, 0)
}

// WriteBool appends one bit holding b.
func (w *Writer) WriteBool(b bool) error {
	if b {
		return w.WriteBits(1, 1)
	}

	return w.WriteBits(1, 0)
}

// WriteBits appends the n least significant bits of value, most significant first.
// Bits of value above n are ignored. Writing 0 bits is a no-op.
func (w *Writer) WriteBits(n int, value uint64) error {
	if w.err != nil {
		return w.err
	}
	if w.closed {
		w.err = errs.ErrWriterClosed
		return w.err
	}
	if n < 0 || n > 64 {
		w.err = fmt.Errorf("%w: %d", errs.ErrInvalidBitCount, n)
		return w.err
	}
	if n == 0 {
		return nil
	}

	value &= lowMask(n)
	w.written += uint64(n)

	// bitBuf never holds more than 7 bits here, so chunks of 56 bits always fit.
	remaining := n
	for remaining > 0 {
		take := min(remaining, 56)
		chunk := (value >> (remaining - take)) & lowMask(take)
		w.bitBuf = w.bitBuf<<take | chunk
		w.bitCnt += take
		remaining -= take

		for w.bitCnt >= 8 {
			w.bitCnt -= 8
			w.buf = append(w.buf, byte(w.bitBuf>>w.bitCnt))
		}
		w.bitBuf &= lowMask(w.bitCnt)
	}

	if len(w.buf) >= writerSpillSize {
		return w.spill()
	}

	return nil
}

// WriteUint16 writes the n low bits of v as a big-endian field; n must not exceed 16.
func (w *Writer) WriteUint16(n int, v uint16) error {
	if n > 16 {
		return w.fail(fmt.Errorf("%w: %d bits for uint16", errs.ErrInvalidBitCount, n))
	}

	return w.WriteBits(n, uint64(v))
}

// WriteUint32 writes the n low bits of v as a big-endian field; n must not exceed 32.
func (w *Writer) WriteUint32(n int, v uint32) error {
	if n > 32 {
		return w.fail(fmt.Errorf("%w: %d bits for uint32", errs.ErrInvalidBitCount, n))
	}

	return w.WriteBits(n, uint64(v))
}

// WriteUint64 writes the n low bits of v as a big-endian field.
func (w *Writer) WriteUint64(n int, v uint64) error {
	return w.WriteBits(n, v)
}

// WriteBytes appends p, 8 bits per byte. The bytes need not start on a byte boundary.
func (w *Writer) WriteBytes(p []byte) error {
	if w.bitCnt == 0 && w.err == nil && !w.closed {
		w.buf = append(w.buf, p...)
		w.written += uint64(len(p)) * 8
		if len(w.buf) >= writerSpillSize {
			return w.spill()
		}

		return nil
	}

	for _, b := range p {
		if err := w.WriteBits(8, uint64(b)); err != nil {
			return err
		}
	}

	return w.err
}

// AlignToByte pads the current partial byte with zero bits.
func (w *Writer) AlignToByte() error {
	if w.bitCnt == 0 {
		return w.err
	}

	return w.WriteBits(8-w.bitCnt, 0)
}

// Flush pads the current partial byte with zeros and writes every buffered byte
// to the underlying stream. The Writer remains usable.
func (w *Writer) Flush() error {
	if err := w.AlignToByte(); err != nil {
		return err
	}

	return w.spill()
}

// Close flushes the Writer and rejects further writes.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	err := w.Flush()
	w.closed = true

	return err
}

func (w *Writer) spill() error {
	if w.err != nil {
		return w.err
	}
	if len(w.buf) == 0 {
		return nil
	}
	if _, err := w.w.Write(w.buf); err != nil {
		w.err = fmt.Errorf("bitstream write: %w", err)
		return w.err
	}
	w.buf = w.buf[:0]

	return nil
}

func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = err
	}

	return w.err
}
