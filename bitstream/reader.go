package bitstream

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/mgindex/errs"
)

// Reader extracts MSB-first bit fields from an io.Reader.
type Reader struct {
	r    io.ByteReader
	cur  byte   // byte currently being consumed
	left int    // unread bits remaining in cur, in [0, 8]
	read uint64 // bits consumed so far
	err  error
}

// NewReader creates a Reader over r. Readers that do not implement
// io.ByteReader are wrapped in a bufio.Reader, so the Reader may consume bytes
// beyond the last field it returns.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}

	return &Reader{r: br}
}

// NewBytesReader creates a Reader over an in-memory buffer.
func NewBytesReader(data []byte) *Reader {
	return &Reader{r: &sliceReader{data: data}}
}

// Err returns the first error encountered by the Reader.
func (r *Reader) Err() error {
	return r.err
}

// BitsRead returns the number of bits consumed so far, including bits skipped by AlignToByte.
func (r *Reader) BitsRead() uint64 {
	return r.read
}

// IsAligned reports whether the next bit starts a new byte.
func (r *Reader) IsAligned() bool {
	return r.left == 0
}

// ReadBit reads a single bit.
func (r *Reader) ReadBit() (uint8, error) {
	v, err := r.ReadBits(1)
	return uint8(v), err
}

// ReadBool reads a single bit as a boolean.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadBits(1)
	return v == 1, err
}

// ReadBits reads an n-bit field and returns it right-aligned. Reading 0 bits
// returns 0 without touching the stream.
func (r *Reader) ReadBits(n int) (uint64, error) {
	if r.err != nil {
		return 0, r.err
	}
	if n < 0 || n > 64 {
		r.err = fmt.Errorf("%w: %d", errs.ErrInvalidBitCount, n)
		return 0, r.err
	}

	var value uint64
	remaining := n
	for remaining > 0 {
		if r.left == 0 {
			if err := r.fillByte(); err != nil {
				return 0, err
			}
		}
		take := min(remaining, r.left)
		shift := r.left - take
		bits := (uint64(r.cur) >> shift) & lowMask(take)
		value = value<<take | bits
		r.left -= take
		remaining -= take
	}
	r.read += uint64(n)

	return value, nil
}

// ReadBitsRaw reads an n-bit field and returns it left-justified in 64 bits,
// the way the bits sit in the stream.
func (r *Reader) ReadBitsRaw(n int) (uint64, error) {
	v, err := r.ReadBits(n)
	if err != nil || n == 0 {
		return 0, err
	}

	return v << (64 - n), nil
}

// ReadUint16 reads an n-bit big-endian field, n ≤ 16.
func (r *Reader) ReadUint16(n int) (uint16, error) {
	if n > 16 {
		return 0, r.fail(fmt.Errorf("%w: %d bits for uint16", errs.ErrInvalidBitCount, n))
	}
	v, err := r.ReadBits(n)

	return uint16(v), err
}

// ReadUint32 reads an n-bit big-endian field, n ≤ 32.
func (r *Reader) ReadUint32(n int) (uint32, error) {
	if n > 32 {
		return 0, r.fail(fmt.Errorf("%w: %d bits for uint32", errs.ErrInvalidBitCount, n))
	}
	v, err := r.ReadBits(n)

	return uint32(v), err
}

// ReadUint64 reads an n-bit big-endian field.
func (r *Reader) ReadUint64(n int) (uint64, error) {
	return r.ReadBits(n)
}

// ReadBytes reads n bytes, 8 bits each, from the current bit position.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		v, err := r.ReadBits(8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}

	return out, nil
}

// AlignToByte discards the unread bits of the current byte.
func (r *Reader) AlignToByte() error {
	if r.err != nil {
		return r.err
	}
	r.read += uint64(r.left)
	r.left = 0

	return nil
}

func (r *Reader) fillByte() error {
	b, err := r.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		r.err = fmt.Errorf("%w: %w", errs.ErrShortRead, err)

		return r.err
	}
	r.cur = b
	r.left = 8

	return nil
}

func (r *Reader) fail(err error) error {
	if r.err == nil {
		r.err = err
	}

	return r.err
}

type sliceReader struct {
	data []byte
	pos  int
}

func (s *sliceReader) ReadByte() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	b := s.data[s.pos]
	s.pos++

	return b, nil
}
