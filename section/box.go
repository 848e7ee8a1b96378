package section

import (
	"fmt"
	"io"

	"github.com/arloliu/mgindex/endian"
	"github.com/arloliu/mgindex/errs"
)

// BoxType is the four character code identifying a box.
type BoxType [4]byte

func (t BoxType) String() string {
	return string(t[:])
}

// BoxHeader precedes every box. Size counts the header itself.
type BoxHeader struct {
	Type BoxType
	Size uint64
}

// NewBoxHeader creates a header for a box whose body is contentSize bytes long.
func NewBoxHeader(t BoxType, contentSize uint64) BoxHeader {
	return BoxHeader{Type: t, Size: contentSize + BoxHeaderSize}
}

// ContentSize returns the size of the box body.
func (h BoxHeader) ContentSize() uint64 {
	return h.Size - BoxHeaderSize
}

// Bytes serializes the header.
func (h BoxHeader) Bytes() []byte {
	buf := make([]byte, 0, BoxHeaderSize)
	buf = append(buf, h.Type[:]...)

	return endian.GetBigEndianEngine().AppendUint64(buf, h.Size)
}

// WriteTo writes the serialized header to w.
func (h BoxHeader) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(h.Bytes())
	return int64(n), err
}

// ParseBoxHeader decodes a header from the first BoxHeaderSize bytes of data.
func ParseBoxHeader(data []byte) (BoxHeader, error) {
	if len(data) < BoxHeaderSize {
		return BoxHeader{}, fmt.Errorf("%w: %d bytes", errs.ErrInvalidBoxSize, len(data))
	}

	var h BoxHeader
	copy(h.Type[:], data[:4])
	h.Size = endian.GetBigEndianEngine().Uint64(data[4:BoxHeaderSize])
	if h.Size < BoxHeaderSize {
		return BoxHeader{}, fmt.Errorf("%w: box %s declares %d bytes", errs.ErrInvalidBoxSize, h.Type, h.Size)
	}

	return h, nil
}

// ReadBoxHeader reads and decodes a header from r and checks its type.
func ReadBoxHeader(r io.Reader, want BoxType) (BoxHeader, error) {
	var buf [BoxHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return BoxHeader{}, fmt.Errorf("%w: box header: %w", errs.ErrShortRead, err)
	}

	h, err := ParseBoxHeader(buf[:])
	if err != nil {
		return BoxHeader{}, err
	}
	if h.Type != want {
		return BoxHeader{}, fmt.Errorf("%w: got %q, want %q", errs.ErrInvalidBoxType, h.Type, want)
	}

	return h, nil
}
