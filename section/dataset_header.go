package section

import (
	"fmt"
	"io"

	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/format"
)

const maxDatasetHeaderContent = layoutFixedSize + MaxClasses*layoutClassSize + MaxSequences*layoutSequenceSize + 1

// DatasetHeader is the body of the dthd box: the index layout plus the
// default compression of block payloads.
type DatasetHeader struct {
	Layout      Layout
	Compression format.CompressionType
}

// ContentSize returns the size of the box body.
func (h *DatasetHeader) ContentSize() int {
	return h.Layout.Size() + 1
}

// BoxSize returns the size of the whole box, header included.
func (h *DatasetHeader) BoxSize() int {
	return BoxHeaderSize + h.ContentSize()
}

// Bytes serializes the complete box.
func (h *DatasetHeader) Bytes() []byte {
	buf := make([]byte, 0, h.BoxSize())
	buf = append(buf, NewBoxHeader(TypeDatasetHeader, uint64(h.ContentSize())).Bytes()...)
	buf = h.Layout.AppendBytes(buf)

	return append(buf, uint8(h.Compression))
}

// WriteTo writes the complete box to w.
func (h *DatasetHeader) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(h.Bytes())
	return int64(n), err
}

// ReadDatasetHeader reads a dthd box from r.
func ReadDatasetHeader(r io.Reader) (*DatasetHeader, error) {
	bh, err := ReadBoxHeader(r, TypeDatasetHeader)
	if err != nil {
		return nil, err
	}

	if bh.ContentSize() > maxDatasetHeaderContent {
		return nil, fmt.Errorf("%w: dataset header declares %d bytes", errs.ErrInvalidBoxSize, bh.ContentSize())
	}

	body := make([]byte, bh.ContentSize())
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("%w: dataset header body: %w", errs.ErrShortRead, err)
	}

	layout, n, err := ParseLayout(body)
	if err != nil {
		return nil, err
	}
	if n+1 != len(body) {
		return nil, fmt.Errorf("%w: dataset header body is %d bytes, layout uses %d", errs.ErrInvalidBoxSize, len(body), n+1)
	}

	h := &DatasetHeader{Layout: layout, Compression: format.CompressionType(body[n])}
	if !h.Compression.IsValid() {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidCompression, body[n])
	}

	return h, nil
}
