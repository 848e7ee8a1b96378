package index

import (
	"fmt"
	"io"

	"github.com/arloliu/mgindex/bitstream"
	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/section"
)

const refIDBits = 16

// alignedRecordBits returns the size of one aligned record of class ci.
func alignedRecordBits(l *section.Layout, ci int) uint64 {
	ob, pb := uint64(l.OffsetBits()), uint64(l.PosBits())

	bits := ob + 2*pb
	if l.IsReference() {
		bits += refIDBits + 2*pb
	}
	if l.MultipleAlignment {
		bits += 2 * pb
	}
	if !l.BlockHeader {
		bits += uint64(l.NumDescriptors(ci)) * ob
	}

	return bits
}

// unalignedRecordBits returns the size of one unaligned record without its signature set.
func unalignedRecordBits(l *section.Layout) uint64 {
	ob, pb := uint64(l.OffsetBits()), uint64(l.PosBits())

	bits := ob
	if l.IsReference() {
		bits += refIDBits + 2*pb
	}
	if l.BlockHeader {
		bits += ob
	} else {
		bits += uint64(l.NumUnmappedDescriptors()) * ob
	}

	return bits
}

func (t *Table) alignedBits() uint64 {
	var bits uint64
	for si := range t.geo.blocks {
		for _, ci := range t.geo.classes {
			bits += uint64(t.geo.blocks[si]) * alignedRecordBits(&t.layout, ci)
		}
	}

	return bits
}

func (t *Table) unalignedBits() (uint64, error) {
	bits := uint64(t.geo.numUnaligned) * unalignedRecordBits(&t.layout)
	for uau, coll := range t.signatures {
		n, err := t.codec.SizeBits(coll)
		if err != nil {
			return 0, fmt.Errorf("signatures of unaligned AU %d: %w", uau, err)
		}
		bits += n
	}

	return bits, nil
}

// SizeContent returns the exact number of bytes WriteContent produces. It
// fails when a signature set cannot be encoded.
func (t *Table) SizeContent() (uint64, error) {
	ub, err := t.unalignedBits()
	if err != nil {
		return 0, err
	}

	return bytesFor(t.alignedBits()) + bytesFor(ub), nil
}

// Size returns the size of the whole box, header included.
func (t *Table) Size() (uint64, error) {
	n, err := t.SizeContent()
	if err != nil {
		return 0, err
	}

	return n + section.BoxHeaderSize, nil
}

func bytesFor(bits uint64) uint64 {
	return (bits + 7) / 8
}

// Write writes the box header followed by the table body and returns the number of bytes written.
func (t *Table) Write(w io.Writer) (int64, error) {
	content, err := t.SizeContent()
	if err != nil {
		return 0, err
	}
	if err := t.validateValues(); err != nil {
		return 0, err
	}

	n, err := section.NewBoxHeader(section.TypeDatasetMasterIndexTable, content).WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("write dmit box header: %w", err)
	}

	cw := &countingWriter{w: w}
	err = t.writeBody(cw)

	return n + cw.n, err
}

// WriteContent writes the table body without a box header. Field widths and
// signature sets are validated before anything is written.
func (t *Table) WriteContent(w io.Writer) error {
	if _, err := t.unalignedBits(); err != nil {
		return err
	}
	if err := t.validateValues(); err != nil {
		return err
	}

	return t.writeBody(w)
}

func (t *Table) writeBody(w io.Writer) error {
	return bitstream.WithWriter(w, func(bw *bitstream.Writer) error {
		if err := t.writeAligned(bw); err != nil {
			return err
		}
		if err := bw.AlignToByte(); err != nil {
			return err
		}

		return t.writeUnaligned(bw)
	})
}

func (t *Table) writeAligned(bw *bitstream.Writer) error {
	ob, pb := t.layout.OffsetBits(), t.layout.PosBits()

	for si := range t.geo.blocks {
		for _, ci := range t.geo.classes {
			numDesc := t.layout.NumDescriptors(ci)
			for au := range t.geo.blocks[si] {
				e := t.entry(si, ci, au)

				bw.WriteBits(ob, e.AUByteOffset)
				bw.WriteBits(pb, e.StartPosition)
				bw.WriteBits(pb, e.EndPosition)
				if t.layout.IsReference() {
					bw.WriteBits(refIDBits, uint64(e.RefSequenceID))
					bw.WriteBits(pb, e.RefStartPosition)
					bw.WriteBits(pb, e.RefEndPosition)
				}
				if t.layout.MultipleAlignment {
					bw.WriteBits(pb, e.ExtendedStartPosition)
					bw.WriteBits(pb, e.ExtendedEndPosition)
				}
				if !t.layout.BlockHeader {
					for d := range numDesc {
						i, _ := t.geo.offsetIndex(si, ci, au, d, numDesc)
						bw.WriteBits(ob, t.offsets[i])
					}
				}
			}
			if err := bw.Err(); err != nil {
				return err
			}
		}
	}

	return bw.Err()
}

func (t *Table) writeUnaligned(bw *bitstream.Writer) error {
	ob, pb := t.layout.OffsetBits(), t.layout.PosBits()

	for uau := range t.unaligned {
		e := &t.unaligned[uau]

		bw.WriteBits(ob, e.AUByteOffset)
		if t.layout.IsReference() {
			bw.WriteBits(refIDBits, uint64(e.RefSequenceID))
			bw.WriteBits(pb, e.RefStartPosition)
			bw.WriteBits(pb, e.RefEndPosition)
		}
		if err := t.codec.Encode(bw, t.signatures[uau]); err != nil {
			return fmt.Errorf("signatures of unaligned AU %d: %w", uau, err)
		}
		if t.layout.BlockHeader {
			bw.WriteBits(ob, e.BlockByteOffset)
		} else {
			for d := range t.geo.numUnmapped {
				i, _ := t.geo.unalignedOffsetIndex(uau, d)
				bw.WriteBits(ob, t.unalignedOffsets[i])
			}
		}
		if err := bw.Err(); err != nil {
			return err
		}
	}

	return bw.Err()
}

// validateValues checks that every stored value fits its field width.
func (t *Table) validateValues() error {
	ob, pb := t.layout.OffsetBits(), t.layout.PosBits()

	check := func(v uint64, bits int, what string, at int) error {
		if bits < 64 && v>>bits != 0 {
			return fmt.Errorf("%w: %s %d of entry %d needs more than %d bits", errs.ErrValueOverflow, what, v, at, bits)
		}

		return nil
	}

	for i := range t.entries {
		e := &t.entries[i]
		fields := []struct {
			v    uint64
			bits int
			what string
		}{
			{e.AUByteOffset, ob, "AU byte offset"},
			{e.StartPosition, pb, "start position"},
			{e.EndPosition, pb, "end position"},
			{e.ExtendedStartPosition, pb, "extended start position"},
			{e.ExtendedEndPosition, pb, "extended end position"},
			{e.RefStartPosition, pb, "reference start position"},
			{e.RefEndPosition, pb, "reference end position"},
		}
		for _, f := range fields {
			if err := check(f.v, f.bits, f.what, i); err != nil {
				return err
			}
		}
	}
	for i, v := range t.offsets {
		if err := check(v, ob, "block offset", i); err != nil {
			return err
		}
	}

	for i := range t.unaligned {
		e := &t.unaligned[i]
		for _, f := range []struct {
			v    uint64
			bits int
			what string
		}{
			{e.AUByteOffset, ob, "unaligned AU byte offset"},
			{e.BlockByteOffset, ob, "unaligned block offset"},
			{e.RefStartPosition, pb, "unaligned reference start position"},
			{e.RefEndPosition, pb, "unaligned reference end position"},
		} {
			if err := check(f.v, f.bits, f.what, i); err != nil {
				return err
			}
		}
	}
	for i, v := range t.unalignedOffsets {
		if err := check(v, ob, "unaligned block offset", i); err != nil {
			return err
		}
	}

	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}
