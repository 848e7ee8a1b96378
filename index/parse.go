package index

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/mgindex/bitstream"
	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/section"
)

// maxBodySize caps the byte budget minBodySize compares against so its
// running total stays far from overflow.
const maxBodySize = 1 << 59

// Parse reads a complete dmit box from r and rebuilds the table, including its
// offset trees, through the same mutators producers use. Any short read
// aborts the whole parse. The box must be consumed exactly.
//
// The declared content size is checked against the smallest body the layout
// can encode to before anything is allocated, and that minimum is read before
// the table is built, so memory use follows the input actually received.
func Parse(r io.Reader, layout section.Layout, opts ...Option) (*Table, *AUOffsets, error) {
	bh, err := section.ReadBoxHeader(r, section.TypeDatasetMasterIndexTable)
	if err != nil {
		return nil, nil, err
	}
	if err := layout.Validate(); err != nil {
		return nil, nil, err
	}

	content := bh.ContentSize()
	need := minBodySize(&layout, min(content, maxBodySize))
	if need > content {
		return nil, nil, fmt.Errorf("%w: dmit box declares %d content bytes, layout needs at least %d",
			errs.ErrInvalidBoxSize, content, need)
	}

	br, err := prefetch(io.LimitReader(r, int64(min(content, math.MaxInt64))), need)
	if err != nil {
		return nil, nil, err
	}
	t, offs, err := parseBody(br, layout, opts)
	if err != nil {
		return nil, nil, err
	}
	if consumed := br.BitsRead() / 8; consumed != content {
		return nil, nil, fmt.Errorf("%w: dmit box declares %d content bytes, table uses %d", errs.ErrInvalidBoxSize, content, consumed)
	}

	return t, offs, nil
}

// ParseContent reads a table body without a box header.
func ParseContent(r io.Reader, layout section.Layout, opts ...Option) (*Table, *AUOffsets, error) {
	if err := layout.Validate(); err != nil {
		return nil, nil, err
	}

	br, err := prefetch(r, minBodySize(&layout, maxBodySize))
	if err != nil {
		return nil, nil, err
	}

	return parseBody(br, layout, opts)
}

// minBodySize returns the smallest body, in bytes, a table with layout encodes
// to: every record at its fixed width and every signature set in its shortest
// form. The walk stops early once the total passes limit.
func minBodySize(l *section.Layout, limit uint64) uint64 {
	var aligned uint64
	for si := range l.Sequences {
		blocks := uint64(l.NumBlocks(si))
		for ci := range l.Classes {
			if !l.IndexesClass(ci) {
				continue
			}
			aligned += blocks * alignedRecordBits(l, ci)
			if bytesFor(aligned) > limit {
				return bytesFor(aligned)
			}
		}
	}

	unaligned := uint64(l.NumUnalignedAUs) * (unalignedRecordBits(l) + l.Signature.MinSetBits())

	return bytesFor(aligned) + bytesFor(unaligned)
}

// prefetch reads the first n bytes of r, letting the buffer grow only with
// data actually received, and returns a reader that replays them before the
// rest of r.
func prefetch(r io.Reader, n uint64) (*bitstream.Reader, error) {
	var buf bytes.Buffer
	got, err := io.CopyN(&buf, r, int64(n))
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return nil, fmt.Errorf("%w: table needs at least %d bytes, got %d: %w", errs.ErrShortRead, n, got, err)
	}

	return bitstream.NewReader(io.MultiReader(&buf, r)), nil
}

func parseBody(br *bitstream.Reader, layout section.Layout, opts []Option) (*Table, *AUOffsets, error) {
	t, err := New(layout, opts...)
	if err != nil {
		return nil, nil, err
	}
	offs := newAUOffsets(t.geo)

	if err := t.parseAligned(br, offs); err != nil {
		return nil, nil, fmt.Errorf("parse aligned index: %w", err)
	}
	if err := br.AlignToByte(); err != nil {
		return nil, nil, err
	}
	if err := t.parseUnaligned(br, offs); err != nil {
		return nil, nil, fmt.Errorf("parse unaligned index: %w", err)
	}
	if err := br.AlignToByte(); err != nil {
		return nil, nil, err
	}

	return t, offs, nil
}

type fieldReader struct {
	br  *bitstream.Reader
	err error
}

func (f *fieldReader) read(n int) uint64 {
	if f.err != nil {
		return 0
	}
	v, err := f.br.ReadBits(n)
	f.err = err

	return v
}

func (t *Table) parseAligned(br *bitstream.Reader, offs *AUOffsets) error {
	ob, pb := t.layout.OffsetBits(), t.layout.PosBits()
	fr := &fieldReader{br: br}

	for si := range t.geo.blocks {
		for _, ci := range t.geo.classes {
			numDesc := t.layout.NumDescriptors(ci)
			for au := range t.geo.blocks[si] {
				auOffset := fr.read(ob)
				start, end := fr.read(pb), fr.read(pb)
				var refID uint16
				var refStart, refEnd uint64
				if t.layout.IsReference() {
					refID = uint16(fr.read(refIDBits))
					refStart, refEnd = fr.read(pb), fr.read(pb)
				}
				var extStart, extEnd uint64
				if t.layout.MultipleAlignment {
					extStart, extEnd = fr.read(pb), fr.read(pb)
				}
				if fr.err != nil {
					return fr.err
				}

				t.SetAUOffset(si, ci, au, auOffset)
				t.SetStartAndEnd(si, ci, au, start, end)
				t.SetRefPosition(si, ci, au, refID, refStart, refEnd)
				t.SetExtendedStartAndEnd(si, ci, au, extStart, extEnd)
				i, _ := t.geo.entryIndex(si, ci, au)
				offs.aligned[i] = auOffset

				if !t.layout.BlockHeader {
					for d := range numDesc {
						off := fr.read(ob)
						if fr.err != nil {
							return fr.err
						}
						t.SetOffset(si, ci, au, d, off)
					}
				}
			}
		}
	}

	return nil
}

func (t *Table) parseUnaligned(br *bitstream.Reader, offs *AUOffsets) error {
	ob, pb := t.layout.OffsetBits(), t.layout.PosBits()
	fr := &fieldReader{br: br}

	for uau := range t.unaligned {
		auOffset := fr.read(ob)
		if t.layout.IsReference() {
			refID := uint16(fr.read(refIDBits))
			refStart, refEnd := fr.read(pb), fr.read(pb)
			t.SetUnalignedRefPosition(uau, refID, refStart, refEnd)
		}
		if fr.err != nil {
			return fr.err
		}
		t.SetUnalignedAUOffset(uau, auOffset)
		offs.unaligned[uau] = auOffset

		if t.layout.Signature.Enabled() {
			coll, err := t.codec.Decode(br)
			if err != nil {
				return fmt.Errorf("signatures of unaligned AU %d: %w", uau, err)
			}
			t.SetSignatures(uau, coll)
		}

		if t.layout.BlockHeader {
			off := fr.read(ob)
			if fr.err != nil {
				return fr.err
			}
			t.SetUnalignedBlockOffset(uau, off)
			continue
		}
		for d := range t.geo.numUnmapped {
			off := fr.read(ob)
			if fr.err != nil {
				return fr.err
			}
			t.SetUnalignedOffset(uau, d, off)
		}
	}

	return nil
}
