package index

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/arloliu/mgindex/internal/options"
	"github.com/arloliu/mgindex/offsettree"
	"github.com/arloliu/mgindex/section"
	"github.com/arloliu/mgindex/signature"
)

// Table is a dataset master index table.
type Table struct {
	layout section.Layout
	geo    geometry
	codec  *signature.Codec
	logger *slog.Logger

	entries []AUIndexEntry
	offsets []uint64 // per-descriptor offsets of aligned entries, nil with block headers

	unaligned        []UnalignedAUIndexEntry
	unalignedOffsets []uint64 // per-descriptor offsets of unaligned entries, nil with block headers
	signatures       []*signature.Collection

	trees    [][]*offsettree.Tree // [class][descriptor], nil with block headers
	inserted [][]int              // successful insertions per tree

	sigIndex map[uint64][]int // signature fingerprint -> unaligned AUs, built on demand
}

// New allocates a table for layout. Every entry, offset slot and offset tree
// is created up front; signature collections start empty and grow as
// signatures are added.
func New(layout section.Layout, opts ...Option) (*Table, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	layout.Classes = slices.Clone(layout.Classes)
	layout.Sequences = slices.Clone(layout.Sequences)

	codec, err := signature.NewCodec(layout.Signature)
	if err != nil {
		return nil, fmt.Errorf("signature codec: %w", err)
	}

	t := &Table{
		layout: layout,
		codec:  codec,
		logger: slog.New(slog.DiscardHandler),
	}
	t.geo = newGeometry(&t.layout)

	if err := options.Apply(t, opts...); err != nil {
		return nil, err
	}

	t.entries = make([]AUIndexEntry, t.geo.numEntries)
	t.unaligned = make([]UnalignedAUIndexEntry, t.geo.numUnaligned)
	t.signatures = make([]*signature.Collection, t.geo.numUnaligned)
	for i := range t.signatures {
		t.signatures[i] = signature.NewCollection(layout.Signature.Base)
	}

	if !layout.BlockHeader {
		t.offsets = make([]uint64, t.geo.numOffsets)
		t.unalignedOffsets = make([]uint64, t.geo.numUnaligned*t.geo.numUnmapped)

		t.trees = make([][]*offsettree.Tree, len(layout.Classes))
		t.inserted = make([][]int, len(layout.Classes))
		for ci, c := range layout.Classes {
			t.trees[ci] = make([]*offsettree.Tree, c.NumDescriptors)
			t.inserted[ci] = make([]int, c.NumDescriptors)
			for d := range t.trees[ci] {
				t.trees[ci][d] = offsettree.New()
			}
		}
	}

	return t, nil
}

// Layout returns the layout the table was built from.
func (t *Table) Layout() section.Layout {
	return t.layout
}

// NumUnalignedAUs returns the number of unaligned entries.
func (t *Table) NumUnalignedAUs() int {
	return t.geo.numUnaligned
}

func (t *Table) entry(seq, class, au int) *AUIndexEntry {
	i, ok := t.geo.entryIndex(seq, class, au)
	if !ok {
		return nil
	}

	return &t.entries[i]
}

func (t *Table) unalignedEntry(uau int) *UnalignedAUIndexEntry {
	if uau < 0 || uau >= len(t.unaligned) {
		return nil
	}

	return &t.unaligned[uau]
}

func (t *Table) tree(class, desc int) *offsettree.Tree {
	if t.trees == nil || class < 0 || class >= len(t.trees) || desc < 0 || desc >= len(t.trees[class]) {
		return nil
	}

	return t.trees[class][desc]
}

// insert adds offset to the (class, desc) tree and reports whether it was new.
func (t *Table) insert(class, desc int, offset uint64) bool {
	tr := t.tree(class, desc)
	if tr == nil || !tr.Insert(offset) {
		return false
	}
	t.inserted[class][desc]++

	return true
}

// SetAUOffset records the byte offset of an aligned access unit.
func (t *Table) SetAUOffset(seq, class, au int, offset uint64) bool {
	e := t.entry(seq, class, au)
	if e == nil {
		return false
	}
	e.AUByteOffset = offset

	return true
}

// SetStartAndEnd records the genomic span of an aligned access unit.
func (t *Table) SetStartAndEnd(seq, class, au int, start, end uint64) bool {
	e := t.entry(seq, class, au)
	if e == nil {
		return false
	}
	e.StartPosition, e.EndPosition = start, end

	return true
}

// SetExtendedStartAndEnd records the extended span. It is rejected unless the
// layout enables multiple alignment.
func (t *Table) SetExtendedStartAndEnd(seq, class, au int, start, end uint64) bool {
	if !t.layout.MultipleAlignment {
		return false
	}
	e := t.entry(seq, class, au)
	if e == nil {
		return false
	}
	e.ExtendedStartPosition, e.ExtendedEndPosition = start, end

	return true
}

// SetRefPosition records the reference sequence span. It is rejected outside reference datasets.
func (t *Table) SetRefPosition(seq, class, au int, refID uint16, start, end uint64) bool {
	if !t.layout.IsReference() {
		return false
	}
	e := t.entry(seq, class, au)
	if e == nil {
		return false
	}
	e.RefSequenceID, e.RefStartPosition, e.RefEndPosition = refID, start, end

	return true
}

// SetOffset records the byte offset of one descriptor block and adds it to
// the descriptor's offset tree. A value already present in the tree is kept
// once; the duplicate is logged, not reported. It is rejected with block headers.
func (t *Table) SetOffset(seq, class, au, desc int, offset uint64) bool {
	if t.offsets == nil {
		return false
	}
	i, ok := t.geo.offsetIndex(seq, class, au, desc, t.layout.NumDescriptors(class))
	if !ok {
		return false
	}
	t.offsets[i] = offset

	if !t.insert(class, desc, offset) {
		t.logger.Debug("duplicate block offset",
			slog.Int("sequence", seq), slog.Int("class", class), slog.Int("au", au),
			slog.Int("descriptor", desc), slog.Uint64("offset", offset))
	}

	return true
}

// InsertFinalOffset adds the offset just past the last block of a descriptor
// stream, so that NextBlockByteOffset resolves for that block too. The value
// may already be present. Class U offsets land in the tree shared with the
// unaligned index.
func (t *Table) InsertFinalOffset(class, desc int, offset uint64) bool {
	if t.tree(class, desc) == nil {
		return false
	}
	t.insert(class, desc, offset)

	return true
}

// SetUnalignedAUOffset records the byte offset of an unmapped access unit.
func (t *Table) SetUnalignedAUOffset(uau int, offset uint64) bool {
	e := t.unalignedEntry(uau)
	if e == nil {
		return false
	}
	e.AUByteOffset = offset

	return true
}

// SetUnalignedOffset records one descriptor block offset of an unmapped
// access unit and adds it to the class U tree. It is rejected with block headers.
func (t *Table) SetUnalignedOffset(uau, desc int, offset uint64) bool {
	if t.unalignedOffsets == nil {
		return false
	}
	i, ok := t.geo.unalignedOffsetIndex(uau, desc)
	if !ok {
		return false
	}
	t.unalignedOffsets[i] = offset

	if !t.insert(t.geo.unmappedPos, desc, offset) {
		t.logger.Debug("duplicate unaligned block offset",
			slog.Int("au", uau), slog.Int("descriptor", desc), slog.Uint64("offset", offset))
	}

	return true
}

// SetUnalignedBlockOffset records the single block offset stored per unmapped
// access unit with block headers. It is rejected without block headers.
func (t *Table) SetUnalignedBlockOffset(uau int, offset uint64) bool {
	if !t.layout.BlockHeader {
		return false
	}
	e := t.unalignedEntry(uau)
	if e == nil {
		return false
	}
	e.BlockByteOffset = offset

	return true
}

// SetUnalignedRefPosition records the reference span of an unmapped access
// unit. It is rejected outside reference datasets.
func (t *Table) SetUnalignedRefPosition(uau int, refID uint16, start, end uint64) bool {
	if !t.layout.IsReference() {
		return false
	}
	e := t.unalignedEntry(uau)
	if e == nil {
		return false
	}
	e.RefSequenceID, e.RefStartPosition, e.RefEndPosition = refID, start, end

	return true
}

// SetSignatures replaces the signature set of an unmapped access unit. It is
// rejected when the layout carries no signatures.
func (t *Table) SetSignatures(uau int, coll *signature.Collection) bool {
	if !t.layout.Signature.Enabled() || coll == nil || t.unalignedEntry(uau) == nil {
		return false
	}
	t.signatures[uau] = coll
	t.sigIndex = nil

	return true
}

// AddSignature stores sig in the next free slot of an unmapped access unit's set.
func (t *Table) AddSignature(uau int, sig signature.Signature) bool {
	if !t.layout.Signature.Enabled() || t.unalignedEntry(uau) == nil {
		return false
	}
	if !t.signatures[uau].Add(sig) {
		return false
	}
	t.sigIndex = nil

	return true
}

// ResizeSignatures changes the number of signature slots of an unmapped
// access unit, for units whose count differs from the multiple signature base.
func (t *Table) ResizeSignatures(uau, n int) bool {
	if !t.layout.Signature.Enabled() || n < 0 || t.unalignedEntry(uau) == nil {
		return false
	}
	t.signatures[uau].Resize(n)
	t.sigIndex = nil

	return true
}
