package index

import (
	"log/slog"

	"github.com/arloliu/mgindex/internal/collision"
	"github.com/arloliu/mgindex/signature"
)

// Entry returns a copy of the aligned entry at (seq, class, au).
func (t *Table) Entry(seq, class, au int) (AUIndexEntry, bool) {
	e := t.entry(seq, class, au)
	if e == nil {
		return AUIndexEntry{}, false
	}

	return *e, true
}

// AUStartPosition returns the start position of an aligned access unit.
func (t *Table) AUStartPosition(seq, class, au int) (uint64, bool) {
	e := t.entry(seq, class, au)
	if e == nil {
		return 0, false
	}

	return e.StartPosition, true
}

// AUEndPosition returns the end position of an aligned access unit.
func (t *Table) AUEndPosition(seq, class, au int) (uint64, bool) {
	e := t.entry(seq, class, au)
	if e == nil {
		return 0, false
	}

	return e.EndPosition, true
}

// AUExtendedStartPosition returns the extended start position; it is only
// available with multiple alignment.
func (t *Table) AUExtendedStartPosition(seq, class, au int) (uint64, bool) {
	e := t.entry(seq, class, au)
	if e == nil || !t.layout.MultipleAlignment {
		return 0, false
	}

	return e.ExtendedStartPosition, true
}

// AUExtendedEndPosition returns the extended end position; it is only
// available with multiple alignment.
func (t *Table) AUExtendedEndPosition(seq, class, au int) (uint64, bool) {
	e := t.entry(seq, class, au)
	if e == nil || !t.layout.MultipleAlignment {
		return 0, false
	}

	return e.ExtendedEndPosition, true
}

// RefPosition returns the reference sequence span of an aligned access unit in a reference dataset.
func (t *Table) RefPosition(seq, class, au int) (refID uint16, start, end uint64, ok bool) {
	e := t.entry(seq, class, au)
	if e == nil || !t.layout.IsReference() {
		return 0, 0, 0, false
	}

	return e.RefSequenceID, e.RefStartPosition, e.RefEndPosition, true
}

// AccessUnitByteOffset returns the byte offset of an aligned access unit.
func (t *Table) AccessUnitByteOffset(seq, class, au int) (uint64, bool) {
	e := t.entry(seq, class, au)
	if e == nil {
		return 0, false
	}

	return e.AUByteOffset, true
}

// BlockByteOffset returns the byte offset of one descriptor block. It is not
// available with block headers.
func (t *Table) BlockByteOffset(seq, class, au, desc int) (uint64, bool) {
	if t.offsets == nil {
		return 0, false
	}
	i, ok := t.geo.offsetIndex(seq, class, au, desc, t.layout.NumDescriptors(class))
	if !ok {
		return 0, false
	}

	return t.offsets[i], true
}

// NextBlockByteOffset returns the offset following the block at (seq, class,
// au, desc) in its descriptor stream, which is where that block ends.
func (t *Table) NextBlockByteOffset(seq, class, au, desc int) (uint64, bool) {
	offset, ok := t.BlockByteOffset(seq, class, au, desc)
	if !ok {
		return 0, false
	}

	return t.nextInTree(class, desc, offset)
}

func (t *Table) nextInTree(class, desc int, offset uint64) (uint64, bool) {
	tr := t.tree(class, desc)
	if tr == nil {
		return 0, false
	}
	next := tr.Find(offset).Next()
	if next == nil {
		return 0, false
	}

	return next.Value(), true
}

// UnalignedEntry returns a copy of the unaligned entry uau.
func (t *Table) UnalignedEntry(uau int) (UnalignedAUIndexEntry, bool) {
	e := t.unalignedEntry(uau)
	if e == nil {
		return UnalignedAUIndexEntry{}, false
	}

	return *e, true
}

// UnalignedAUByteOffset returns the byte offset of an unmapped access unit.
func (t *Table) UnalignedAUByteOffset(uau int) (uint64, bool) {
	e := t.unalignedEntry(uau)
	if e == nil {
		return 0, false
	}

	return e.AUByteOffset, true
}

// UnalignedRefPosition returns the reference span of an unmapped access unit in a reference dataset.
func (t *Table) UnalignedRefPosition(uau int) (refID uint16, start, end uint64, ok bool) {
	e := t.unalignedEntry(uau)
	if e == nil || !t.layout.IsReference() {
		return 0, 0, 0, false
	}

	return e.RefSequenceID, e.RefStartPosition, e.RefEndPosition, true
}

// UnalignedBlockOffset returns the single block offset of an unmapped access
// unit. It is only available with block headers.
func (t *Table) UnalignedBlockOffset(uau int) (uint64, bool) {
	e := t.unalignedEntry(uau)
	if e == nil || !t.layout.BlockHeader {
		return 0, false
	}

	return e.BlockByteOffset, true
}

// UnalignedDescriptorOffset returns one descriptor block offset of an
// unmapped access unit. It is not available with block headers.
func (t *Table) UnalignedDescriptorOffset(uau, desc int) (uint64, bool) {
	if t.unalignedOffsets == nil {
		return 0, false
	}
	i, ok := t.geo.unalignedOffsetIndex(uau, desc)
	if !ok {
		return 0, false
	}

	return t.unalignedOffsets[i], true
}

// NextUnalignedBlockByteOffset returns where the descriptor block of an
// unmapped access unit ends.
func (t *Table) NextUnalignedBlockByteOffset(uau, desc int) (uint64, bool) {
	offset, ok := t.UnalignedDescriptorOffset(uau, desc)
	if !ok {
		return 0, false
	}

	return t.nextInTree(t.geo.unmappedPos, desc, offset)
}

// Signatures returns the signature set of an unmapped access unit.
func (t *Table) Signatures(uau int) (*signature.Collection, bool) {
	if t.unalignedEntry(uau) == nil || !t.layout.Signature.Enabled() {
		return nil, false
	}

	return t.signatures[uau], true
}

// FindUnalignedAUs returns, in ascending order, the unmapped access units
// whose signature set contains sig.
func (t *Table) FindUnalignedAUs(sig signature.Signature) []int {
	if !t.layout.Signature.Enabled() {
		return nil
	}
	if t.sigIndex == nil {
		t.buildSignatureIndex()
	}

	var found []int
	for _, uau := range t.sigIndex[sig.Fingerprint()] {
		if t.signatures[uau].Contains(sig) {
			found = append(found, uau)
		}
	}

	return found
}

func (t *Table) buildSignatureIndex() {
	tracker := collision.NewTracker()
	t.sigIndex = make(map[uint64][]int)

	for uau, coll := range t.signatures {
		for _, sig := range coll.All() {
			fp := sig.Fingerprint()
			tracker.Track(sig.Key(), fp)

			list := t.sigIndex[fp]
			if len(list) > 0 && list[len(list)-1] == uau {
				continue
			}
			t.sigIndex[fp] = append(list, uau)
		}
	}

	if tracker.HasCollision() {
		t.logger.Debug("signature fingerprint collisions",
			slog.Int("collisions", tracker.Collisions()), slog.Int("distinct", tracker.Count()))
	}
}
