package index

// AUOffsets holds the access unit byte offsets recovered while parsing a
// table, for callers that keep their own access unit directory.
type AUOffsets struct {
	geo       geometry
	aligned   []uint64
	unaligned []uint64
}

func newAUOffsets(g geometry) *AUOffsets {
	return &AUOffsets{
		geo:       g,
		aligned:   make([]uint64, g.numEntries),
		unaligned: make([]uint64, g.numUnaligned),
	}
}

// Get returns the byte offset of aligned access unit (seq, class, au).
func (o *AUOffsets) Get(seq, class, au int) (uint64, bool) {
	i, ok := o.geo.entryIndex(seq, class, au)
	if !ok {
		return 0, false
	}

	return o.aligned[i], true
}

// Unaligned returns the byte offset of unmapped access unit uau.
func (o *AUOffsets) Unaligned(uau int) (uint64, bool) {
	if uau < 0 || uau >= len(o.unaligned) {
		return 0, false
	}

	return o.unaligned[uau], true
}

// Len returns the number of aligned access units.
func (o *AUOffsets) Len() int {
	return len(o.aligned)
}

// UnalignedLen returns the number of unmapped access units.
func (o *AUOffsets) UnalignedLen() int {
	return len(o.unaligned)
}
