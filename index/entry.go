package index

// AUIndexEntry is the index record of one aligned access unit.
type AUIndexEntry struct {
	AUByteOffset uint64

	StartPosition uint64
	EndPosition   uint64

	// Extended positions are only stored with multiple alignment.
	ExtendedStartPosition uint64
	ExtendedEndPosition   uint64

	// Reference fields are only stored for reference datasets.
	RefSequenceID    uint16
	RefStartPosition uint64
	RefEndPosition   uint64
}

// UnalignedAUIndexEntry is the index record of one unmapped access unit.
type UnalignedAUIndexEntry struct {
	AUByteOffset uint64

	// BlockByteOffset is the single block offset stored with block headers.
	BlockByteOffset uint64

	RefSequenceID    uint16
	RefStartPosition uint64
	RefEndPosition   uint64
}
