package section

const (
	// Layout flag bits (bits 0-3).
	FlagByteOffset64      = 0x0001 // 0=32-bit byte offsets, 1=64-bit byte offsets
	FlagPos40             = 0x0002 // 0=32-bit positions, 1=40-bit positions
	FlagMultipleAlignment = 0x0004 // extended start/end positions present
	FlagBlockHeader       = 0x0008 // blocks carry their own headers, no per-descriptor offsets

	// Dataset type (bits 4-5) and reserved bits (6-7).
	DatasetTypeMask  = 0x0030
	DatasetTypeShift = 4
	ReservedBitsMask = 0x00C0

	// Magic number (bits 8-15).
	MagicNumberMask = 0xFF00
	MagicDatasetV1  = 0xD100 // MagicDatasetV1 identifies version 1 of the dataset header layout.
)

const (
	// BoxHeaderSize is the size of a box header: 4-byte type and 64-bit size.
	BoxHeaderSize = 12

	// MaxClasses is the number of defined access unit classes.
	MaxClasses = 6
	// MaxDescriptors is the largest descriptor count a class can declare.
	MaxDescriptors = 0xFF
	// MaxSequences is the largest number of reference sequences per dataset.
	MaxSequences = 0xFFFF

	layoutFixedSize    = 2 + 1 + 2 + 4 + 1 + 1 + 4 + 1 // flag, class count, sequence count, unaligned AUs, signature params
	layoutClassSize    = 2                             // class type, descriptor count
	layoutSequenceSize = 2 + 4                         // sequence id, block count
)

// Box types.
var (
	TypeDatasetHeader           = BoxType{'d', 't', 'h', 'd'}
	TypeDatasetMasterIndexTable = BoxType{'d', 'm', 'i', 't'}
)
