package section

import "github.com/arloliu/mgindex/format"

// LayoutFlag is the packed flag word at the start of a serialized Layout.
type LayoutFlag struct {
	// Options packs the structural flags.
	// Bit 0: byte offsets are 64-bit.
	// Bit 1: positions are 40-bit.
	// Bit 2: multiple alignment, extended positions present.
	// Bit 3: per-block headers, no per-descriptor offsets in the index.
	// Bit 4-5: dataset type.
	// Bit 6-7: reserved, must be 0.
	// Bit 8-15: magic number, 0xD1 for version 1.
	Options uint16
}

// NewLayoutFlag returns a flag word carrying the version 1 magic number and no options.
func NewLayoutFlag() LayoutFlag {
	return LayoutFlag{Options: MagicDatasetV1}
}

func (f LayoutFlag) has(mask uint16) bool {
	return f.Options&mask != 0
}

func (f *LayoutFlag) set(mask uint16, enabled bool) {
	if enabled {
		f.Options |= mask
	} else {
		f.Options &^= mask
	}
}

func (f LayoutFlag) ByteOffset64() bool      { return f.has(FlagByteOffset64) }
func (f LayoutFlag) Pos40() bool             { return f.has(FlagPos40) }
func (f LayoutFlag) MultipleAlignment() bool { return f.has(FlagMultipleAlignment) }
func (f LayoutFlag) BlockHeader() bool       { return f.has(FlagBlockHeader) }

func (f *LayoutFlag) SetByteOffset64(enabled bool)      { f.set(FlagByteOffset64, enabled) }
func (f *LayoutFlag) SetPos40(enabled bool)             { f.set(FlagPos40, enabled) }
func (f *LayoutFlag) SetMultipleAlignment(enabled bool) { f.set(FlagMultipleAlignment, enabled) }
func (f *LayoutFlag) SetBlockHeader(enabled bool)       { f.set(FlagBlockHeader, enabled) }

// DatasetType returns the dataset type stored in bits 4-5.
func (f LayoutFlag) DatasetType() format.DatasetType {
	return format.DatasetType((f.Options & DatasetTypeMask) >> DatasetTypeShift)
}

// SetDatasetType stores t in bits 4-5.
func (f *LayoutFlag) SetDatasetType(t format.DatasetType) {
	f.Options &^= DatasetTypeMask
	f.Options |= (uint16(t) << DatasetTypeShift) & DatasetTypeMask
}

// MagicNumber returns bits 8-15.
func (f LayoutFlag) MagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// IsValid checks the magic number, the reserved bits and the dataset type.
func (f LayoutFlag) IsValid() bool {
	return f.MagicNumber() == MagicDatasetV1 &&
		f.Options&ReservedBitsMask == 0 &&
		f.DatasetType().IsValid()
}
