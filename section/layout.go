package section

import (
	"fmt"

	"github.com/arloliu/mgindex/endian"
	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/format"
	"github.com/arloliu/mgindex/signature"
)

// ClassSpec declares one access unit class of the dataset.
type ClassSpec struct {
	Type           format.ClassType
	NumDescriptors int
}

// SequenceSpec declares one reference sequence and its number of access units per class.
type SequenceSpec struct {
	ID        uint16
	NumBlocks uint32
}

// Layout is the structural configuration of a dataset's master index table.
// It is read from the dataset header, validated once, and then shared
// read-only by the index writer, parser and size calculator.
type Layout struct {
	DatasetType format.DatasetType

	// ByteOffset64 selects 64-bit byte offsets instead of 32-bit ones.
	ByteOffset64 bool
	// Pos40 selects 40-bit genomic positions instead of 32-bit ones.
	Pos40 bool
	// MultipleAlignment adds extended start/end positions to aligned entries.
	MultipleAlignment bool
	// BlockHeader means blocks carry their own headers; the index then stores
	// no per-descriptor offsets for aligned access units and a single block
	// offset for unaligned ones.
	BlockHeader bool

	Classes         []ClassSpec
	Sequences       []SequenceSpec
	NumUnalignedAUs uint32

	Signature signature.Params
}

// Validate checks the layout for internal consistency.
func (l *Layout) Validate() error {
	if !l.DatasetType.IsValid() {
		return fmt.Errorf("%w: dataset type %d", errs.ErrInvalidLayout, l.DatasetType)
	}
	if len(l.Classes) > MaxClasses {
		return fmt.Errorf("%w: %d classes", errs.ErrInvalidLayout, len(l.Classes))
	}

	seenClass := make(map[format.ClassType]struct{}, len(l.Classes))
	for i, c := range l.Classes {
		if !c.Type.IsValid() {
			return fmt.Errorf("%w: class %d has type %d", errs.ErrInvalidLayout, i, c.Type)
		}
		if _, dup := seenClass[c.Type]; dup {
			return fmt.Errorf("%w: class %s declared twice", errs.ErrInvalidLayout, c.Type)
		}
		seenClass[c.Type] = struct{}{}
		if c.NumDescriptors < 0 || c.NumDescriptors > MaxDescriptors {
			return fmt.Errorf("%w: class %s has %d descriptors", errs.ErrInvalidLayout, c.Type, c.NumDescriptors)
		}
	}

	if len(l.Sequences) > MaxSequences {
		return fmt.Errorf("%w: %d sequences", errs.ErrInvalidLayout, len(l.Sequences))
	}
	seenSeq := make(map[uint16]struct{}, len(l.Sequences))
	for _, s := range l.Sequences {
		if _, dup := seenSeq[s.ID]; dup {
			return fmt.Errorf("%w: sequence %d declared twice", errs.ErrInvalidLayout, s.ID)
		}
		seenSeq[s.ID] = struct{}{}
	}

	if l.NumUnalignedAUs > 0 {
		if _, ok := seenClass[format.ClassU]; !ok {
			return fmt.Errorf("%w: %d unaligned access units without class U", errs.ErrInvalidLayout, l.NumUnalignedAUs)
		}
	}

	if err := l.Signature.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidLayout, err)
	}

	return nil
}

// OffsetBits returns the width of byte offset fields.
func (l *Layout) OffsetBits() int {
	if l.ByteOffset64 {
		return 64
	}

	return 32
}

// PosBits returns the width of position fields.
func (l *Layout) PosBits() int {
	if l.Pos40 {
		return 40
	}

	return 32
}

// IsReference reports whether entries carry reference sequence fields.
func (l *Layout) IsReference() bool {
	return l.DatasetType == format.DatasetReference
}

// IndexesClass reports whether class ci has aligned index entries. Class U
// is only indexed as aligned in reference datasets.
func (l *Layout) IndexesClass(ci int) bool {
	if ci < 0 || ci >= len(l.Classes) {
		return false
	}

	return l.Classes[ci].Type != format.ClassU || l.IsReference()
}

// ClassIndex returns the position of class t in Classes.
func (l *Layout) ClassIndex(t format.ClassType) (int, bool) {
	for i, c := range l.Classes {
		if c.Type == t {
			return i, true
		}
	}

	return -1, false
}

// UnmappedClassIndex returns the position of class U in Classes.
func (l *Layout) UnmappedClassIndex() (int, bool) {
	return l.ClassIndex(format.ClassU)
}

// NumUnmappedDescriptors returns the descriptor count of class U, or 0 without class U.
func (l *Layout) NumUnmappedDescriptors() int {
	ci, ok := l.UnmappedClassIndex()
	if !ok {
		return 0
	}

	return l.Classes[ci].NumDescriptors
}

// NumDescriptors returns the descriptor count of class ci, or 0 when ci is out of range.
func (l *Layout) NumDescriptors(ci int) int {
	if ci < 0 || ci >= len(l.Classes) {
		return 0
	}

	return l.Classes[ci].NumDescriptors
}

// NumBlocks returns the access unit count of sequence si, or 0 when si is out of range.
func (l *Layout) NumBlocks(si int) int {
	if si < 0 || si >= len(l.Sequences) {
		return 0
	}

	return int(l.Sequences[si].NumBlocks)
}

// SequenceIndex returns the position of the sequence with the given id.
func (l *Layout) SequenceIndex(id uint16) (int, bool) {
	for i, s := range l.Sequences {
		if s.ID == id {
			return i, true
		}
	}

	return -1, false
}

// HasUnalignedIndex reports whether the table carries an unaligned section.
func (l *Layout) HasUnalignedIndex() bool {
	return l.NumUnalignedAUs > 0
}

// Flag packs the boolean options and dataset type.
func (l *Layout) Flag() LayoutFlag {
	f := NewLayoutFlag()
	f.SetByteOffset64(l.ByteOffset64)
	f.SetPos40(l.Pos40)
	f.SetMultipleAlignment(l.MultipleAlignment)
	f.SetBlockHeader(l.BlockHeader)
	f.SetDatasetType(l.DatasetType)

	return f
}

// Size returns the serialized size of the layout in bytes.
func (l *Layout) Size() int {
	return layoutFixedSize + len(l.Classes)*layoutClassSize + len(l.Sequences)*layoutSequenceSize
}

// AppendBytes appends the serialized layout to buf.
func (l *Layout) AppendBytes(buf []byte) []byte {
	engine := endian.GetBigEndianEngine()

	buf = engine.AppendUint16(buf, l.Flag().Options)
	buf = append(buf, uint8(len(l.Classes)))
	for _, c := range l.Classes {
		buf = append(buf, uint8(c.Type), uint8(c.NumDescriptors))
	}
	buf = engine.AppendUint16(buf, uint16(len(l.Sequences)))
	for _, s := range l.Sequences {
		buf = engine.AppendUint16(buf, s.ID)
		buf = engine.AppendUint32(buf, s.NumBlocks)
	}
	buf = engine.AppendUint32(buf, l.NumUnalignedAUs)
	buf = append(buf, uint8(l.Signature.Size), uint8(l.Signature.Length))
	buf = engine.AppendUint32(buf, uint32(l.Signature.Base))
	buf = append(buf, uint8(l.Signature.Alphabet))

	return buf
}

// Bytes serializes the layout.
func (l *Layout) Bytes() []byte {
	return l.AppendBytes(make([]byte, 0, l.Size()))
}

// ParseLayout decodes a layout from data and validates it. It returns the number of bytes consumed.
func ParseLayout(data []byte) (Layout, int, error) {
	engine := endian.GetBigEndianEngine()
	var l Layout

	short := func(what string) error {
		return fmt.Errorf("%w: truncated layout at %s", errs.ErrInvalidHeader, what)
	}

	if len(data) < 3 {
		return Layout{}, 0, short("flag")
	}
	flag := LayoutFlag{Options: engine.Uint16(data)}
	if !flag.IsValid() {
		return Layout{}, 0, fmt.Errorf("%w: flag word %#04x", errs.ErrInvalidHeader, flag.Options)
	}
	l.DatasetType = flag.DatasetType()
	l.ByteOffset64 = flag.ByteOffset64()
	l.Pos40 = flag.Pos40()
	l.MultipleAlignment = flag.MultipleAlignment()
	l.BlockHeader = flag.BlockHeader()

	numClasses := int(data[2])
	pos := 3
	if len(data) < pos+numClasses*layoutClassSize+2 {
		return Layout{}, 0, short("classes")
	}
	l.Classes = make([]ClassSpec, numClasses)
	for i := range l.Classes {
		l.Classes[i] = ClassSpec{Type: format.ClassType(data[pos]), NumDescriptors: int(data[pos+1])}
		pos += layoutClassSize
	}

	numSeqs := int(engine.Uint16(data[pos:]))
	pos += 2
	if len(data) < pos+numSeqs*layoutSequenceSize+4+1+1+4+1 {
		return Layout{}, 0, short("sequences")
	}
	l.Sequences = make([]SequenceSpec, numSeqs)
	for i := range l.Sequences {
		l.Sequences[i] = SequenceSpec{
			ID:        engine.Uint16(data[pos:]),
			NumBlocks: engine.Uint32(data[pos+2:]),
		}
		pos += layoutSequenceSize
	}

	l.NumUnalignedAUs = engine.Uint32(data[pos:])
	pos += 4
	l.Signature.Size = int(data[pos])
	l.Signature.Length = int(data[pos+1])
	l.Signature.Base = int(engine.Uint32(data[pos+2:]))
	l.Signature.Alphabet = format.Alphabet(data[pos+6])
	pos += 7

	if err := l.Validate(); err != nil {
		return Layout{}, 0, err
	}

	return l, pos, nil
}
