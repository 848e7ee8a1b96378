package section

import (
	"bytes"
	"testing"

	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/format"
	"github.com/arloliu/mgindex/signature"
	"github.com/stretchr/testify/require"
)

func sampleLayout() Layout {
	return Layout{
		DatasetType:       format.DatasetAligned,
		ByteOffset64:      true,
		Pos40:             true,
		MultipleAlignment: true,
		Classes: []ClassSpec{
			{Type: format.ClassP, NumDescriptors: 4},
			{Type: format.ClassM, NumDescriptors: 7},
			{Type: format.ClassU, NumDescriptors: 3},
		},
		Sequences: []SequenceSpec{
			{ID: 1, NumBlocks: 3},
			{ID: 22, NumBlocks: 1},
		},
		NumUnalignedAUs: 5,
		Signature:       signature.Params{Size: 32, Length: 8, Base: 2, Alphabet: format.AlphabetDNA},
	}
}

func TestLayoutFlag(t *testing.T) {
	f := NewLayoutFlag()
	require.True(t, f.IsValid())
	require.Equal(t, uint16(MagicDatasetV1), f.MagicNumber())

	f.SetByteOffset64(true)
	f.SetBlockHeader(true)
	f.SetDatasetType(format.DatasetReference)
	require.True(t, f.ByteOffset64())
	require.False(t, f.Pos40())
	require.False(t, f.MultipleAlignment())
	require.True(t, f.BlockHeader())
	require.Equal(t, format.DatasetReference, f.DatasetType())

	f.SetBlockHeader(false)
	require.False(t, f.BlockHeader())

	f.Options |= ReservedBitsMask
	require.False(t, f.IsValid())
	require.False(t, LayoutFlag{}.IsValid(), "missing magic number")
}

func TestLayout_Validate(t *testing.T) {
	valid := sampleLayout()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(l *Layout)
	}{
		{"Unknown dataset type", func(l *Layout) { l.DatasetType = 3 }},
		{"Unknown class", func(l *Layout) { l.Classes[0].Type = 0 }},
		{"Duplicate class", func(l *Layout) { l.Classes[1].Type = format.ClassP }},
		{"Too many descriptors", func(l *Layout) { l.Classes[0].NumDescriptors = 256 }},
		{"Duplicate sequence", func(l *Layout) { l.Sequences[1].ID = 1 }},
		{"Unaligned AUs without class U", func(l *Layout) { l.Classes = l.Classes[:2] }},
		{"Bad signature size", func(l *Layout) { l.Signature.Size = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := sampleLayout()
			tt.mutate(&l)
			require.ErrorIs(t, l.Validate(), errs.ErrInvalidLayout)
		})
	}
}

func TestLayout_Derived(t *testing.T) {
	l := sampleLayout()

	require.Equal(t, 64, l.OffsetBits())
	require.Equal(t, 40, l.PosBits())
	require.False(t, l.IsReference())
	require.True(t, l.IndexesClass(0))
	require.False(t, l.IndexesClass(2), "class U is unaligned only outside reference datasets")
	require.False(t, l.IndexesClass(3))
	require.True(t, l.HasUnalignedIndex())
	require.Equal(t, 3, l.NumUnmappedDescriptors())
	require.Equal(t, 7, l.NumDescriptors(1))
	require.Zero(t, l.NumDescriptors(-1))
	require.Equal(t, 3, l.NumBlocks(0))
	require.Zero(t, l.NumBlocks(2))

	si, ok := l.SequenceIndex(22)
	require.True(t, ok)
	require.Equal(t, 1, si)
	_, ok = l.SequenceIndex(5)
	require.False(t, ok)

	ci, ok := l.ClassIndex(format.ClassM)
	require.True(t, ok)
	require.Equal(t, 1, ci)

	l.DatasetType = format.DatasetReference
	require.True(t, l.IndexesClass(2))

	narrow := Layout{}
	require.Equal(t, 32, narrow.OffsetBits())
	require.Equal(t, 32, narrow.PosBits())
	require.Zero(t, narrow.NumUnmappedDescriptors())
}

func TestLayout_RoundTrip(t *testing.T) {
	l := sampleLayout()
	data := l.Bytes()
	require.Len(t, data, l.Size())

	parsed, n, err := ParseLayout(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, l, parsed)
}

func TestParseLayout_Truncated(t *testing.T) {
	l := sampleLayout()
	data := l.Bytes()

	for _, cut := range []int{0, 2, 5, 10, len(data) - 1} {
		_, _, err := ParseLayout(data[:cut])
		require.ErrorIs(t, err, errs.ErrInvalidHeader, "cut at %d", cut)
	}

	bad := bytes.Clone(data)
	bad[0] = 0
	_, _, err := ParseLayout(bad)
	require.ErrorIs(t, err, errs.ErrInvalidHeader)
}

func TestDatasetHeader_RoundTrip(t *testing.T) {
	h := &DatasetHeader{Layout: sampleLayout(), Compression: format.CompressionZstd}

	var buf bytes.Buffer
	n, err := h.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(h.BoxSize()), n)

	parsed, err := ReadDatasetHeader(&buf)
	require.NoError(t, err)
	require.Equal(t, h, parsed)
}

func TestDatasetHeader_Invalid(t *testing.T) {
	t.Run("Unknown compression", func(t *testing.T) {
		h := &DatasetHeader{Layout: sampleLayout(), Compression: 9}
		_, err := ReadDatasetHeader(bytes.NewReader(h.Bytes()))
		require.ErrorIs(t, err, errs.ErrInvalidCompression)
	})

	t.Run("Truncated body", func(t *testing.T) {
		h := &DatasetHeader{Layout: sampleLayout(), Compression: format.CompressionNone}
		data := h.Bytes()
		_, err := ReadDatasetHeader(bytes.NewReader(data[:len(data)-3]))
		require.ErrorIs(t, err, errs.ErrShortRead)
	})

	t.Run("Oversized box", func(t *testing.T) {
		data := NewBoxHeader(TypeDatasetHeader, 1<<40).Bytes()
		_, err := ReadDatasetHeader(bytes.NewReader(data))
		require.ErrorIs(t, err, errs.ErrInvalidBoxSize)
	})
}
