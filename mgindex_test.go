package mgindex

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mgindex/dataset"
	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/format"
	"github.com/arloliu/mgindex/section"
	"github.com/arloliu/mgindex/signature"
)

func sampleLayout() section.Layout {
	return section.Layout{
		DatasetType: format.DatasetAligned,
		Classes: []section.ClassSpec{
			{Type: format.ClassP, NumDescriptors: 2},
			{Type: format.ClassU, NumDescriptors: 1},
		},
		Sequences:       []section.SequenceSpec{{ID: 1, NumBlocks: 2}},
		NumUnalignedAUs: 1,
		Signature:       signature.Params{Size: 16, Length: 4, Base: 1, Alphabet: format.AlphabetDNA},
	}
}

// TestTableRoundTrip verifies the table wrappers write and parse the same table
func TestTableRoundTrip(t *testing.T) {
	layout := sampleLayout()

	tbl, err := NewTable(layout)
	require.NoError(t, err)
	require.True(t, tbl.SetStartAndEnd(0, 0, 1, 500, 999))
	require.True(t, tbl.SetOffset(0, 0, 1, 1, 4096))

	sig, err := SignatureOf("acgt", format.AlphabetDNA)
	require.NoError(t, err)
	require.True(t, tbl.SetSignatures(0, signature.CollectionOf(sig)))

	var buf bytes.Buffer
	n, err := WriteTable(&buf, tbl)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	parsed, offs, err := ParseTable(buf.Bytes(), layout)
	require.NoError(t, err)
	require.NotNil(t, offs)

	end, ok := parsed.AUEndPosition(0, 0, 1)
	require.True(t, ok)
	require.Equal(t, uint64(999), end)

	off, ok := parsed.BlockByteOffset(0, 0, 1, 1)
	require.True(t, ok)
	require.Equal(t, uint64(4096), off)

	require.Equal(t, []int{0}, parsed.FindUnalignedAUs(sig))
}

// TestDatasetRoundTrip verifies a dataset written through the wrappers reads back
func TestDatasetRoundTrip(t *testing.T) {
	w, err := NewDatasetWriter(sampleLayout(), dataset.WithCompression(format.CompressionLZ4))
	require.NoError(t, err)

	payload := bytes.Repeat([]byte("ACGTACGTNN"), 64)
	require.NoError(t, w.SetBlock(0, 0, 1, 0, payload))
	require.NoError(t, w.SetUnalignedBlock(0, 0, []byte("unmapped")))

	sig, err := SignatureOf("GATT", format.AlphabetDNA)
	require.NoError(t, err)
	require.NoError(t, w.SetSignatures(0, sig))

	var buf bytes.Buffer
	_, err = w.WriteTo(&buf)
	require.NoError(t, err)

	rd, err := OpenDatasetBytes(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, format.CompressionLZ4, rd.Header().Compression)

	got, err := rd.ReadBlock(0, 0, 1, 0)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	got, err = rd.ReadUnalignedBlock(0, 0)
	require.NoError(t, err)
	require.Equal(t, []byte("unmapped"), got)

	rd, err = OpenDataset(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Equal(t, []int{0}, rd.FindUnalignedAUs(sig))
}

// TestSignatureOf verifies base strings map onto alphabet symbols
func TestSignatureOf(t *testing.T) {
	t.Run("DNA", func(t *testing.T) {
		sig, err := SignatureOf("ACGTNa", format.AlphabetDNA)
		require.NoError(t, err)
		require.Equal(t, []uint8{0, 1, 2, 3, 4, 0}, sig.Symbols())
	})

	t.Run("Extended", func(t *testing.T) {
		sig, err := SignatureOf("RyN-", format.AlphabetExtended)
		require.NoError(t, err)
		require.Equal(t, []uint8{4, 5, 14, 15}, sig.Symbols())
	})

	t.Run("Empty", func(t *testing.T) {
		sig, err := SignatureOf("", format.AlphabetDNA)
		require.NoError(t, err)
		require.Zero(t, sig.Len())
	})

	t.Run("Invalid symbol", func(t *testing.T) {
		_, err := SignatureOf("ACR", format.AlphabetDNA)
		require.ErrorIs(t, err, errs.ErrInvalidSymbol)
	})
}
