package section

import (
	"bytes"
	"testing"

	"github.com/arloliu/mgindex/errs"
	"github.com/stretchr/testify/require"
)

func TestBoxHeader_RoundTrip(t *testing.T) {
	h := NewBoxHeader(TypeDatasetMasterIndexTable, 100)
	require.Equal(t, uint64(112), h.Size)
	require.Equal(t, uint64(100), h.ContentSize())

	data := h.Bytes()
	require.Len(t, data, BoxHeaderSize)
	require.Equal(t, []byte("dmit"), data[:4])
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 112}, data[4:])

	parsed, err := ParseBoxHeader(data)
	require.NoError(t, err)
	require.Equal(t, h, parsed)

	var buf bytes.Buffer
	n, err := h.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(BoxHeaderSize), n)

	read, err := ReadBoxHeader(&buf, TypeDatasetMasterIndexTable)
	require.NoError(t, err)
	require.Equal(t, h, read)
}

func TestBoxHeader_Invalid(t *testing.T) {
	t.Run("Too short", func(t *testing.T) {
		_, err := ParseBoxHeader([]byte("dmit"))
		require.ErrorIs(t, err, errs.ErrInvalidBoxSize)
	})

	t.Run("Size smaller than header", func(t *testing.T) {
		data := BoxHeader{Type: TypeDatasetHeader, Size: 4}.Bytes()
		_, err := ParseBoxHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidBoxSize)
	})

	t.Run("Wrong type", func(t *testing.T) {
		data := NewBoxHeader(TypeDatasetHeader, 0).Bytes()
		_, err := ReadBoxHeader(bytes.NewReader(data), TypeDatasetMasterIndexTable)
		require.ErrorIs(t, err, errs.ErrInvalidBoxType)
	})

	t.Run("Truncated stream", func(t *testing.T) {
		_, err := ReadBoxHeader(bytes.NewReader([]byte("dm")), TypeDatasetMasterIndexTable)
		require.ErrorIs(t, err, errs.ErrShortRead)
	})
}
