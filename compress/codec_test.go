package compress

import (
	"bytes"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/format"
	"github.com/stretchr/testify/require"
)

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCodec(),
		"LZ4":  NewLZ4Codec(),
		"S2":   NewS2Codec(),
		"Zstd": NewZstdCodec(),
	}
}

// readBlock builds a payload resembling a read-sequence descriptor block:
// long runs over a four letter alphabet.
func readBlock(n int, seed uint64) []byte {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	bases := []byte("ACGT")
	data := make([]byte, n)
	for i := range data {
		if i > 8 && rng.IntN(4) != 0 {
			data[i] = data[i-8]
			continue
		}
		data[i] = bases[rng.IntN(len(bases))]
	}

	return data
}

func TestCodec_Type(t *testing.T) {
	tests := map[string]format.CompressionType{
		"NoOp": format.CompressionNone,
		"LZ4":  format.CompressionLZ4,
		"S2":   format.CompressionS2,
		"Zstd": format.CompressionZstd,
	}
	for name, codec := range getAllCodecs() {
		require.Equal(t, tests[name], codec.Type(), name)
	}
}

func TestCreateCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := CreateCodec(ct, "block")
			require.NoError(t, err)
			require.Equal(t, ct, codec.Type())

			shared, err := GetCodec(ct)
			require.NoError(t, err)
			require.Equal(t, ct, shared.Type())
		})
	}

	t.Run("invalid type", func(t *testing.T) {
		_, err := CreateCodec(format.CompressionType(0), "block")
		require.ErrorIs(t, err, errs.ErrInvalidCompression)
		require.Contains(t, err.Error(), "block")

		_, err = GetCodec(format.CompressionType(99))
		require.ErrorIs(t, err, errs.ErrInvalidCompression)
	})
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Nil(t, compressed)

			compressed, err = codec.Compress([]byte{})
			require.NoError(t, err)
			require.Nil(t, compressed)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Nil(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "single byte", data: []byte{0x42}},
		{name: "short text", data: []byte("ACGTNACGTN")},
		{name: "repeated pattern", data: bytes.Repeat([]byte("ACGT"), 100)},
		{name: "read block 16KiB", data: readBlock(16*1024, 1)},
		{name: "read block 256KiB", data: readBlock(256*1024, 2)},
		{name: "zeros 1MiB", data: make([]byte, 1024*1024)},
		{
			name: "random bytes",
			data: func() []byte {
				rng := rand.New(rand.NewPCG(3, 4))
				data := make([]byte, 4096)
				for i := range data {
					data[i] = byte(rng.Uint32())
				}

				return data
			}(),
		},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)
					require.NotEmpty(t, compressed)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, tc.data, decompressed)
				})
			}
		})
	}
}

func TestAllCodecs_Shrink(t *testing.T) {
	data := readBlock(64*1024, 7)
	for name, codec := range getAllCodecs() {
		if name == "NoOp" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(data)
			require.NoError(t, err)
			require.Less(t, len(compressed), len(data))
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalidInputs := map[string][]byte{
		"random bytes":       {0xFF, 0xFF, 0xFF, 0xFF},
		"text as compressed": []byte("this is not compressed data"),
		"corrupted header":   {0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
	}

	for codecName, codec := range getAllCodecs() {
		if codecName == "NoOp" {
			continue
		}
		t.Run(codecName, func(t *testing.T) {
			for name, data := range invalidInputs {
				t.Run(name, func(t *testing.T) {
					_, err := codec.Decompress(data)
					require.Error(t, err)
				})
			}
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	const numGoroutines = 16

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			var wg sync.WaitGroup
			errCh := make(chan error, numGoroutines)

			for i := range numGoroutines {
				wg.Add(1)
				go func() {
					defer wg.Done()
					data := readBlock(4096+i*128, uint64(i))
					compressed, err := codec.Compress(data)
					if err != nil {
						errCh <- err
						return
					}
					got, err := codec.Decompress(compressed)
					if err != nil {
						errCh <- err
						return
					}
					if !bytes.Equal(data, got) {
						errCh <- errs.ErrInvalidBlock
					}
				}()
			}
			wg.Wait()
			close(errCh)

			for err := range errCh {
				require.NoError(t, err)
			}
		})
	}
}

func TestLZ4Codec_LargeExpansionRatio(t *testing.T) {
	// 4 MiB of zeros compresses far beyond the initial 4x buffer guess.
	data := make([]byte, 4*1024*1024)
	codec := NewLZ4Codec()

	compressed, err := codec.Compress(data)
	require.NoError(t, err)
	require.Less(t, len(compressed)*4, len(data))

	decompressed, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestCompressionStats(t *testing.T) {
	var stats CompressionStats
	require.Zero(t, stats.CompressionRatio())
	require.Zero(t, stats.SpaceSavings())

	stats.Algorithm = format.CompressionZstd
	stats.Add(1000, 250, false)
	stats.Add(100, 100, true)

	require.Equal(t, 2, stats.Blocks)
	require.Equal(t, 1, stats.StoredRaw)
	require.Equal(t, int64(1100), stats.OriginalSize)
	require.Equal(t, int64(350), stats.CompressedSize)
	require.InDelta(t, 350.0/1100.0, stats.CompressionRatio(), 1e-9)
	require.InDelta(t, (1-350.0/1100.0)*100, stats.SpaceSavings(), 1e-9)
}

func TestZstdCodec_BlocksDecodeIndependently(t *testing.T) {
	codec := NewZstdCodec()
	first, second := readBlock(4096, 1), readBlock(4096, 2)

	a, err := codec.Compress(first)
	require.NoError(t, err)
	b, err := codec.Compress(second)
	require.NoError(t, err)

	got, err := codec.Decompress(b)
	require.NoError(t, err)
	require.Equal(t, second, got)
	got, err = codec.Decompress(a)
	require.NoError(t, err)
	require.Equal(t, first, got)
}
