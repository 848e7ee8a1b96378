package compress

import (
	"fmt"

	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/format"
)

// Compressor compresses one descriptor block payload.
type Compressor interface {
	// Compress returns the compressed form of data. The input is not modified.
	// Empty input yields a nil result.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores block payloads produced by the matching Compressor.
//
// Implementations validate the input and return an error for corrupted data
// or data produced by another algorithm. They are safe for concurrent use.
type Decompressor interface {
	// Decompress returns the original payload. Empty input yields a nil result.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions for one algorithm.
type Codec interface {
	Compressor
	Decompressor

	// Type returns the compression type recorded in block tags.
	Type() format.CompressionType
}

// CompressionStats accumulates the effect of compression over a set of blocks.
type CompressionStats struct {
	// Algorithm is the codec the stats were collected for.
	Algorithm format.CompressionType

	// Blocks is the number of blocks passed through the codec.
	Blocks int
	// StoredRaw counts blocks kept uncompressed because compression did not shrink them.
	StoredRaw int

	OriginalSize   int64
	CompressedSize int64
}

// Add records one block of original size n that was stored in stored bytes.
func (s *CompressionStats) Add(n, stored int, raw bool) {
	s.Blocks++
	if raw {
		s.StoredRaw++
	}
	s.OriginalSize += int64(n)
	s.CompressedSize += int64(stored)
}

// CompressionRatio returns compressed size / original size, or 0 when nothing was recorded.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space saved as a percentage.
func (s CompressionStats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec returns a new codec for compressionType. target names the
// payload in error messages.
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCodec(), nil
	case format.CompressionZstd:
		return NewZstdCodec(), nil
	case format.CompressionS2:
		return NewS2Codec(), nil
	case format.CompressionLZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("%w: %s compression %s", errs.ErrInvalidCompression, target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCodec(),
	format.CompressionZstd: NewZstdCodec(),
	format.CompressionS2:   NewS2Codec(),
	format.CompressionLZ4:  NewLZ4Codec(),
}

// GetCodec returns the shared built-in codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: unsupported compression type %s", errs.ErrInvalidCompression, compressionType)
}
