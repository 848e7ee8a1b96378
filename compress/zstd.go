package compress

import "github.com/arloliu/mgindex/format"

// ZstdCodec compresses blocks with Zstandard. The backend is chosen at build
// time, see the package documentation.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a Zstd codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}

// Type returns format.CompressionZstd.
func (c ZstdCodec) Type() format.CompressionType {
	return format.CompressionZstd
}
