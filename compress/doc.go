// Package compress provides the block payload codecs of a dataset.
//
// Every descriptor block a dataset stores may be compressed independently
// with one of the algorithms named by format.CompressionType:
//
//   - None: payload stored as is
//   - Zstd: best ratio, moderate speed
//   - S2: balanced ratio and speed
//   - LZ4: fastest decompression
//
// A dataset selects one codec in its header. Blocks that do not shrink under
// that codec are stored raw, and the per-block tag written by the dataset
// package records which of the two happened, so readers always know how to
// restore a block.
//
// # Usage
//
//	codec, err := compress.CreateCodec(format.CompressionZstd, "block")
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
//	...
//	payload, err = codec.Decompress(packed)
//
// GetCodec returns shared instances of the built-in codecs. All codecs are
// safe for concurrent use; zstd and LZ4 keep pooled encoder state.
//
// # Zstd backends
//
// The default Zstd codec is the pure Go implementation from
// github.com/klauspost/compress/zstd. Building with cgo enabled and the
// gozstd tag switches to github.com/valyala/gozstd:
//
//	go build -tags gozstd ./...
//
// Both produce standard zstd frames and can read each other's output.
package compress
