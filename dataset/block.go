package dataset

import (
	"bytes"
	"fmt"
	"math"

	"github.com/arloliu/mgindex/compress"
	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/format"
	"github.com/arloliu/mgindex/section"
)

const (
	blockTagSize    = 1
	blockHeaderSize = 1 + 4 // descriptor id, block size
	auHeaderSize    = 1 + 5 // block count, content size

	maxAUContentSize = 1<<40 - 1
)

// emptyBlock is stored for blocks that were never set.
var emptyBlock = []byte{byte(format.CompressionNone)}

// encodeBlock compresses payload with codec and prefixes the tag. It reports
// whether the block fell back to raw storage.
func encodeBlock(codec compress.Codec, payload []byte) ([]byte, bool, error) {
	packed, err := codec.Compress(payload)
	if err != nil {
		return nil, false, fmt.Errorf("compress block: %w", err)
	}

	tag, raw := codec.Type(), false
	if len(packed) == 0 || len(packed) >= len(payload) {
		packed, tag = payload, format.CompressionNone
		raw = codec.Type() != format.CompressionNone && len(payload) > 0
	}

	blk := make([]byte, 0, blockTagSize+len(packed))
	blk = append(blk, byte(tag))
	blk = append(blk, packed...)

	return blk, raw, nil
}

// decodeBlock restores the payload of a tagged block. The result never
// aliases data.
func decodeBlock(data []byte) ([]byte, error) {
	if len(data) < blockTagSize {
		return nil, fmt.Errorf("%w: missing tag", errs.ErrInvalidBlock)
	}

	tag := format.CompressionType(data[0])
	codec, err := compress.GetCodec(tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidBlock, err)
	}

	payload := data[blockTagSize:]
	if len(payload) == 0 {
		return nil, nil
	}
	if tag == format.CompressionNone {
		return bytes.Clone(payload), nil
	}

	out, err := codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidBlock, err)
	}

	return out, nil
}

// checkBlockSize rejects blocks that do not fit the u32 size of a block header.
func checkBlockSize(l *section.Layout, blk []byte) error {
	if l.BlockHeader && uint64(len(blk)) > math.MaxUint32 {
		return fmt.Errorf("%w: block of %d bytes", errs.ErrValueOverflow, len(blk))
	}

	return nil
}
