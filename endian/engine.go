// Package endian provides the byte order engines used by the box serializers.
//
// Every multi-byte field of the container (box sizes, dataset header fields,
// per-block headers) is big-endian on the wire. The bit stream packages work
// on values already in native form, so this package is only needed where
// whole bytes are laid out directly.
//
//	engine := endian.GetBigEndianEngine()
//	buf = engine.AppendUint64(buf, boxSize)
package endian

import "encoding/binary"

// EndianEngine combines binary.ByteOrder and binary.AppendByteOrder so that one
// value can both decode fixed fields and append new ones.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetBigEndianEngine returns the engine used for every on-disk field.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// PutUint40 stores the low 40 bits of v into b[0:5], most significant byte first.
func PutUint40(b []byte, v uint64) {
	_ = b[4]
	b[0] = byte(v >> 32)
	b[1] = byte(v >> 24)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 8)
	b[4] = byte(v)
}

// Uint40 decodes a 40-bit big-endian value from b[0:5].
func Uint40(b []byte) uint64 {
	_ = b[4]
	return uint64(b[0])<<32 | uint64(b[1])<<24 | uint64(b[2])<<16 | uint64(b[3])<<8 | uint64(b[4])
}

// AppendUint40 appends the 40-bit big-endian form of v to b.
func AppendUint40(b []byte, v uint64) []byte {
	b = append(b, 0, 0, 0, 0, 0)
	PutUint40(b[len(b)-5:], v)

	return b
}
