// Package hash computes the xxHash64 fingerprints of signature symbols.
package hash

import "github.com/cespare/xxhash/v2"

// Symbols fingerprints a symbol sequence. The length is mixed in first so that
// sequences differing only by trailing zero symbols hash differently.
func Symbols(symbols []uint8) uint64 {
	d := xxhash.New()
	var n [4]byte
	l := len(symbols)
	n[0], n[1], n[2], n[3] = byte(l>>24), byte(l>>16), byte(l>>8), byte(l)
	_, _ = d.Write(n[:])
	_, _ = d.Write(symbols)

	return d.Sum64()
}
