// Package signature implements the bit-packed signature sets attached to
// unmapped access units.
//
// A signature is a short run of small-alphabet symbols (3 bits for the DNA
// alphabet, 5 bits otherwise). The symbols of each signature are packed into
// fixed-width integer words; a symbol never straddles two words, and every
// signature starts in a fresh word. When the number of signatures of an access
// unit differs from the dataset's multiple signature base, the set starts with
// an all-ones escape word followed by a 16-bit count.
package signature

import (
	"slices"
	"strconv"
	"strings"

	"github.com/arloliu/mgindex/internal/hash"
)

// SymbolGrowth is the number of symbol slots added each time a Signature outgrows its capacity.
const SymbolGrowth = 16

// Signature is a growable sequence of alphabet symbols.
type Signature struct {
	symbols []uint8
}

// New creates a signature holding a copy of symbols.
func New(symbols ...uint8) Signature {
	s := Signature{}
	if len(symbols) > 0 {
		s.symbols = make([]uint8, len(symbols), roundUpGrowth(len(symbols)))
		copy(s.symbols, symbols)
	}

	return s
}

// Append adds one symbol, growing the backing storage by SymbolGrowth slots when full.
func (s *Signature) Append(sym uint8) {
	if len(s.symbols) == cap(s.symbols) {
		s.symbols = slices.Grow(s.symbols, SymbolGrowth)
	}
	s.symbols = append(s.symbols, sym)
}

// Len returns the number of symbols.
func (s Signature) Len() int {
	return len(s.symbols)
}

// Cap returns the number of symbols the signature can hold before growing.
func (s Signature) Cap() int {
	return cap(s.symbols)
}

// At returns the i-th symbol.
func (s Signature) At(i int) uint8 {
	return s.symbols[i]
}

// Symbols returns a copy of the symbols.
func (s Signature) Symbols() []uint8 {
	return slices.Clone(s.symbols)
}

// Equal reports whether both signatures hold the same symbols.
func (s Signature) Equal(o Signature) bool {
	return slices.Equal(s.symbols, o.symbols)
}

// Fingerprint returns a 64-bit digest of the symbols.
func (s Signature) Fingerprint() uint64 {
	return hash.Symbols(s.symbols)
}

// Key returns the symbols as a string, usable as a map key.
func (s Signature) Key() string {
	return string(s.symbols)
}

func (s Signature) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, sym := range s.symbols {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(int(sym)))
	}
	sb.WriteByte(']')

	return sb.String()
}

func roundUpGrowth(n int) int {
	return (n + SymbolGrowth - 1) / SymbolGrowth * SymbolGrowth
}
