package signature

import (
	"fmt"

	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/format"
)

const (
	// MaxLength is the largest fixed signature length the dataset header can express.
	MaxLength = 0xFF
	// MaxBase is the largest multiple signature base.
	MaxBase = 0x7FFFFFFF
	// MaxEscapedCount is the largest signature count that fits the escape count field.
	MaxEscapedCount = 0xFFFF
	// escapeCountBits is the width of the count following an escape word.
	escapeCountBits = 16
)

// Params are the dataset-wide signature settings.
type Params struct {
	// Size is the width in bits of one integer word, 1 to 64.
	Size int
	// Length is the number of symbols of every signature; 0 selects variable
	// length signatures closed by a terminator.
	Length int
	// Base is the default number of signatures per access unit. 0 means the
	// dataset stores no signatures.
	Base int
	// Alphabet selects the symbol width.
	Alphabet format.Alphabet
}

// Validate checks the parameters. A zero Base is valid and disables signatures.
func (p Params) Validate() error {
	if p.Base < 0 || p.Base > MaxBase {
		return fmt.Errorf("%w: base %d outside [0, %d]", errs.ErrInvalidSignatureParams, p.Base, MaxBase)
	}
	if p.Base == 0 {
		return nil
	}
	if p.Size < 1 || p.Size > 64 {
		return fmt.Errorf("%w: integer size %d outside [1, 64]", errs.ErrInvalidSignatureParams, p.Size)
	}
	if p.Length < 0 || p.Length > MaxLength {
		return fmt.Errorf("%w: length %d outside [0, %d]", errs.ErrInvalidSignatureParams, p.Length, MaxLength)
	}

	return nil
}

// Enabled reports whether access units carry a signature block.
func (p Params) Enabled() bool {
	return p.Base != 0
}

// MinSetBits returns the shortest encoding of one signature set: Base
// signatures of at least one word each, or an escape word with a zero count.
func (p Params) MinSetBits() uint64 {
	if !p.Enabled() {
		return 0
	}
	size := uint64(p.Size)

	return min(uint64(p.Base)*size, size+escapeCountBits)
}

// IsFixed reports whether every signature has exactly Length symbols.
func (p Params) IsFixed() bool {
	return p.Length > 0
}

// SymbolBits returns the width of one symbol.
func (p Params) SymbolBits() int {
	return p.Alphabet.SymbolBits()
}

// MaxSymbol returns the largest symbol value the codec can carry with these
// parameters. Variable length signatures reserve 0 as the terminator, and
// when several symbols share a word the all-ones value marks unused slots.
func (p Params) MaxSymbol() uint8 {
	b := p.SymbolBits()
	limit := uint8(1<<b) - 1
	switch {
	case p.IsFixed():
		return limit
	case b <= p.Size:
		return limit - 2
	default:
		return limit - 1
	}
}
