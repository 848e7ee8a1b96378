package signature

import (
	"fmt"

	"github.com/arloliu/mgindex/bitstream"
	"github.com/arloliu/mgindex/errs"
)

// Codec encodes and decodes signature collections for one set of Params.
//
// Every signature starts in a fresh Size-bit word. When a symbol fits a word
// (symbol width ≤ Size), words hold Size/width symbols right-aligned, the first
// symbol most significant; leftover high bits are never used. Otherwise each
// symbol spans ceil(width/Size) words: full Size-bit chunks of its high bits
// first, then the remaining low bits right-aligned in a last word.
//
// Variable length signatures store symbol+1 and end with a 0 value. Their words
// start as all ones, so slots that stay unused before the first value read back
// as the all-ones padding value and are skipped. The unused high bits of a last
// partial word are ones as well; fixed length signatures pad with zeros.
//
// The encoder writes an escape (Size one-bits, then a 16-bit count) whenever the
// collection size differs from Base, and also when the first data word happens
// to be all ones, which would otherwise read back as an escape.
type Codec struct {
	params   Params
	symBits  int
	perWord  int    // symbols per word when symBits <= Size
	wordMask uint64 // Size one-bits
	symMask  uint64
}

// NewCodec validates p and returns a codec for it.
func NewCodec(p Params) (*Codec, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	c := &Codec{params: p, symBits: p.SymbolBits()}
	c.symMask = lowMask(c.symBits)
	if p.Enabled() {
		c.wordMask = lowMask(p.Size)
		if c.symBits <= p.Size {
			c.perWord = p.Size / c.symBits
		}
	}

	return c, nil
}

// Params returns the codec parameters.
func (c *Codec) Params() Params {
	return c.params
}

// SizeBits returns the exact number of bits Encode writes for coll.
func (c *Codec) SizeBits(coll *Collection) (uint64, error) {
	if !c.params.Enabled() {
		return 0, nil
	}

	words, escape, err := c.encodeWords(coll)
	if err != nil {
		return 0, err
	}

	bits := uint64(len(words)) * uint64(c.params.Size)
	if escape {
		bits += uint64(c.params.Size) + escapeCountBits
	}

	return bits, nil
}

// Encode writes coll to bw. Every check runs before the first bit is written,
// so a failed Encode leaves bw untouched.
func (c *Codec) Encode(bw *bitstream.Writer, coll *Collection) error {
	if !c.params.Enabled() {
		return nil
	}

	words, escape, err := c.encodeWords(coll)
	if err != nil {
		return err
	}

	if escape {
		bw.WriteBits(c.params.Size, c.wordMask)
		bw.WriteBits(escapeCountBits, uint64(coll.Len()))
	}
	for _, w := range words {
		bw.WriteBits(c.params.Size, w)
	}

	return bw.Err()
}

// Decode reads one signature collection from br.
func (c *Codec) Decode(br *bitstream.Reader) (*Collection, error) {
	if !c.params.Enabled() {
		return NewCollection(0), nil
	}

	first, err := br.ReadBits(c.params.Size)
	if err != nil {
		return nil, err
	}

	count := c.params.Base
	pending, hasPending := first, true
	if first == c.wordMask {
		n, err := br.ReadBits(escapeCountBits)
		if err != nil {
			return nil, err
		}
		count = int(n)
		hasPending = false
	}

	next := func() (uint64, error) {
		if hasPending {
			hasPending = false
			return pending, nil
		}

		return br.ReadBits(c.params.Size)
	}

	coll := NewCollection(count)
	for range count {
		sig, err := c.decodeSignature(next)
		if err != nil {
			return nil, err
		}
		coll.Add(sig)
	}

	return coll, nil
}

func (c *Codec) encodeWords(coll *Collection) ([]uint64, bool, error) {
	if coll == nil {
		coll = NewCollection(0)
	}
	if coll.Len() != coll.Cap() {
		return nil, false, fmt.Errorf("%w: %d of %d populated", errs.ErrSignatureCountMismatch, coll.Len(), coll.Cap())
	}

	count := coll.Len()
	escape := count != c.params.Base
	if escape && count > MaxEscapedCount {
		return nil, false, fmt.Errorf("%w: %d", errs.ErrTooManySignatures, count)
	}

	maxSym := c.params.MaxSymbol()
	var words []uint64
	for i, sig := range coll.All() {
		if c.params.IsFixed() && sig.Len() != c.params.Length {
			return nil, false, fmt.Errorf("%w: signature %d has %d symbols, want %d",
				errs.ErrSignatureLengthMismatch, i, sig.Len(), c.params.Length)
		}
		for _, sym := range sig.symbols {
			if sym > maxSym {
				return nil, false, fmt.Errorf("%w: symbol %d in signature %d exceeds %d", errs.ErrInvalidSymbol, sym, i, maxSym)
			}
		}
		words = c.appendSignature(words, sig)
	}

	if len(words) > 0 && words[0] == c.wordMask {
		if count > MaxEscapedCount {
			return nil, false, fmt.Errorf("%w: %d", errs.ErrTooManySignatures, count)
		}
		escape = true
	}

	return words, escape, nil
}

func (c *Codec) appendSignature(words []uint64, sig Signature) []uint64 {
	b := c.symBits
	syms := sig.symbols

	if c.perWord > 0 {
		if c.params.IsFixed() {
			for i := 0; i < len(syms); i += c.perWord {
				var w uint64
				for _, s := range syms[i:min(i+c.perWord, len(syms))] {
					w = w<<b | uint64(s)
				}
				words = append(words, w)
			}

			return words
		}

		w, filled := c.wordMask, 0
		push := func(v uint64) {
			w = (w<<b | v) & c.wordMask
			filled++
			if filled == c.perWord {
				words = append(words, w)
				w, filled = c.wordMask, 0
			}
		}
		for _, s := range syms {
			push(uint64(s) + 1)
		}
		push(0)
		if filled > 0 {
			words = append(words, w)
		}

		return words
	}

	size := c.params.Size
	full, rem := b/size, b%size
	var pad uint64
	if !c.params.IsFixed() {
		pad = c.wordMask &^ lowMask(rem)
	}
	put := func(v uint64) {
		for j := 1; j <= full; j++ {
			words = append(words, (v>>(b-j*size))&c.wordMask)
		}
		if rem > 0 {
			words = append(words, pad|v&lowMask(rem))
		}
	}
	if c.params.IsFixed() {
		for _, s := range syms {
			put(uint64(s))
		}

		return words
	}
	for _, s := range syms {
		put(uint64(s) + 1)
	}
	put(0)

	return words
}

func (c *Codec) decodeSignature(next func() (uint64, error)) (Signature, error) {
	var sig Signature
	b := c.symBits

	if c.perWord > 0 {
		if c.params.IsFixed() {
			for i := 0; i < c.params.Length; i += c.perWord {
				w, err := next()
				if err != nil {
					return Signature{}, err
				}
				cnt := min(c.perWord, c.params.Length-i)
				for j := cnt - 1; j >= 0; j-- {
					sig.Append(uint8((w >> (j * b)) & c.symMask))
				}
			}

			return sig, nil
		}

		for {
			w, err := next()
			if err != nil {
				return Signature{}, err
			}
			for j := c.perWord - 1; j >= 0; j-- {
				v := (w >> (j * b)) & c.symMask
				switch v {
				case c.symMask:
					continue
				case 0:
					return sig, nil
				default:
					sig.Append(uint8(v - 1))
				}
			}
		}
	}

	size := c.params.Size
	full, rem := b/size, b%size
	get := func() (uint64, error) {
		var v uint64
		for range full {
			w, err := next()
			if err != nil {
				return 0, err
			}
			v = v<<size | w
		}
		if rem > 0 {
			w, err := next()
			if err != nil {
				return 0, err
			}
			v = v<<rem | w&lowMask(rem)
		}

		return v & c.symMask, nil
	}

	if c.params.IsFixed() {
		for range c.params.Length {
			v, err := get()
			if err != nil {
				return Signature{}, err
			}
			sig.Append(uint8(v))
		}

		return sig, nil
	}

	for {
		v, err := get()
		if err != nil {
			return Signature{}, err
		}
		if v == 0 {
			return sig, nil
		}
		sig.Append(uint8(v - 1))
	}
}

func lowMask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << n) - 1
}
