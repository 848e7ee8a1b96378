package signature

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/arloliu/mgindex/bitstream"
	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/format"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, c *Codec, coll *Collection) []byte {
	t.Helper()

	var buf bytes.Buffer
	err := bitstream.WithWriter(&buf, func(bw *bitstream.Writer) error {
		if err := c.Encode(bw, coll); err != nil {
			return err
		}

		bits, err := c.SizeBits(coll)
		require.NoError(t, err)
		require.Equal(t, bits, bw.BitsWritten(), "size prediction matches the encoder")

		return nil
	})
	require.NoError(t, err)

	return buf.Bytes()
}

func randomCollection(rng *rand.Rand, p Params, count int) *Collection {
	coll := NewCollection(count)
	maxSym := int(p.MaxSymbol())
	for range count {
		n := p.Length
		if !p.IsFixed() {
			n = rng.IntN(40)
		}
		var sig Signature
		for range n {
			sig.Append(uint8(rng.IntN(maxSym + 1)))
		}
		coll.Add(sig)
	}

	return coll
}

func TestCodec_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 9))

	sizes := []int{1, 2, 3, 4, 5, 7, 8, 13, 16, 32, 63, 64}
	lengths := []int{0, 1, 4, 21}
	alphabets := []format.Alphabet{format.AlphabetDNA, format.AlphabetExtended}

	for _, size := range sizes {
		for _, length := range lengths {
			for _, alphabet := range alphabets {
				p := Params{Size: size, Length: length, Base: 3, Alphabet: alphabet}
				name := fmt.Sprintf("size=%d length=%d alphabet=%s", size, length, alphabet)
				t.Run(name, func(t *testing.T) {
					c, err := NewCodec(p)
					require.NoError(t, err)

					for _, count := range []int{0, 1, 3, 7} {
						coll := randomCollection(rng, p, count)
						data := encode(t, c, coll)

						got, err := c.Decode(bitstream.NewBytesReader(data))
						require.NoError(t, err)
						require.Equal(t, count, got.Len())
						require.True(t, coll.Equal(got), "count %d: want %v", count, coll)
					}
				})
			}
		}
	}
}

func TestCodec_EscapeOnlyWhenCountDiffers(t *testing.T) {
	p := Params{Size: 8, Length: 2, Base: 2, Alphabet: format.AlphabetDNA}
	c, err := NewCodec(p)
	require.NoError(t, err)

	t.Run("Default count has no escape", func(t *testing.T) {
		coll := CollectionOf(New(1, 2), New(3, 4))
		data := encode(t, c, coll)
		// two words, each holding two 3-bit symbols right-aligned
		require.Equal(t, []byte{1<<3 | 2, 3<<3 | 4}, data)
	})

	t.Run("Different count is escaped", func(t *testing.T) {
		coll := CollectionOf(New(1, 2), New(3, 4), New(0, 0))
		data := encode(t, c, coll)
		require.Equal(t, []byte{0xFF, 0x00, 0x03, 1<<3 | 2, 3<<3 | 4, 0}, data)

		got, err := c.Decode(bitstream.NewBytesReader(data))
		require.NoError(t, err)
		require.True(t, coll.Equal(got))
	})

	t.Run("Empty collection", func(t *testing.T) {
		data := encode(t, c, NewCollection(0))
		require.Equal(t, []byte{0xFF, 0x00, 0x00}, data)

		got, err := c.Decode(bitstream.NewBytesReader(data))
		require.NoError(t, err)
		require.Zero(t, got.Len())
	})
}

func TestCodec_ForcedEscapeForAllOnesFirstWord(t *testing.T) {
	// Two 3-bit symbols fill a 6-bit word; 7,7 is all ones.
	p := Params{Size: 6, Length: 2, Base: 1, Alphabet: format.AlphabetDNA}
	c, err := NewCodec(p)
	require.NoError(t, err)

	coll := CollectionOf(New(7, 7))
	bits, err := c.SizeBits(coll)
	require.NoError(t, err)
	require.Equal(t, uint64(6+16+6), bits)

	data := encode(t, c, coll)
	got, err := c.Decode(bitstream.NewBytesReader(data))
	require.NoError(t, err)
	require.True(t, coll.Equal(got))
}

func TestCodec_VariableLengthPadding(t *testing.T) {
	// 8-bit words hold two 3-bit slots; the two top bits stay unused.
	p := Params{Size: 8, Length: 0, Base: 1, Alphabet: format.AlphabetDNA}
	c, err := NewCodec(p)
	require.NoError(t, err)

	coll := CollectionOf(New(0, 1, 2))
	data := encode(t, c, coll)
	// values 1,2 | 3,terminator
	require.Equal(t, []byte{0xC0 | 1<<3 | 2, 0xC0 | 3<<3 | 0}, data)

	coll = CollectionOf(New(4))
	data = encode(t, c, coll)
	// value 5 then terminator fill exactly one word
	require.Equal(t, []byte{0xC0 | 5<<3 | 0}, data)

	coll = CollectionOf(New())
	data = encode(t, c, coll)
	// lone terminator with an all-ones padding slot in front
	require.Equal(t, []byte{0xFF &^ 0x07}, data)

	got, err := c.Decode(bitstream.NewBytesReader(data))
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	sig, ok := got.At(0)
	require.True(t, ok)
	require.Zero(t, sig.Len())
}

func TestCodec_SymbolsWiderThanWords(t *testing.T) {
	// 5-bit symbols split over 2-bit words: three words per symbol.
	p := Params{Size: 2, Length: 2, Base: 1, Alphabet: format.AlphabetExtended}
	c, err := NewCodec(p)
	require.NoError(t, err)

	coll := CollectionOf(New(0b10110, 0b00011))
	bits, err := c.SizeBits(coll)
	require.NoError(t, err)
	require.Equal(t, uint64(12), bits)

	data := encode(t, c, coll)
	// 10110 -> 10 11 00, 00011 -> 00 01 01: full chunks first, low bit last
	require.Equal(t, []byte{0b1011_0000, 0b0101_0000}, data)

	got, err := c.Decode(bitstream.NewBytesReader(data))
	require.NoError(t, err)
	require.True(t, coll.Equal(got))
}

func TestCodec_SplitSymbolGoldenBytes(t *testing.T) {
	t.Run("Fixed pads the last word with zeros", func(t *testing.T) {
		c, err := NewCodec(Params{Size: 2, Length: 1, Base: 1, Alphabet: format.AlphabetDNA})
		require.NoError(t, err)

		coll := CollectionOf(New(0b101))
		data := encode(t, c, coll)
		// 101 -> 10, then 0 padding and the low bit: 01
		require.Equal(t, []byte{0b1001_0000}, data)

		got, err := c.Decode(bitstream.NewBytesReader(data))
		require.NoError(t, err)
		require.True(t, coll.Equal(got))
	})

	t.Run("Variable pads the last word with ones", func(t *testing.T) {
		c, err := NewCodec(Params{Size: 2, Length: 0, Base: 1, Alphabet: format.AlphabetDNA})
		require.NoError(t, err)

		coll := CollectionOf(New(2))
		data := encode(t, c, coll)
		// value 3 = 011 -> 01 11, terminator 000 -> 00 10
		require.Equal(t, []byte{0b0111_0010}, data)

		got, err := c.Decode(bitstream.NewBytesReader(data))
		require.NoError(t, err)
		require.True(t, coll.Equal(got))
	})
}

func TestCodec_ValidationBeforeWriting(t *testing.T) {
	fixed, err := NewCodec(Params{Size: 16, Length: 3, Base: 2, Alphabet: format.AlphabetDNA})
	require.NoError(t, err)
	variable, err := NewCodec(Params{Size: 16, Length: 0, Base: 2, Alphabet: format.AlphabetDNA})
	require.NoError(t, err)

	tests := []struct {
		name  string
		codec *Codec
		coll  *Collection
		err   error
	}{
		{"Partially populated", fixed, func() *Collection {
			c := NewCollection(2)
			c.Add(New(1, 2, 3))
			return c
		}(), errs.ErrSignatureCountMismatch},
		{"Wrong fixed length", fixed, CollectionOf(New(1, 2, 3), New(1, 2)), errs.ErrSignatureLengthMismatch},
		{"Symbol too large for fixed", fixed, CollectionOf(New(1, 2, 8), New(1, 2, 3)), errs.ErrInvalidSymbol},
		{"Symbol reserved for padding", variable, CollectionOf(New(6), New(1)), errs.ErrInvalidSymbol},
		{"Too many escaped signatures", variable, func() *Collection {
			c := NewCollection(MaxEscapedCount + 1)
			for c.Add(New()) {
			}
			return c
		}(), errs.ErrTooManySignatures},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			bw := bitstream.NewWriter(&buf)
			err := tt.codec.Encode(bw, tt.coll)
			require.ErrorIs(t, err, tt.err)
			require.Zero(t, bw.BitsWritten())

			_, err = tt.codec.SizeBits(tt.coll)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCodec_Disabled(t *testing.T) {
	c, err := NewCodec(Params{})
	require.NoError(t, err)

	var buf bytes.Buffer
	bw := bitstream.NewWriter(&buf)
	require.NoError(t, c.Encode(bw, CollectionOf(New(1))))
	require.Zero(t, bw.BitsWritten())

	coll, err := c.Decode(bitstream.NewBytesReader(nil))
	require.NoError(t, err)
	require.Zero(t, coll.Cap())
}

func TestCodec_ShortRead(t *testing.T) {
	c, err := NewCodec(Params{Size: 8, Length: 4, Base: 2, Alphabet: format.AlphabetDNA})
	require.NoError(t, err)

	data := encode(t, c, CollectionOf(New(1, 2, 3, 4), New(4, 3, 2, 1)))
	_, err = c.Decode(bitstream.NewBytesReader(data[:len(data)-1]))
	require.ErrorIs(t, err, errs.ErrShortRead)
}

func TestParams_Validate(t *testing.T) {
	require.NoError(t, Params{}.Validate())
	require.NoError(t, Params{Size: 64, Length: 255, Base: 1}.Validate())
	require.ErrorIs(t, Params{Size: 0, Base: 1}.Validate(), errs.ErrInvalidSignatureParams)
	require.ErrorIs(t, Params{Size: 65, Base: 1}.Validate(), errs.ErrInvalidSignatureParams)
	require.ErrorIs(t, Params{Size: 8, Length: 256, Base: 1}.Validate(), errs.ErrInvalidSignatureParams)
	require.ErrorIs(t, Params{Base: -1}.Validate(), errs.ErrInvalidSignatureParams)

	_, err := NewCodec(Params{Size: 0, Base: 1})
	require.ErrorIs(t, err, errs.ErrInvalidSignatureParams)
}

func TestParams_MaxSymbol(t *testing.T) {
	require.Equal(t, uint8(7), Params{Size: 8, Length: 4, Alphabet: format.AlphabetDNA}.MaxSymbol())
	require.Equal(t, uint8(5), Params{Size: 8, Length: 0, Alphabet: format.AlphabetDNA}.MaxSymbol())
	require.Equal(t, uint8(6), Params{Size: 2, Length: 0, Alphabet: format.AlphabetDNA}.MaxSymbol())
	require.Equal(t, uint8(29), Params{Size: 64, Length: 0, Alphabet: format.AlphabetExtended}.MaxSymbol())
}

func TestCodec_ShortReadWithLargeBase(t *testing.T) {
	c, err := NewCodec(Params{Size: 8, Length: 1, Base: MaxBase, Alphabet: format.AlphabetDNA})
	require.NoError(t, err)

	_, err = c.Decode(bitstream.NewBytesReader([]byte{0x01, 0x02}))
	require.ErrorIs(t, err, errs.ErrShortRead)
}
