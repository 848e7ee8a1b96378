// Package format defines the small enumerations shared by the index engine,
// the dataset header and the block payload codecs.
package format

type (
	DatasetType     uint8
	ClassType       uint8
	Alphabet        uint8
	CompressionType uint8
)

const (
	DatasetNonAligned DatasetType = 0x0 // DatasetNonAligned holds unmapped reads only.
	DatasetAligned    DatasetType = 0x1 // DatasetAligned holds reads aligned to reference sequences.
	DatasetReference  DatasetType = 0x2 // DatasetReference holds reference sequences compressed as reads.

	ClassP  ClassType = 0x1 // ClassP is aligned reads perfectly matching the reference.
	ClassN  ClassType = 0x2 // ClassN is aligned reads with unknown bases only.
	ClassM  ClassType = 0x3 // ClassM is aligned reads with substitutions.
	ClassI  ClassType = 0x4 // ClassI is aligned reads with insertions, deletions or clipping.
	ClassHM ClassType = 0x5 // ClassHM is half-mapped read pairs.
	ClassU  ClassType = 0x6 // ClassU is unmapped reads.

	AlphabetDNA      Alphabet = 0x0 // AlphabetDNA is the {A,C,G,T,N} alphabet, 3-bit symbols.
	AlphabetExtended Alphabet = 0x1 // AlphabetExtended is the IUPAC alphabet, 5-bit symbols.

	CompressionNone CompressionType = 0x1 // CompressionNone stores block payloads as-is.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (d DatasetType) String() string {
	switch d {
	case DatasetNonAligned:
		return "NonAligned"
	case DatasetAligned:
		return "Aligned"
	case DatasetReference:
		return "Reference"
	default:
		return "Unknown"
	}
}

// IsValid reports whether d is one of the defined dataset types.
func (d DatasetType) IsValid() bool {
	return d <= DatasetReference
}

func (c ClassType) String() string {
	switch c {
	case ClassP:
		return "P"
	case ClassN:
		return "N"
	case ClassM:
		return "M"
	case ClassI:
		return "I"
	case ClassHM:
		return "HM"
	case ClassU:
		return "U"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c is one of the six defined classes.
func (c ClassType) IsValid() bool {
	return c >= ClassP && c <= ClassU
}

// SymbolBits returns the width of one signature symbol: 3 bits for the DNA
// alphabet and 5 bits for every other alphabet.
func (a Alphabet) SymbolBits() int {
	if a == AlphabetDNA {
		return 3
	}

	return 5
}

func (a Alphabet) String() string {
	switch a {
	case AlphabetDNA:
		return "DNA"
	case AlphabetExtended:
		return "Extended"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c is one of the defined compression types.
func (c CompressionType) IsValid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
