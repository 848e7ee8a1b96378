// Package mgindex builds, serializes and queries the master index table of a
// genomic dataset.
//
// The master index table records, for every access unit of a dataset, its
// genomic span and the byte offset of each of its descriptor blocks. Unmapped
// access units additionally carry a set of signatures that identify the reads
// they hold. The table is bit-packed: field widths follow the dataset layout.
//
// # Core Features
//
//   - Exact size computation before serialization
//   - Aligned, reference and non-aligned datasets, with or without block headers
//   - 32 or 64 bit byte offsets and 32 or 40 bit genomic positions
//   - Per descriptor offset trees answering "where does this block end"
//   - Signature lookup across unmapped access units
//   - Dataset container with per-block compression (None, Zstd, S2, LZ4)
//
// # Basic Usage
//
// Building and serializing a table:
//
//	layout := section.Layout{
//	    DatasetType: format.DatasetAligned,
//	    Classes:     []section.ClassSpec{{Type: format.ClassP, NumDescriptors: 2}},
//	    Sequences:   []section.SequenceSpec{{ID: 1, NumBlocks: 4}},
//	}
//	tbl, _ := mgindex.NewTable(layout)
//	tbl.SetStartAndEnd(0, 0, 0, 0, 9999)
//	tbl.SetOffset(0, 0, 0, 0, 1024)
//
//	var buf bytes.Buffer
//	_, _ = mgindex.WriteTable(&buf, tbl)
//
// Parsing it back:
//
//	tbl, offs, _ := mgindex.ParseTable(buf.Bytes(), layout)
//
// Writing and reading a complete dataset:
//
//	w, _ := mgindex.NewDatasetWriter(layout, dataset.WithCompression(format.CompressionS2))
//	_ = w.SetBlock(0, 0, 0, 0, payload)
//	_, _ = w.WriteTo(file)
//
//	rd, _ := mgindex.OpenDatasetBytes(data)
//	block, _ := rd.ReadBlock(0, 0, 0, 0)
//
// # Package Structure
//
// This package provides thin wrappers around the index and dataset packages.
// For fine-grained control, use those packages directly.
package mgindex

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/arloliu/mgindex/dataset"
	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/format"
	"github.com/arloliu/mgindex/index"
	"github.com/arloliu/mgindex/section"
	"github.com/arloliu/mgindex/signature"
)

const (
	dnaSymbols      = "ACGTN"
	extendedSymbols = "ACGTRYKMSWBDHVN-"
)

// NewTable creates an empty master index table for layout.
func NewTable(layout section.Layout, opts ...index.Option) (*index.Table, error) {
	return index.New(layout, opts...)
}

// WriteTable writes tbl as a complete dmit box and returns the number of bytes written.
func WriteTable(w io.Writer, tbl *index.Table) (int64, error) {
	return tbl.Write(w)
}

// ParseTable decodes a dmit box produced for layout.
func ParseTable(data []byte, layout section.Layout, opts ...index.Option) (*index.Table, *index.AUOffsets, error) {
	return index.Parse(bytes.NewReader(data), layout, opts...)
}

// NewDatasetWriter creates a dataset writer for layout.
func NewDatasetWriter(layout section.Layout, opts ...dataset.Option) (*dataset.Writer, error) {
	return dataset.NewWriter(layout, opts...)
}

// OpenDataset opens the dataset held in the first size bytes of r.
func OpenDataset(r io.ReaderAt, size int64, opts ...dataset.Option) (*dataset.Reader, error) {
	return dataset.NewReader(r, size, opts...)
}

// OpenDatasetBytes opens a dataset held in memory.
func OpenDatasetBytes(data []byte, opts ...dataset.Option) (*dataset.Reader, error) {
	return dataset.NewReader(bytes.NewReader(data), int64(len(data)), opts...)
}

// SignatureOf converts a base string into a signature over alphabet. The DNA
// alphabet maps ACGTN to 0..4; the extended alphabet maps the IUPAC codes
// ACGTRYKMSWBDHVN and the gap '-' to 0..15. Lower case bases are accepted.
func SignatureOf(bases string, alphabet format.Alphabet) (signature.Signature, error) {
	table := extendedSymbols
	if alphabet == format.AlphabetDNA {
		table = dnaSymbols
	}

	var sig signature.Signature
	for i := range len(bases) {
		c := bases[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		sym := strings.IndexByte(table, c)
		if sym < 0 {
			return signature.Signature{}, fmt.Errorf("%w: %q at %d for the %s alphabet", errs.ErrInvalidSymbol, bases[i], i, alphabet)
		}
		sig.Append(uint8(sym))
	}

	return sig, nil
}
