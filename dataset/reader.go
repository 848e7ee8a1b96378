package dataset

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"github.com/arloliu/mgindex/endian"
	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/format"
	"github.com/arloliu/mgindex/index"
	"github.com/arloliu/mgindex/internal/options"
	"github.com/arloliu/mgindex/internal/pool"
	"github.com/arloliu/mgindex/offsettree"
	"github.com/arloliu/mgindex/section"
	"github.com/arloliu/mgindex/signature"
)

// Reader decodes single blocks of a dataset. It is not safe for concurrent use.
type Reader struct {
	r      io.ReaderAt
	size   uint64
	header *section.DatasetHeader
	table  *index.Table
	offs   *index.AUOffsets
	engine endian.EndianEngine
	logger *slog.Logger

	payloadStart uint64
	// boundaries holds every block offset plus the end of the dataset. It
	// resolves the end of the last block of a descriptor stream, whose closing
	// offset is not stored in the table. Nil with block headers.
	boundaries *offsettree.Tree
}

// NewReader opens the dataset held in the first size bytes of r.
func NewReader(r io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: negative dataset size %d", errs.ErrInvalidHeader, size)
	}

	br := bufio.NewReader(io.NewSectionReader(r, 0, size))
	header, err := section.ReadDatasetHeader(br)
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	table, offs, err := index.Parse(br, header.Layout, index.WithLogger(cfg.logger))
	if err != nil {
		return nil, fmt.Errorf("read master index table: %w", err)
	}
	tableSize, err := table.Size()
	if err != nil {
		return nil, err
	}

	rd := &Reader{
		r:            r,
		size:         uint64(size),
		header:       header,
		table:        table,
		offs:         offs,
		engine:       endian.GetBigEndianEngine(),
		logger:       cfg.logger,
		payloadStart: uint64(header.BoxSize()) + tableSize,
	}
	if !header.Layout.BlockHeader {
		rd.boundaries = rd.collectBoundaries()
	}

	return rd, nil
}

func (rd *Reader) collectBoundaries() *offsettree.Tree {
	l := &rd.header.Layout
	tree := offsettree.New()
	tree.Insert(rd.size)

	for si := range l.Sequences {
		for ci := range l.Classes {
			for au := range l.NumBlocks(si) {
				for d := range l.NumDescriptors(ci) {
					if off, ok := rd.table.BlockByteOffset(si, ci, au, d); ok {
						tree.Insert(off)
					}
				}
			}
		}
	}
	for uau := range rd.table.NumUnalignedAUs() {
		for d := range l.NumUnmappedDescriptors() {
			if off, ok := rd.table.UnalignedDescriptorOffset(uau, d); ok {
				tree.Insert(off)
			}
		}
	}

	return tree
}

// Header returns the dataset header.
func (rd *Reader) Header() section.DatasetHeader {
	return *rd.header
}

// Table returns the parsed master index table.
func (rd *Reader) Table() *index.Table {
	return rd.table
}

// AUOffsets returns the access unit offsets recovered while parsing the table.
func (rd *Reader) AUOffsets() *index.AUOffsets {
	return rd.offs
}

// FindUnalignedAUs returns the unmapped access units carrying sig.
func (rd *Reader) FindUnalignedAUs(sig signature.Signature) []int {
	return rd.table.FindUnalignedAUs(sig)
}

// Verify checks the consistency of the table's offset trees.
func (rd *Reader) Verify() error {
	return rd.table.Verify()
}

// ReadBlock returns the payload of descriptor desc of aligned access unit (seq, class, au).
func (rd *Reader) ReadBlock(seq, class, au, desc int) ([]byte, error) {
	l := &rd.header.Layout
	if !alignedSlot(l, seq, class, au, desc) {
		return nil, fmt.Errorf("%w: block %d/%d/%d/%d", errs.ErrIndexOutOfRange, seq, class, au, desc)
	}

	if l.BlockHeader {
		auOffset, _ := rd.table.AccessUnitByteOffset(seq, class, au)
		return rd.readFromAccessUnit(auOffset, auOffset+auHeaderSize, desc)
	}

	start, _ := rd.table.BlockByteOffset(seq, class, au, desc)
	end, ok := rd.table.NextBlockByteOffset(seq, class, au, desc)

	return rd.readStreamBlock(start, end, ok)
}

// ReadSequenceBlock is ReadBlock addressed by sequence id and class type.
func (rd *Reader) ReadSequenceBlock(seqID uint16, class format.ClassType, au, desc int) ([]byte, error) {
	seq, ci, err := resolve(&rd.header.Layout, seqID, class)
	if err != nil {
		return nil, err
	}

	return rd.ReadBlock(seq, ci, au, desc)
}

// ReadUnalignedBlock returns the payload of descriptor desc of unmapped access unit uau.
func (rd *Reader) ReadUnalignedBlock(uau, desc int) ([]byte, error) {
	l := &rd.header.Layout
	if uau < 0 || uau >= rd.table.NumUnalignedAUs() || desc < 0 || desc >= l.NumUnmappedDescriptors() {
		return nil, fmt.Errorf("%w: unaligned block %d/%d", errs.ErrIndexOutOfRange, uau, desc)
	}

	if l.BlockHeader {
		auOffset, _ := rd.table.UnalignedAUByteOffset(uau)
		first, _ := rd.table.UnalignedBlockOffset(uau)

		return rd.readFromAccessUnit(auOffset, first, desc)
	}

	start, _ := rd.table.UnalignedDescriptorOffset(uau, desc)
	end, ok := rd.table.NextUnalignedBlockByteOffset(uau, desc)

	return rd.readStreamBlock(start, end, ok)
}

func (rd *Reader) readStreamBlock(start, end uint64, ok bool) ([]byte, error) {
	if !ok {
		end, ok = rd.boundaries.Successor(start)
		if !ok {
			return nil, fmt.Errorf("%w: no boundary after offset %d", errs.ErrBlockNotFound, start)
		}
		rd.logger.Debug("block end resolved from dataset boundaries",
			slog.Uint64("start", start), slog.Uint64("end", end))
	}

	return rd.readBlockRange(start, end)
}

// readFromAccessUnit walks the block headers of the access unit at auOffset,
// starting at the block header at first, and decodes the block of desc.
func (rd *Reader) readFromAccessUnit(auOffset, first uint64, desc int) ([]byte, error) {
	hdr, err := rd.readRaw(auOffset, auHeaderSize)
	if err != nil {
		return nil, err
	}
	count := int(hdr[0])
	limit := auOffset + auHeaderSize + endian.Uint40(hdr[1:])
	if limit > rd.size || first < auOffset+auHeaderSize {
		return nil, fmt.Errorf("%w: access unit at %d exceeds the dataset", errs.ErrInvalidBlock, auOffset)
	}

	pos := first
	for range count {
		bh, err := rd.readRaw(pos, blockHeaderSize)
		if err != nil {
			return nil, err
		}
		id, n := int(bh[0]), uint64(rd.engine.Uint32(bh[1:]))
		pos += blockHeaderSize
		if pos+n > limit {
			return nil, fmt.Errorf("%w: block at %d overruns its access unit", errs.ErrInvalidBlock, pos)
		}
		if id == desc {
			return rd.readBlockRange(pos, pos+n)
		}
		pos += n
	}

	return nil, fmt.Errorf("%w: descriptor %d in access unit at %d", errs.ErrBlockNotFound, desc, auOffset)
}

func (rd *Reader) readBlockRange(start, end uint64) ([]byte, error) {
	if start < rd.payloadStart || end <= start || end > rd.size {
		return nil, fmt.Errorf("%w: range [%d, %d) outside payload [%d, %d)",
			errs.ErrInvalidBlock, start, end, rd.payloadStart, rd.size)
	}

	buf := pool.GetBlockBuffer()
	defer pool.PutBlockBuffer(buf)

	buf.Resize(int(end - start))
	if err := rd.readAt(buf.Bytes(), start); err != nil {
		return nil, err
	}

	return decodeBlock(buf.Bytes())
}

func (rd *Reader) readRaw(off uint64, n int) ([]byte, error) {
	if off+uint64(n) > rd.size {
		return nil, fmt.Errorf("%w: %d bytes at %d", errs.ErrShortRead, n, off)
	}
	p := make([]byte, n)
	if err := rd.readAt(p, off); err != nil {
		return nil, err
	}

	return p, nil
}

func (rd *Reader) readAt(p []byte, off uint64) error {
	n, err := rd.r.ReadAt(p, int64(off))
	if n == len(p) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}

	return fmt.Errorf("%w: %d bytes at %d: %w", errs.ErrShortRead, len(p), off, err)
}
