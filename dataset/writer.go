package dataset

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/arloliu/mgindex/compress"
	"github.com/arloliu/mgindex/endian"
	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/format"
	"github.com/arloliu/mgindex/index"
	"github.com/arloliu/mgindex/internal/options"
	"github.com/arloliu/mgindex/internal/pool"
	"github.com/arloliu/mgindex/section"
	"github.com/arloliu/mgindex/signature"
)

type blockKey struct {
	seq, class, au, desc int
}

type unalignedKey struct {
	uau, desc int
}

// Writer assembles a dataset. Blocks are compressed as they are added; byte
// offsets are assigned and recorded in the index table by WriteTo.
//
// Positions, reference spans and other per access unit fields are recorded
// directly on Table. Writer is not safe for concurrent use.
type Writer struct {
	layout section.Layout
	table  *index.Table
	codec  compress.Codec
	engine endian.EndianEngine
	logger *slog.Logger

	aligned   map[blockKey][]byte
	unaligned map[unalignedKey][]byte
	stats     compress.CompressionStats
	written   bool
}

// NewWriter creates a Writer for layout.
func NewWriter(layout section.Layout, opts ...Option) (*Writer, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	table, err := index.New(layout, index.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}
	codec, err := compress.CreateCodec(cfg.compression, "block")
	if err != nil {
		return nil, err
	}

	return &Writer{
		layout:    table.Layout(),
		table:     table,
		codec:     codec,
		engine:    endian.GetBigEndianEngine(),
		logger:    cfg.logger,
		aligned:   make(map[blockKey][]byte),
		unaligned: make(map[unalignedKey][]byte),
		stats:     compress.CompressionStats{Algorithm: codec.Type()},
	}, nil
}

// Table returns the index table the dataset is built around.
func (w *Writer) Table() *index.Table {
	return w.table
}

// Stats returns the compression statistics of the blocks added so far.
func (w *Writer) Stats() compress.CompressionStats {
	return w.stats
}

// SetBlock stores the payload of descriptor desc of aligned access unit (seq, class, au).
func (w *Writer) SetBlock(seq, class, au, desc int, payload []byte) error {
	if w.written {
		return errs.ErrDatasetWritten
	}
	if !alignedSlot(&w.layout, seq, class, au, desc) {
		return fmt.Errorf("%w: block %d/%d/%d/%d", errs.ErrIndexOutOfRange, seq, class, au, desc)
	}

	key := blockKey{seq: seq, class: class, au: au, desc: desc}
	if _, dup := w.aligned[key]; dup {
		return fmt.Errorf("%w: block %d/%d/%d/%d", errs.ErrBlockAlreadySet, seq, class, au, desc)
	}

	blk, err := w.encode(payload)
	if err != nil {
		return err
	}
	w.aligned[key] = blk

	return nil
}

// SetSequenceBlock is SetBlock addressed by sequence id and class type.
func (w *Writer) SetSequenceBlock(seqID uint16, class format.ClassType, au, desc int, payload []byte) error {
	seq, ci, err := resolve(&w.layout, seqID, class)
	if err != nil {
		return err
	}

	return w.SetBlock(seq, ci, au, desc, payload)
}

// SetUnalignedBlock stores the payload of descriptor desc of unmapped access unit uau.
func (w *Writer) SetUnalignedBlock(uau, desc int, payload []byte) error {
	if w.written {
		return errs.ErrDatasetWritten
	}
	if uau < 0 || uau >= w.table.NumUnalignedAUs() || desc < 0 || desc >= w.layout.NumUnmappedDescriptors() {
		return fmt.Errorf("%w: unaligned block %d/%d", errs.ErrIndexOutOfRange, uau, desc)
	}

	key := unalignedKey{uau: uau, desc: desc}
	if _, dup := w.unaligned[key]; dup {
		return fmt.Errorf("%w: unaligned block %d/%d", errs.ErrBlockAlreadySet, uau, desc)
	}

	blk, err := w.encode(payload)
	if err != nil {
		return err
	}
	w.unaligned[key] = blk

	return nil
}

// SetSignatures attaches the signatures of unmapped access unit uau. The
// number of signatures may differ from the layout's signature base.
func (w *Writer) SetSignatures(uau int, sigs ...signature.Signature) error {
	if w.written {
		return errs.ErrDatasetWritten
	}
	if !w.table.SetSignatures(uau, signature.CollectionOf(sigs...)) {
		return fmt.Errorf("%w: signatures of unaligned AU %d", errs.ErrIndexOutOfRange, uau)
	}

	return nil
}

func (w *Writer) encode(payload []byte) ([]byte, error) {
	blk, raw, err := encodeBlock(w.codec, payload)
	if err != nil {
		return nil, err
	}
	if err := checkBlockSize(&w.layout, blk); err != nil {
		return nil, err
	}
	w.stats.Add(len(payload), len(blk), raw)

	return blk, nil
}

// WriteTo lays out the payload region, records every offset in the table and
// writes the complete dataset to out. A Writer can be written once.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	if w.written {
		return 0, errs.ErrDatasetWritten
	}

	header := section.DatasetHeader{Layout: w.layout, Compression: w.codec.Type()}
	tableSize, err := w.table.Size()
	if err != nil {
		return 0, err
	}
	base := uint64(header.BoxSize()) + tableSize

	var chunks [][]byte
	var end uint64
	if w.layout.BlockHeader {
		chunks, end, err = w.layoutAccessUnits(base)
	} else {
		chunks, end = w.layoutStreams(base)
	}
	if err != nil {
		return 0, err
	}

	buf := pool.GetIndexBuffer()
	defer pool.PutIndexBuffer(buf)

	if _, err := header.WriteTo(buf); err != nil {
		return 0, err
	}
	if _, err := w.table.Write(buf); err != nil {
		return 0, fmt.Errorf("write master index table: %w", err)
	}

	w.written = true

	n, err := buf.WriteTo(out)
	if err != nil {
		return n, err
	}
	for _, c := range chunks {
		m, err := out.Write(c)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}

	w.logger.Debug("dataset written",
		slog.Uint64("payload_start", base), slog.Uint64("size", end),
		slog.Int("blocks", w.stats.Blocks), slog.Int("stored_raw", w.stats.StoredRaw),
		slog.Float64("ratio", w.stats.CompressionRatio()))

	return n, nil
}

func (w *Writer) alignedBlock(seq, class, au, desc int) []byte {
	if blk, ok := w.aligned[blockKey{seq: seq, class: class, au: au, desc: desc}]; ok {
		return blk
	}

	return emptyBlock
}

func (w *Writer) unalignedBlock(uau, desc int) []byte {
	if blk, ok := w.unaligned[unalignedKey{uau: uau, desc: desc}]; ok {
		return blk
	}

	return emptyBlock
}

// layoutStreams places blocks one descriptor stream after another, starting
// at base, and returns the chunks to write and the end offset.
func (w *Writer) layoutStreams(base uint64) ([][]byte, uint64) {
	l := &w.layout
	t := w.table
	uPos, hasU := l.UnmappedClassIndex()

	var chunks [][]byte
	pos := base
	emit := func(blk []byte) {
		chunks = append(chunks, blk)
		pos += uint64(len(blk))
	}

	for ci, c := range l.Classes {
		indexed := l.IndexesClass(ci)
		unmapped := hasU && ci == uPos

		if c.NumDescriptors == 0 {
			w.setAUOffsets(ci, indexed, unmapped, pos)
			continue
		}

		for d := range c.NumDescriptors {
			if indexed {
				for si := range l.Sequences {
					for au := range l.NumBlocks(si) {
						if d == 0 {
							t.SetAUOffset(si, ci, au, pos)
						}
						t.SetOffset(si, ci, au, d, pos)
						emit(w.alignedBlock(si, ci, au, d))
					}
				}
			}
			if unmapped {
				for uau := range t.NumUnalignedAUs() {
					if d == 0 {
						t.SetUnalignedAUOffset(uau, pos)
					}
					t.SetUnalignedOffset(uau, d, pos)
					emit(w.unalignedBlock(uau, d))
				}
			}
			t.InsertFinalOffset(ci, d, pos)
		}
	}

	return chunks, pos
}

// setAUOffsets points every access unit of a class without descriptors at pos.
func (w *Writer) setAUOffsets(ci int, indexed, unmapped bool, pos uint64) {
	l := &w.layout
	if indexed {
		for si := range l.Sequences {
			for au := range l.NumBlocks(si) {
				w.table.SetAUOffset(si, ci, au, pos)
			}
		}
	}
	if unmapped {
		for uau := range w.table.NumUnalignedAUs() {
			w.table.SetUnalignedAUOffset(uau, pos)
		}
	}
}

// layoutAccessUnits places blocks access unit by access unit, each behind an
// access unit header and its own block headers.
func (w *Writer) layoutAccessUnits(base uint64) ([][]byte, uint64, error) {
	l := &w.layout
	t := w.table

	var chunks [][]byte
	pos := base
	emitAU := func(numDesc int, block func(d int) []byte) error {
		var content uint64
		for d := range numDesc {
			content += blockHeaderSize + uint64(len(block(d)))
		}
		if content > maxAUContentSize {
			return fmt.Errorf("%w: access unit content of %d bytes", errs.ErrValueOverflow, content)
		}

		hdr := make([]byte, 0, auHeaderSize)
		hdr = append(hdr, byte(numDesc))
		hdr = endian.AppendUint40(hdr, content)
		chunks = append(chunks, hdr)
		pos += auHeaderSize

		for d := range numDesc {
			blk := block(d)
			bh := make([]byte, 0, blockHeaderSize)
			bh = append(bh, byte(d))
			bh = w.engine.AppendUint32(bh, uint32(len(blk)))
			chunks = append(chunks, bh, blk)
			pos += blockHeaderSize + uint64(len(blk))
		}

		return nil
	}

	for si := range l.Sequences {
		for ci, c := range l.Classes {
			if !l.IndexesClass(ci) {
				continue
			}
			for au := range l.NumBlocks(si) {
				t.SetAUOffset(si, ci, au, pos)
				err := emitAU(c.NumDescriptors, func(d int) []byte { return w.alignedBlock(si, ci, au, d) })
				if err != nil {
					return nil, 0, err
				}
			}
		}
	}

	numUnmapped := l.NumUnmappedDescriptors()
	for uau := range t.NumUnalignedAUs() {
		t.SetUnalignedAUOffset(uau, pos)
		t.SetUnalignedBlockOffset(uau, pos+auHeaderSize)
		if err := emitAU(numUnmapped, func(d int) []byte { return w.unalignedBlock(uau, d) }); err != nil {
			return nil, 0, err
		}
	}

	return chunks, pos, nil
}

func alignedSlot(l *section.Layout, seq, class, au, desc int) bool {
	if seq < 0 || seq >= len(l.Sequences) || !l.IndexesClass(class) {
		return false
	}

	return au >= 0 && au < l.NumBlocks(seq) && desc >= 0 && desc < l.NumDescriptors(class)
}

// resolve maps a sequence id and class type to their layout positions.
func resolve(l *section.Layout, seqID uint16, class format.ClassType) (int, int, error) {
	seq, ok := l.SequenceIndex(seqID)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %d", errs.ErrUnknownSequence, seqID)
	}
	ci, ok := l.ClassIndex(class)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", errs.ErrUnknownClass, class)
	}

	return seq, ci, nil
}
