// Package index implements the dataset master index table (box type "dmit").
//
// The table records, for every reference sequence, access unit class and
// access unit, the byte offset of the access unit and its genomic span, plus
// the byte offset of every descriptor block when blocks carry no headers of
// their own. Unmapped access units get a parallel unaligned index with an
// optional signature set per access unit.
//
// Tables are allocated eagerly from a section.Layout, except for signature
// collections, which grow as signatures arrive. Parse checks the layout
// against the input size before allocating anything. Producers fill them
// through the Set* mutators, then serialize them with Write. Consumers obtain
// a populated, read-only table from Parse. Mutators and queries take
// (sequence, class, access unit, descriptor) positions and report out of
// range positions through their boolean result instead of failing.
//
// Per-descriptor offsets are also kept in one offsettree.Tree per class and
// descriptor, which answers NextBlockByteOffset: the end of a block is the
// next offset recorded for the same descriptor stream.
//
// The body is bit-packed, MSB-first. For each sequence, each indexed class and
// each access unit, in that order:
//
//	AU byte offset      32|64
//	start, end          32|40 each
//	ref id              16        reference datasets
//	ref start, end      32|40     reference datasets
//	ext start, end      32|40     multiple alignment
//	descriptor offsets  32|64 × n without block headers
//
// followed by padding to a byte boundary, then one record per unaligned
// access unit:
//
//	AU byte offset      32|64
//	ref id, start, end  16, 32|40, 32|40   reference datasets
//	signature set                          multiple signature base ≠ 0
//	block offset        32|64              with block headers
//	descriptor offsets  32|64 × n          without block headers
//
// and a final padding to a byte boundary. The unaligned AU byte offset takes
// the same 32 or 64 bit width as every other byte offset, following
// ByteOffset64, where older writers always used 32 bits.
//
// A Table is not safe for concurrent mutation. Writes to distinct access
// units touch disjoint entries, but offset tree insertions must be serialized.
package index
