// Package dataset stores descriptor blocks behind a master index table.
//
// A dataset is a single byte stream:
//
//	[dthd box: layout + compression][dmit box: master index table][payload region]
//
// Every byte offset recorded in the table is absolute, counted from the start
// of the dthd box. Each stored block starts with a one byte tag holding the
// format.CompressionType it was stored with; blocks that do not shrink under
// the dataset codec are stored raw with tag None.
//
// Without block headers the payload region is laid out one descriptor stream
// after another. A stream holds the blocks of one (class, descriptor) pair
// for every sequence and access unit in order, followed, for class U, by the
// blocks of the unmapped access units. The end of a block is therefore the
// next offset in its stream, which the table's offset trees answer.
//
// With block headers the region is laid out access unit by access unit. Each
// access unit starts with an access unit header (block count u8, content size
// u40) followed by its blocks, each prefixed by a block header (descriptor id
// u8, block size u32). The table then records only access unit offsets, plus
// the first block offset of unmapped access units.
//
// Writer assembles a dataset in memory and emits it with WriteTo. Reader
// opens one through an io.ReaderAt and decodes single blocks on demand.
package dataset
