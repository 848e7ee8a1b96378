// Package section defines the box-level structures of a dataset: the box
// header, the immutable Layout that drives the master index table, and the
// dataset header box that persists it.
//
// A dataset stream is laid out as:
//
//	┌──────────────────────────────────────────────┐
//	│ dthd box: box header + Layout + compression  │
//	├──────────────────────────────────────────────┤
//	│ dmit box: box header + master index table    │
//	├──────────────────────────────────────────────┤
//	│ block payloads                               │
//	└──────────────────────────────────────────────┘
//
// Every fixed-width field is big-endian. The master index table body itself
// is bit-packed and lives in package index.
package section
