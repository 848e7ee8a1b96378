// Package errs defines the sentinel errors shared by the mgindex packages.
//
// Callers match them with errors.Is; producers wrap them with fmt.Errorf and %w
// to attach the failing field or index.
package errs

import "errors"

// Bit stream errors.
var (
	// ErrShortRead is returned when the underlying stream is exhausted in the middle of a field.
	ErrShortRead = errors.New("short read: stream exhausted")
	// ErrInvalidBitCount is returned when a field width is outside [0, 64].
	ErrInvalidBitCount = errors.New("invalid bit count")
	// ErrWriterClosed is returned when writing to a bit writer that has already been flushed and closed.
	ErrWriterClosed = errors.New("bit writer closed")
)

// Layout and box errors.
var (
	ErrInvalidLayout   = errors.New("invalid dataset layout")
	ErrInvalidBoxType  = errors.New("invalid box type")
	ErrInvalidBoxSize  = errors.New("invalid box size")
	ErrValueOverflow   = errors.New("value does not fit its field width")
	ErrInvalidHeader   = errors.New("invalid dataset header")
	ErrUnknownClass    = errors.New("unknown class type")
	ErrUnknownSequence = errors.New("unknown sequence id")
)

// Signature codec errors.
var (
	ErrInvalidSignatureParams  = errors.New("invalid signature parameters")
	ErrSignatureCountMismatch  = errors.New("populated signature count differs from allocated capacity")
	ErrSignatureLengthMismatch = errors.New("signature length differs from the fixed signature length")
	ErrInvalidSymbol           = errors.New("signature symbol out of range")
	ErrTooManySignatures       = errors.New("too many signatures for the 16-bit count field")
)

// Index errors.
var (
	// ErrInconsistentTree is returned when an offset tree violates the AVL or ordering invariant.
	ErrInconsistentTree = errors.New("inconsistent offset tree")
	// ErrLostOffsets is returned when an offset tree holds fewer values than were inserted.
	ErrLostOffsets = errors.New("offset tree lost values")
	// ErrIndexOutOfRange is returned by higher level APIs when a (sequence, class, AU, descriptor) address is not in the table.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrBlockNotFound is returned when a block boundary cannot be resolved from the index.
	ErrBlockNotFound = errors.New("block not found")
)

// Dataset payload errors.
var (
	ErrInvalidCompression = errors.New("invalid compression type")
	ErrInvalidBlock       = errors.New("invalid block")
	ErrBlockAlreadySet    = errors.New("block already set")
	ErrDatasetWritten     = errors.New("dataset already written")
)
