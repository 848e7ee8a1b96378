// Package bitstream implements MSB-first bit readers and writers over byte streams.
//
// Fields of any width between 0 and 64 bits are stored most significant bit
// first, which makes every multi-bit field big-endian on the wire regardless of
// host byte order. Values handed to and returned from this package are always in
// native form.
//
// A Writer buffers whole bytes and emits them to the underlying io.Writer on
// Flush. Every Writer must be flushed exactly once; WithWriter scopes that
// discipline around a callback:
//
//	err := bitstream.WithWriter(out, func(bw *bitstream.Writer) error {
//	    bw.WriteBits(40, position)
//	    return bw.Err()
//	})
//
// A Reader pulls bytes from an io.Reader one at a time. Any read past the end
// of the stream fails with errs.ErrShortRead and leaves the Reader unusable.
//
// Neither type is safe for concurrent use.
package bitstream

// lowMask returns a mask of the n least significant bits, valid for n in [0, 64].
func lowMask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << n) - 1
}
