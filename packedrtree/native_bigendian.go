//go:build armbe || arm64be || mips || mips64 || mips64p32 || ppc || ppc64 || sparc || sparc64 || s390 || s390x
// +build armbe arm64be mips mips64 mips64p32 ppc ppc64 sparc sparc64 s390 s390x

package packedrtree

import "io"

// correctByteOrder swaps the bytes of every 8-byte word in b in place,
// converting a little-endian node array read from disk into this
// big-endian host's native byte order (or back again on write).
//
// A node is four float64 fields plus one int64 field, so every word in
// the serialized layout is 8 bytes wide regardless of which field it
// belongs to; one swap routine covers all of them.
func correctByteOrder(b []byte) {
	for word := 0; word < len(b); word += 8 {
		b[word], b[word+7] = b[word+7], b[word]
		b[word+1], b[word+6] = b[word+6], b[word+1]
		b[word+2], b[word+5] = b[word+5], b[word+2]
		b[word+3], b[word+4] = b[word+4], b[word+3]
	}
}

// writeRawNodeBytes writes a copy of p with every 8-byte word
// byte-swapped, so a node array held in this host's native (big-endian)
// order is written out in the little-endian on-disk format.
//
// p itself is left untouched: the caller may still hold a live
// reference to the in-memory node array after Marshal returns.
func writeRawNodeBytes(w io.Writer, p []byte) (int, error) {
	swapped := make([]byte, len(p))
	copy(swapped, p)
	correctByteOrder(swapped)
	return w.Write(swapped)
}
