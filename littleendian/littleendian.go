// Package littleendian decodes the little-endian size prefixes that
// precede the header table and every feature frame in a FlatGeobuf
// stream.
package littleendian

import "encoding/binary"

// Uint32 decodes the first 4 bytes of b as a little-endian uint32. It
// panics if len(b) < 4.
func Uint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
