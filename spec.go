// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"io"
)

const (
	// magicLen is the length of the FlatGeobuf magic number in bytes.
	magicLen = 8
	// MinSpecMajorVersion is the minimum major version of the
	// FlatGeobuf specification that this package can read.
	MinSpecMajorVersion = 0x03
	// MaxSpecMajorVersion is the maximum major version of the
	// FlatGeobuf specification that this package can read.
	MaxSpecMajorVersion = 0x03
	// headerMaxLen bounds the header_size field read from a stream,
	// so a corrupted or malicious file cannot force an enormous
	// allocation before the header has even been validated.
	headerMaxLen = 10 * 1024 * 1024
	// defaultIndexNodeSize is the R-tree branching factor used when a
	// writer does not specify one. 0 disables indexing entirely.
	defaultIndexNodeSize uint16 = 16
)

// magic contains the FlatGeobuf magic number. Byte 7 is fixed at 0;
// unlike byte 3 (the specification major version) it carries no
// version information.
var magic = [magicLen]byte{0x66, 0x67, 0x62, 0x03, 0x66, 0x67, 0x62, 0x00}

// SpecVersion is a version of the FlatGeobuf specification.
type SpecVersion struct {
	// Major is the major version of the FlatGeobuf specification.
	Major uint8
}

// Magic reads the FlatGeobuf magic number from a stream and if it is
// valid, returns the FlatGeobuf specification version. This function
// can be used to test whether any file seems to be in the FlatGeobuf
// format. However, it does not read beyond the magic number.
//
// Calling this function will result in 8 bytes being read from the
// stream reader (unless there were fewer than 8 bytes available, in
// which all available bytes in the stream are consumed).
func Magic(r io.Reader) (SpecVersion, error) {
	m := make([]byte, magicLen)
	_, err := io.ReadFull(r, m)
	if err != nil {
		return SpecVersion{}, err
	}
	if m[0] == magic[0] &&
		m[1] == magic[1] &&
		m[2] == magic[2] &&
		m[4] == magic[4] &&
		m[5] == magic[5] &&
		m[6] == magic[6] &&
		m[7] == magic[7] {
		if m[3] < MinSpecMajorVersion || m[3] > MaxSpecMajorVersion {
			return SpecVersion{}, fmtErr("unsupported specification version %d", m[3])
		}
		return SpecVersion{m[3]}, nil
	}
	var got [8]byte
	copy(got[:], m)
	return SpecVersion{}, &MissingMagicBytes{Got: got}
}
