// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"io"

	"github.com/fgbgo/flatgeobuf/flat"
	"github.com/fgbgo/flatgeobuf/littleendian"
	"github.com/fgbgo/flatgeobuf/packedrtree"
)

// SequentialReader reads a FlatGeobuf file from a forward-only source,
// e.g. a network socket or a pipe. Unlike FileReader it cannot seek,
// so bounding-box selection is unavailable; any index bytes present
// are read and discarded, and features are yielded in storage order.
//
// A SequentialReader tolerates an unknown features_count (zero in the
// header): iteration simply continues until the source reports EOF.
type SequentialReader struct {
	stateful
	r   io.Reader
	hdr *Header
}

// NewSequentialReader wraps a forward-only source for FlatGeobuf
// reading. The header and every feature frame are eagerly verified as
// they're parsed; use NewSequentialReaderUnverified to skip that pass.
func NewSequentialReader(r io.Reader) *SequentialReader {
	return newSequentialReader(r, true)
}

// NewSequentialReaderUnverified wraps r like NewSequentialReader, but
// skips the eager panic-trapped verification pass described on
// NewFileReaderUnverified.
func NewSequentialReaderUnverified(r io.Reader) *SequentialReader {
	return newSequentialReader(r, false)
}

func newSequentialReader(r io.Reader, verify bool) *SequentialReader {
	if r == nil {
		textPanic("nil reader")
	}
	return &SequentialReader{r: r, stateful: stateful{state: stageBeforeHeader, verify: verify}}
}

// Header reads the magic bytes and header table, then discards any
// index bytes present, leaving the reader positioned at the first
// feature frame.
func (r *SequentialReader) Header() (*Header, error) {
	if err := r.toState(stageBeforeHeader, stageAfterIndex); err != nil {
		return nil, err
	}

	if _, err := Magic(r.r); err != nil {
		return nil, r.toErr(wrapErr("failed to read magic bytes", err))
	}

	var szBuf [4]byte
	if _, err := io.ReadFull(r.r, szBuf[:]); err != nil {
		return nil, r.toErr(wrapErr("failed to read header size", err))
	}
	hs := littleendian.Uint32(szBuf[:])
	if hs < 8 || uint64(hs) > headerMaxLen {
		return nil, r.toErr(&IllegalHeaderSize{Size: hs})
	}

	buf := make([]byte, 4+hs)
	copy(buf, szBuf[:])
	if _, err := io.ReadFull(r.r, buf[4:]); err != nil {
		return nil, r.toErr(wrapErr("failed to read header bytes", err))
	}
	r.hdr = flat.GetSizePrefixedRootAsHeader(buf, 0)
	if r.verify {
		if err := verifyHeader(r.hdr); err != nil {
			return nil, r.toErr(err)
		}
	}

	n, nodeSize := int(r.hdr.FeaturesCount()), r.hdr.IndexNodeSize()
	if n > 0 && nodeSize >= 2 {
		sz, err := packedrtree.Size(n, nodeSize)
		if err != nil {
			return nil, r.toErr(err)
		}
		if _, err = io.CopyN(io.Discard, r.r, sz); err != nil {
			return nil, r.toErr(wrapErr("failed to discard index bytes", err))
		}
	}

	return r.hdr, nil
}

// DataNext reads and returns the next feature frame, or io.EOF when
// the source is exhausted.
func (r *SequentialReader) DataNext() (Feature, error) {
	if r.err != nil {
		return Feature{}, r.err
	}
	if r.state != stageAfterIndex && r.state != stageInData {
		return Feature{}, errUnexpectedState
	}
	r.state = stageInData

	var szBuf [4]byte
	if _, err := io.ReadFull(r.r, szBuf[:]); err != nil {
		if err == io.EOF {
			return Feature{}, io.EOF
		}
		return Feature{}, r.toErr(wrapErr("failed to read feature frame", err))
	}
	sz := littleendian.Uint32(szBuf[:])
	buf := make([]byte, 4+sz)
	copy(buf, szBuf[:])
	if _, err := io.ReadFull(r.r, buf[4:]); err != nil {
		return Feature{}, r.toErr(wrapErr("failed to read feature frame", err))
	}
	f := flat.GetSizePrefixedRootAsFeature(buf, 0)
	if r.verify {
		if err := verifyFeature(f); err != nil {
			return Feature{}, r.toErr(err)
		}
	}
	return *f, nil
}

// DataRem reads and returns all remaining features.
func (r *SequentialReader) DataRem() ([]Feature, error) {
	feats := make([]Feature, 0)
	for {
		f, err := r.DataNext()
		if err == io.EOF {
			return feats, nil
		} else if err != nil {
			return nil, err
		}
		feats = append(feats, f)
	}
}

// Close releases the underlying source, closing it if it implements
// io.Closer.
func (r *SequentialReader) Close() error {
	return r.close(r.r)
}
