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

// FileReader reads a FlatGeobuf file from a seekable source: a local
// file, a memory-mapped buffer, or anything else satisfying
// io.ReadSeeker. It follows the Initial -> Open -> Selected lifecycle:
// Header parses the magic bytes and header table, Index or IndexSearch
// selects either the whole file or a bounding-box subset, and Data /
// DataRem iterate the selected features.
type FileReader struct {
	stateful
	rs         io.ReadSeeker
	hdr        *Header
	headerEnd  int64
	featureBase int64
}

// NewFileReader wraps a seekable source for FlatGeobuf reading. No
// bytes are consumed until Header is called. The header and every
// feature frame are eagerly verified as they're parsed; use
// NewFileReaderUnverified to skip that pass.
func NewFileReader(rs io.ReadSeeker) *FileReader {
	return newFileReader(rs, true)
}

// NewFileReaderUnverified wraps rs like NewFileReader, but skips the
// eager panic-trapped verification pass over each parsed table's
// fields, trusting the FlatBuffers runtime's lazy accessors instead.
// A malformed header or feature frame may then panic later, in
// whatever code first touches the bad field, rather than being turned
// into an error at read time. Header and feature frame size prefixes
// are still bounds-checked either way.
func NewFileReaderUnverified(rs io.ReadSeeker) *FileReader {
	return newFileReader(rs, false)
}

func newFileReader(rs io.ReadSeeker, verify bool) *FileReader {
	if rs == nil {
		textPanic("nil reader")
	}
	return &FileReader{rs: rs, stateful: stateful{state: stageBeforeHeader, verify: verify}}
}

// Header reads the magic bytes and header table. It must be called
// exactly once, before Index, IndexSearch, Data, or DataRem.
func (r *FileReader) Header() (*Header, error) {
	if err := r.toState(stageBeforeHeader, stageAfterHeader); err != nil {
		return nil, err
	}

	if _, err := Magic(r.rs); err != nil {
		return nil, r.toErr(wrapErr("failed to read magic bytes", err))
	}

	var szBuf [4]byte
	if _, err := io.ReadFull(r.rs, szBuf[:]); err != nil {
		return nil, r.toErr(wrapErr("failed to read header size", err))
	}
	hs := littleendian.Uint32(szBuf[:])
	if hs < 8 || uint64(hs) > headerMaxLen {
		return nil, r.toErr(&IllegalHeaderSize{Size: hs})
	}

	buf := make([]byte, 4+hs)
	copy(buf, szBuf[:])
	if _, err := io.ReadFull(r.rs, buf[4:]); err != nil {
		return nil, r.toErr(wrapErr("failed to read header bytes", err))
	}

	r.hdr = flat.GetSizePrefixedRootAsHeader(buf, 0)
	if r.verify {
		if err := verifyHeader(r.hdr); err != nil {
			return nil, r.toErr(err)
		}
	}

	var err error
	if r.headerEnd, err = r.rs.Seek(0, io.SeekCurrent); err != nil {
		return nil, r.toErr(wrapErr("failed to locate end of header", err))
	}
	return r.hdr, nil
}

// Index reads the entire packed Hilbert R-tree index into memory and
// advances the reader past it, so repeated in-memory searches can
// follow without further I/O. It returns (nil, nil) if the header
// declares no index (IndexNodeSize or FeaturesCount is zero).
//
// Index and IndexSearch are mutually exclusive selection strategies;
// call Rewind to switch between them on the same reader.
func (r *FileReader) Index() (*packedrtree.PackedRTree, error) {
	if err := r.toState(stageAfterHeader, stageAfterIndex); err != nil {
		return nil, err
	}

	n, nodeSize := int(r.hdr.FeaturesCount()), r.hdr.IndexNodeSize()
	if n == 0 || nodeSize == 0 {
		var err error
		if r.featureBase, err = r.rs.Seek(0, io.SeekCurrent); err != nil {
			return nil, r.toErr(wrapErr("failed to locate start of data", err))
		}
		return nil, nil
	}

	idx, err := packedrtree.Unmarshal(r.rs, n, nodeSize)
	if err != nil {
		return nil, r.toErr(wrapErr("failed to unmarshal index", err))
	}
	if r.featureBase, err = r.rs.Seek(0, io.SeekCurrent); err != nil {
		return nil, r.toErr(wrapErr("failed to locate start of data", err))
	}
	return idx, nil
}

// IndexSearch streams the index directly from the underlying source,
// without materializing the whole tree, and returns the features
// whose bounding box intersects b. See Index for the selection
// exclusivity rule.
func (r *FileReader) IndexSearch(b packedrtree.Box) ([]Feature, error) {
	if err := r.toState(stageAfterHeader, stageAfterIndex); err != nil {
		return nil, err
	}

	n, nodeSize := int(r.hdr.FeaturesCount()), r.hdr.IndexNodeSize()
	if n == 0 || nodeSize == 0 {
		return nil, r.toErr(ErrNoIndex)
	}

	results, err := packedrtree.Seek(r.rs, n, nodeSize, b)
	if err != nil {
		return nil, r.toErr(wrapErr("index search failed", err))
	}
	if r.featureBase, err = r.rs.Seek(0, io.SeekCurrent); err != nil {
		return nil, r.toErr(wrapErr("failed to locate start of data", err))
	}
	r.state = stageInData

	feats := make([]Feature, len(results))
	for i, res := range results {
		if _, err = r.rs.Seek(r.featureBase+res.Offset, io.SeekStart); err != nil {
			return nil, r.toErr(wrapErr("failed to seek to feature", err))
		}
		if feats[i], err = r.readFrame(); err != nil {
			return nil, r.toErr(wrapErr("failed to read feature frame", err))
		}
	}
	return feats, nil
}

// Data reads up to len(data) features sequentially, starting from
// wherever the reader's cursor currently sits, and returns the number
// actually read. n < len(data) with a nil error means the data
// section was exhausted.
func (r *FileReader) Data(data []Feature) (n int, err error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.state != stageAfterIndex && r.state != stageInData {
		return 0, errUnexpectedState
	}
	r.state = stageInData

	for n = range data {
		var f Feature
		if f, err = r.readFrame(); err == io.EOF {
			return n, nil
		} else if err != nil {
			return n, r.toErr(wrapErr("failed to read feature frame", err))
		}
		data[n] = f
	}
	return len(data), nil
}

// DataRem reads and returns all remaining features in the data
// section.
func (r *FileReader) DataRem() ([]Feature, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.state != stageAfterIndex && r.state != stageInData {
		return nil, errUnexpectedState
	}
	r.state = stageInData

	feats := make([]Feature, 0)
	for {
		f, err := r.readFrame()
		if err == io.EOF {
			return feats, nil
		} else if err != nil {
			return nil, r.toErr(wrapErr("failed to read feature frame", err))
		}
		feats = append(feats, f)
	}
}

// Rewind repositions the reader to the start of the index/data region,
// immediately after the header, so a new Index or IndexSearch call can
// run a fresh selection.
func (r *FileReader) Rewind() error {
	if r.err != nil {
		return r.err
	}
	if r.headerEnd == 0 {
		return errUnexpectedState
	}
	if _, err := r.rs.Seek(r.headerEnd, io.SeekStart); err != nil {
		return r.toErr(wrapErr("failed to rewind", err))
	}
	r.state = stageAfterHeader
	return nil
}

// Close releases the underlying source, closing it if it implements
// io.Closer.
func (r *FileReader) Close() error {
	return r.close(r.rs)
}

// readFrame reads one size-prefixed feature frame from the reader's
// current position.
func (r *FileReader) readFrame() (Feature, error) {
	var szBuf [4]byte
	if _, err := io.ReadFull(r.rs, szBuf[:]); err != nil {
		return Feature{}, err
	}
	sz := littleendian.Uint32(szBuf[:])
	buf := make([]byte, 4+sz)
	copy(buf, szBuf[:])
	if _, err := io.ReadFull(r.rs, buf[4:]); err != nil {
		return Feature{}, err
	}
	f := flat.GetSizePrefixedRootAsFeature(buf, 0)
	if r.verify {
		if err := verifyFeature(f); err != nil {
			return Feature{}, err
		}
	}
	return *f, nil
}
