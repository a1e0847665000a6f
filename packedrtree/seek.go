// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import (
	"io"
	"math"
)

// Unmarshal reads a FlatGeobuf index section from r and builds the
// in-memory PackedRTree it describes.
//
// When reading a complete FlatGeobuf file, r should be positioned at
// the start of the index section; on success it is left positioned at
// the start of the data section.
//
// To query the index directly from a seekable source without
// materializing it, use Seek instead.
func Unmarshal(r io.Reader, numRefs int, nodeSize uint16) (*PackedRTree, error) {
	if r == nil {
		panicMsg("nil reader")
	}

	t, err := buildTree(numRefs, nodeSize, lifoEnqueue, lifoDequeue, nil)
	if err != nil {
		return nil, err
	}

	dst := nodesAsBytes(t.nodes)
	if _, err := io.ReadFull(r, dst); err != nil {
		return nil, err
	}
	// dst may have just been read in on-disk little-endian order; bring
	// it to this host's native order before use.
	correctByteOrder(dst)

	return &PackedRTree{packedRTree: t}, nil
}

// Seek searches a FlatGeobuf index section directly from a seekable
// stream, without first Unmarshaling it into memory. Nodes are read in
// strictly ascending offset order, so rs is never seeked backward.
//
// Results are guaranteed ascending by Result.RefIndex (leaf storage
// order), unlike PackedRTree.Search.
//
// rs should be positioned at the start of the index section; on
// success it is left positioned at the start of the data section.
func Seek(rs io.ReadSeeker, numRefs int, nodeSize uint16, b Box) (Results, error) {
	if rs == nil {
		panicMsg("nil read seeker")
	}
	validateParams(numRefs, nodeSize)

	startOffset, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, wrapErrf("failed to cache index start offset", err)
	}

	indexBytes, err := size(numRefs, int(nodeSize))
	if err != nil {
		return nil, err
	} else if indexBytes > math.MaxInt64-startOffset {
		return nil, newErr("index end offset overflows int64")
	}
	endOffset := startOffset + indexBytes

	cursor := startOffset
	load := func(i, j int, nodes []node) error {
		if rel := startOffset + int64(i)*int64(numNodeBytes) - cursor; rel != 0 {
			cursor, err = rs.Seek(rel, io.SeekCurrent)
			if err != nil {
				return wrapErrf("failed to seek to node %d, rel. offset %d", err, i, rel)
			}
		}
		if err := loadNodeRange(rs, i, j, nodes); err != nil {
			return wrapErrf("failed to read nodes %d..%d", err, i, j)
		}
		cursor += int64(j-i) * int64(numNodeBytes)
		return nil
	}

	t, err := buildTree(numRefs, nodeSize, heapEnqueue, heapDequeue, load)
	if err != nil {
		return nil, err
	}

	hits, err := t.traverse(b)
	if err != nil {
		return nil, err
	}

	// Leave the stream ready for the data section regardless of how far
	// the search actually read.
	if cursor != endOffset {
		if _, err := rs.Seek(endOffset, io.SeekStart); err != nil {
			return nil, wrapErrf("failed to skip to end of index after Seek", err)
		}
	}

	return hits, nil
}

// loadNodeRange reads the raw bytes for nodes[i:j] from r, converting
// them from the on-disk little-endian layout to host order in place.
func loadNodeRange(r io.Reader, i, j int, nodes []node) error {
	raw := nodesAsBytes(nodes[i:j])
	if _, err := io.ReadFull(r, raw); err != nil {
		return err
	}
	correctByteOrder(raw)
	return nil
}
