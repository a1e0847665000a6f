// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/fgbgo/flatgeobuf/flat"
	"github.com/fgbgo/flatgeobuf/littleendian"
	"github.com/fgbgo/flatgeobuf/packedrtree"
)

// httpPrefetchBase is added to the speculative index prefetch size so
// the initial request also covers the magic bytes and a typical
// header.
const httpPrefetchBase = 2 * 1024

// prefetchIndexBytes estimates the size of the first three R-tree
// layers (root, and its children down two levels) assuming branching
// factor b, so a single initial request can usually satisfy a small
// file's header and index without a second round trip.
func prefetchIndexBytes(b int) int64 {
	var sum, pow int64 = 0, 1
	for i := 0; i < 3; i++ {
		sum += pow * 40
		pow *= int64(b)
	}
	return sum
}

// HttpReader reads a FlatGeobuf resource over HTTP range requests. It
// follows the same Open -> select -> iterate lifecycle as FileReader,
// but every suspension point is a network request instead of a local
// read; no callbacks or background prefetchers are used.
type HttpReader struct {
	client        *RangeClient
	hdr           *Header
	headerEnd     int64 // absolute offset where the index (or data, if unindexed) begins
	dataStart     int64 // absolute offset where feature data begins
	featuresCount int
	nodeSize      uint16
}

// OpenHttpReader requests header bytes from url (with a single round
// trip covering the header and, for small files, the index too) and
// returns a reader positioned to select features.
func OpenHttpReader(ctx context.Context, httpClient *http.Client, url string) (*HttpReader, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	minReqSize := int64(httpPrefetchBase) + prefetchIndexBytes(int(defaultIndexNodeSize))

	rc := &RangeClient{HTTPClient: httpClient, URL: url, MinRequestSize: minReqSize}
	lead, err := rc.fetch(ctx, 0, minReqSize)
	if err != nil {
		return nil, err
	}
	if len(lead) < magicLen+4 {
		return nil, &MissingMagicBytes{}
	}

	if _, err = Magic(bytes.NewReader(lead[:magicLen])); err != nil {
		return nil, err
	}
	hs := littleendian.Uint32(lead[magicLen : magicLen+4])
	if hs < 8 || uint64(hs) > headerMaxLen {
		return nil, &IllegalHeaderSize{Size: hs}
	}

	headerFrameLen := int64(4 + hs)
	headerBuf := lead[magicLen:]
	if int64(len(headerBuf)) < headerFrameLen {
		headerBuf, err = rc.fetch(ctx, int64(magicLen), int64(magicLen)+headerFrameLen)
		if err != nil {
			return nil, err
		}
	} else {
		headerBuf = headerBuf[:headerFrameLen]
	}

	hdr := flat.GetSizePrefixedRootAsHeader(headerBuf, 0)
	if err = verifyHeader(hdr); err != nil {
		return nil, err
	}
	r := &HttpReader{
		client:        rc,
		hdr:           hdr,
		headerEnd:     int64(magicLen) + headerFrameLen,
		featuresCount: int(hdr.FeaturesCount()),
		nodeSize:      hdr.IndexNodeSize(),
	}
	r.dataStart = r.headerEnd
	if r.featuresCount > 0 && r.nodeSize >= 2 {
		sz, err := packedrtree.Size(r.featuresCount, r.nodeSize)
		if err != nil {
			return nil, err
		}
		r.dataStart += sz
	}
	return r, nil
}

// Header returns the file's header table.
func (r *HttpReader) Header() *Header {
	return r.hdr
}

// HttpFeatureIter yields features fetched over HTTP, one request (or
// coalesced batch) at a time. Next returns io.EOF once exhausted.
type HttpFeatureIter struct {
	r       *HttpReader
	pos     int64 // absolute file offset of the next feature, for select_all
	remain  int   // features left, for select_all
	pending packedrtree.HttpSearchResultItems
	i       int
}

// SelectAll returns an iterator over every feature in storage order.
func (r *HttpReader) SelectAll() *HttpFeatureIter {
	return &HttpFeatureIter{r: r, pos: r.dataStart, remain: r.featuresCount}
}

// SelectBbox searches the spatial index and returns an iterator over
// the matching features, in ascending storage order. It fails with
// ErrNoIndex if the file was written without one.
func (r *HttpReader) SelectBbox(ctx context.Context, b packedrtree.Box) (*HttpFeatureIter, error) {
	if r.featuresCount == 0 || r.nodeSize == 0 {
		return nil, ErrNoIndex
	}
	items, err := packedrtree.HttpStreamSearch(ctx, r.client, r.headerEnd, r.featuresCount, r.nodeSize, b, packedrtree.DefaultCombineRequestThreshold)
	if err != nil {
		return nil, wrapErr("index search failed", err)
	}
	return &HttpFeatureIter{r: r, pending: items}, nil
}

// Next fetches and returns the next feature, or io.EOF when the
// selection is exhausted.
func (it *HttpFeatureIter) Next(ctx context.Context) (Feature, error) {
	if it.pending != nil {
		if it.i >= len(it.pending) {
			return Feature{}, io.EOF
		}
		item := it.pending[it.i]
		it.i++
		return fetchFeatureAt(ctx, it.r.client, it.r.dataStart, item.Range)
	}
	if it.remain <= 0 {
		return Feature{}, io.EOF
	}
	it.remain--

	szBuf, err := it.r.client.fetch(ctx, it.pos, it.pos+4)
	if err != nil {
		return Feature{}, err
	}
	sz := littleendian.Uint32(szBuf)
	buf, err := it.r.client.fetch(ctx, it.pos, it.pos+4+int64(sz))
	if err != nil {
		return Feature{}, err
	}
	it.pos += 4 + int64(sz)
	f := flat.GetSizePrefixedRootAsFeature(buf, 0)
	if err = verifyFeature(f); err != nil {
		return Feature{}, err
	}
	return *f, nil
}

// fetchFeatureAt fetches one feature frame located dataStart+rng.Start
// bytes into the resource. A bounded range is fetched in a single
// request; an unbounded range (the file's last feature, whose length
// cannot be inferred from the index) first reads the 4-byte length
// prefix, then the feature bytes it specifies.
func fetchFeatureAt(ctx context.Context, rc *RangeClient, dataStart int64, rng packedrtree.HttpRange) (Feature, error) {
	start := dataStart + rng.Start
	if rng.HasEnd() {
		buf, err := rc.fetch(ctx, start, dataStart+rng.End)
		if err != nil {
			return Feature{}, err
		}
		f := flat.GetSizePrefixedRootAsFeature(buf, 0)
		if err = verifyFeature(f); err != nil {
			return Feature{}, err
		}
		return *f, nil
	}

	szBuf, err := rc.fetch(ctx, start, start+4)
	if err != nil {
		return Feature{}, err
	}
	sz := littleendian.Uint32(szBuf)
	buf, err := rc.fetch(ctx, start, start+4+int64(sz))
	if err != nil {
		return Feature{}, err
	}
	f := flat.GetSizePrefixedRootAsFeature(buf, 0)
	if err = verifyFeature(f); err != nil {
		return Feature{}, err
	}
	return *f, nil
}
