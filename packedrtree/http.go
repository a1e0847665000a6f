// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import (
	"context"
	"fmt"
	"sort"
	"unsafe"
)

// DefaultCombineRequestThreshold is the default maximum byte gap
// between two candidate node ranges within a tree layer that
// HttpStreamSearch will still merge into a single ranged fetch.
const DefaultCombineRequestThreshold = 256 * 1024

// HttpRange is a byte range within the data section of a FlatGeobuf
// resource, relative to the start of the data section.
//
// End is exclusive. An End of -1 denotes an unbounded range (the Rust
// reference implementation calls this RangeFrom): the last feature in
// a file has no known successor offset, so its length cannot be
// determined from the index alone.
type HttpRange struct {
	Start int64
	End   int64
}

// HasEnd reports whether r has a known, bounded end.
func (r HttpRange) HasEnd() bool {
	return r.End >= 0
}

func (r HttpRange) String() string {
	if r.HasEnd() {
		return fmt.Sprintf("bytes=%d-%d", r.Start, r.End-1)
	}
	return fmt.Sprintf("bytes=%d-", r.Start)
}

// HttpSearchResultItem is a single result of HttpStreamSearch.
type HttpSearchResultItem struct {
	// Range is the byte range, relative to the start of the data
	// section, occupied by the matching feature.
	Range HttpRange
	// Index is the feature's position in the Hilbert-sorted leaf list,
	// i.e. its RefIndex.
	Index int
}

// HttpSearchResultItems is a list of HttpSearchResultItem sorted in
// ascending order of Range.Start.
type HttpSearchResultItems []HttpSearchResultItem

// NodeFetcher supplies the raw little-endian bytes of a contiguous
// range of serialized tree nodes, addressed as an absolute byte range
// within the backing resource (i.e. already offset by the position at
// which the index begins). Implementations typically wrap a buffered,
// request-coalescing HTTP range client.
type NodeFetcher interface {
	FetchNodes(ctx context.Context, byteStart, byteEnd int64) ([]byte, error)
}

// nodeRange is a half-open [start, end) range of node indices within
// a single tree layer.
type nodeRange struct {
	start, end int
}

// mergeNodeRanges sorts and merges candidate node ranges whose byte
// gap is smaller than combineRequestThreshold, trading wasted bytes
// for fewer round trips.
func mergeNodeRanges(candidates []nodeRange, combineRequestThreshold int64) []nodeRange {
	if len(candidates) == 0 {
		return nil
	}
	sorted := make([]nodeRange, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	merged := make([]nodeRange, 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if next.start <= cur.end {
			if next.end > cur.end {
				cur.end = next.end
			}
			continue
		}
		gapBytes := int64(next.start-cur.end) * int64(numNodeBytes)
		if gapBytes < combineRequestThreshold {
			cur.end = next.end
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	merged = append(merged, cur)
	return merged
}

// HttpStreamSearch performs a top-down, breadth-first search of a
// packed Hilbert R-Tree stored headerLen bytes into an HTTP resource,
// merging adjacent per-layer node ranges into as few NodeFetcher
// requests as request coalescing allows. Requested byte ranges are
// issued in monotonically non-decreasing order of start, which is
// required for correctness when fetch wraps a forward-only buffered
// range client.
//
// numRefs and nodeSize describe the tree exactly as they do for New
// and Seek. combineRequestThreshold is the maximum byte gap between
// two candidate ranges that will still be merged into a single fetch;
// callers typically pass DefaultCombineRequestThreshold.
//
// The returned items are sorted by ascending Range.Start, which is
// the same order as ascending leaf storage position. Every item whose
// successor leaf (in storage order, not necessarily also a match) was
// observed during the traversal has a bounded Range; the one item
// whose successor was never fetched -- in particular, the very last
// leaf in the file -- is reported with an unbounded range, since its
// length cannot be inferred from the index alone.
func HttpStreamSearch(ctx context.Context, fetch NodeFetcher, headerLen int64, numRefs int, nodeSize uint16, b Box, combineRequestThreshold int64) (HttpSearchResultItems, error) {
	validateParams(numRefs, nodeSize)
	if fetch == nil {
		panicMsg("nil fetcher")
	}
	if combineRequestThreshold < 0 {
		combineRequestThreshold = 0
	}

	levels, err := levelify(numRefs, int(nodeSize))
	if err != nil {
		return nil, err
	}
	leaves := levels[0]

	// leafOffset records the byte offset of every leaf touched by a
	// fetch, matching or not, so that a matching leaf's range end can
	// be derived from its immediate successor's offset.
	leafOffset := make(map[int]int64, numRefs)

	var matched []int // leaf node indices (within levels[0]) that matched.

	candidates := []nodeRange{{levels[len(levels)-1].start, levels[len(levels)-1].end}}
	for level := len(levels) - 1; level >= 0 && len(candidates) > 0; level-- {
		lv := levels[level]
		batches := mergeNodeRanges(candidates, combineRequestThreshold)

		var next []nodeRange
		for _, batch := range batches {
			byteStart := headerLen + int64(batch.start)*int64(numNodeBytes)
			byteEnd := headerLen + int64(batch.end)*int64(numNodeBytes)
			raw, ferr := fetch.FetchNodes(ctx, byteStart, byteEnd)
			if ferr != nil {
				return nil, wrapErrf("failed to fetch nodes", ferr)
			}
			count := batch.end - batch.start
			want := count * numNodeBytes
			if len(raw) < want {
				return nil, newErrf("short node read: want %d bytes, got %d", want, len(raw))
			}
			nodes := make([]node, count)
			ptr := (*byte)(unsafe.Pointer(&nodes[0]))
			dst := unsafe.Slice(ptr, want)
			copy(dst, raw[:want])
			correctByteOrder(dst)

			for i := range nodes {
				idx := batch.start + i
				if idx < lv.start || idx >= lv.end {
					continue
				}
				n := &nodes[i]
				if level == 0 {
					leafOffset[idx] = n.Offset
				}
				if !b.intersects(&n.Box) {
					continue
				}
				if level == 0 {
					matched = append(matched, idx)
				} else {
					childStart := int(n.Offset)
					childEnd := childStart + int(nodeSize)
					if childEnd > levels[level-1].end {
						childEnd = levels[level-1].end
					}
					next = append(next, nodeRange{childStart, childEnd})
				}
			}
		}
		candidates = next
	}

	results := make(HttpSearchResultItems, len(matched))
	for i, idx := range matched {
		start := leafOffset[idx]
		end := int64(-1)
		if succ, ok := leafOffset[idx+1]; ok {
			end = succ
		}
		results[i] = HttpSearchResultItem{
			Range: HttpRange{Start: start, End: end},
			Index: idx - leaves.start,
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Range.Start < results[j].Range.Start })
	return results, nil
}
