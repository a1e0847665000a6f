// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree_test

import (
	"bytes"
	"fmt"

	"github.com/fgbgo/flatgeobuf/packedrtree"
)

// quadrantRefs returns one unit box in each quadrant around the
// origin, unsorted, for use as example fixtures.
func quadrantRefs() []packedrtree.Ref {
	return []packedrtree.Ref{
		{Box: packedrtree.Box{XMin: -2, YMin: -2, XMax: -1, YMax: -1}, Offset: 0}, // SW
		{Box: packedrtree.Box{XMin: 1, YMin: 1, XMax: 2, YMax: 2}, Offset: 1},     // NE
		{Box: packedrtree.Box{XMin: -2, YMin: 1, XMax: -1, YMax: 2}, Offset: 2},   // NW
		{Box: packedrtree.Box{XMin: 1, YMin: -2, XMax: 2, YMax: -1}, Offset: 3},   // SE
	}
}

// boundsOf computes the smallest box covering every ref in refs. A
// search must start from EmptyBox, never the zero Box, since the zero
// Box already covers the origin and would shrink the result.
func boundsOf(refs []packedrtree.Ref) packedrtree.Box {
	b := packedrtree.EmptyBox
	for i := range refs {
		b.Expand(&refs[i].Box)
	}
	return b
}

func ExampleHilbertSort() {
	refs := quadrantRefs()
	packedrtree.HilbertSort(refs, boundsOf(refs))

	fmt.Println(refs)
	// Output: [Ref{[1,-2,2,-1],Offset:3} Ref{[1,1,2,2],Offset:1} Ref{[-2,1,-1,2],Offset:2} Ref{[-2,-2,-1,-1],Offset:0}]
}

func ExampleNew() {
	refs := quadrantRefs()
	packedrtree.HilbertSort(refs, boundsOf(refs)) // New requires Hilbert-sorted input.
	tree, _ := packedrtree.New(refs, 10)          // error ignored to keep the example short

	fmt.Println(tree)
	// Output: PackedRTree{Bounds:[-2,-2,2,2],NumRefs:4,NodeSize:10}
}

func ExamplePackedRTree_Search() {
	refs := quadrantRefs()
	packedrtree.HilbertSort(refs, boundsOf(refs))
	tree, _ := packedrtree.New(refs, 10)

	outside := tree.Search(packedrtree.Box{XMin: -10, YMin: -10, XMax: -5, YMax: -5})
	fmt.Println("outside every quadrant:", outside)

	everything := tree.Search(tree.Bounds())
	fmt.Printf("covering the whole tree: %+v\n", everything)

	seQuadrant := tree.Search(packedrtree.Box{XMin: 0, YMin: -1, XMax: 1, YMax: 0})
	fmt.Printf("touching just the SE ref: %+v\n", seQuadrant)
	// Output: outside every quadrant: []
	// covering the whole tree: [{Offset:3 RefIndex:0} {Offset:1 RefIndex:1} {Offset:2 RefIndex:2} {Offset:0 RefIndex:3}]
	// touching just the SE ref: [{Offset:3 RefIndex:0}]
}

func ExampleUnmarshal() {
	refs := quadrantRefs()
	packedrtree.HilbertSort(refs, boundsOf(refs))
	built, _ := packedrtree.New(refs, 10)

	var wire bytes.Buffer
	_, _ = built.Marshal(&wire)

	loaded, _ := packedrtree.Unmarshal(&wire, len(refs), 10)
	fmt.Println(loaded)
	// Output: PackedRTree{Bounds:[-2,-2,2,2],NumRefs:4,NodeSize:10}
}

func ExampleSeek() {
	refs := quadrantRefs()
	packedrtree.HilbertSort(refs, boundsOf(refs))
	tree, _ := packedrtree.New(refs, 10)

	var wire bytes.Buffer
	_, _ = tree.Marshal(&wire)

	queries := []packedrtree.Box{
		packedrtree.EmptyBox,
		{XMin: -10, YMin: -10, XMax: -5, YMax: -5},
		tree.Bounds(),
		{XMin: 0, YMin: -1, XMax: 1, YMax: 0},
	}
	for i, q := range queries {
		hits, err := packedrtree.Seek(bytes.NewReader(wire.Bytes()), len(refs), 10, q)
		fmt.Printf("query %d: %+v %v\n", i+1, hits, err)
	}
	// Output: query 1: [] <nil>
	// query 2: [] <nil>
	// query 3: [{Offset:3 RefIndex:0} {Offset:1 RefIndex:1} {Offset:2 RefIndex:2} {Offset:0 RefIndex:3}] <nil>
	// query 4: [{Offset:3 RefIndex:0}] <nil>
}
