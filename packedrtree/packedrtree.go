// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import (
	"fmt"
	"io"
	"unsafe"
)

// A Ref is one entry in the tree: a feature's byte Offset into the
// data section, together with the bounding Box of its geometry.
type Ref struct {
	Box
	Offset int64
}

// String renders r as its bounding box followed by its data offset.
func (r Ref) String() string {
	return fmt.Sprintf("Ref{%s,Offset:%d}", r.Box.String(), r.Offset)
}

// node is the in-memory representation of both leaf and internal tree
// entries. For a leaf it's identical to a Ref. For an internal node,
// Box is the bounding box of the whole subtree, and Offset holds the
// node index of the subtree's first child rather than a data offset.
type node struct {
	Ref
}

const numNodeBytes = int(unsafe.Sizeof(node{}))

// packedRTree holds everything a tree walk needs, independent of
// whether the tree lives fully in memory (PackedRTree) or is being
// streamed node-by-node from a seekable source (Seek).
type packedRTree struct {
	numRefs  int
	nodeSize int
	levels   []levelRange
	nodes    []node

	enqueue enqueueFunc
	dequeue dequeueFunc
	// load fetches nodes on demand for a streaming walk; nil when nodes
	// is already fully populated.
	load rangeLoader
}

// buildTree allocates a packedRTree's backing levels/nodes for a given
// leaf count and node size, wiring in the traversal strategy the
// caller wants. It does not populate any node contents.
func buildTree(numRefs int, nodeSize uint16, enqueue enqueueFunc, dequeue dequeueFunc, load rangeLoader) (packedRTree, error) {
	validateParams(numRefs, nodeSize)

	levels, err := levelify(numRefs, int(nodeSize))
	if err != nil {
		return packedRTree{}, err
	}

	return packedRTree{
		numRefs:  numRefs,
		nodeSize: int(nodeSize),
		levels:   levels,
		nodes:    make([]node, levels[0].end),
		enqueue:  enqueue,
		dequeue:  dequeue,
		load:     load,
	}, nil
}

// PackedRTree is a packed Hilbert R-Tree held entirely in memory.
type PackedRTree struct {
	packedRTree
}

// New builds a packed Hilbert R-Tree over a non-empty, Hilbert-sorted
// list of feature references. It panics if refs is empty or nodeSize
// is less than 2.
//
// Sort refs with HilbertSort first; an unsorted input produces a tree
// with undefined search behavior.
func New(refs []Ref, nodeSize uint16) (*PackedRTree, error) {
	t, err := buildTree(len(refs), nodeSize, lifoEnqueue, lifoDequeue, nil)
	if err != nil {
		return nil, err
	}

	leaf := t.levels[0].start
	for _, r := range refs {
		t.nodes[leaf] = node{r}
		leaf++
	}

	for lvl := 0; lvl < len(t.levels)-1; lvl++ {
		level := t.levels[lvl]
		parentBase := t.levels[lvl+1].start
		childIdx := level.start
		for childIdx < level.end {
			parent := &t.nodes[parentBase]
			*parent = node{Ref{Box: EmptyBox, Offset: int64(childIdx)}}
			for n := 0; n < t.nodeSize && childIdx < level.end; n++ {
				parent.Expand(&t.nodes[childIdx].Box)
				childIdx++
			}
			parentBase++
		}
	}

	return &PackedRTree{t}, nil
}

// Bounds returns the bounding box covering every feature the tree
// references.
func (t *PackedRTree) Bounds() Box {
	return t.nodes[0].Box
}

// NumRefs returns the number of feature references in the tree.
func (t *PackedRTree) NumRefs() int {
	return t.numRefs
}

// NodeSize returns the tree's branching factor.
func (t *PackedRTree) NodeSize() uint16 {
	return uint16(t.nodeSize)
}

// Leaves returns the Ref values at the tree's leaf level, in the order
// originally passed to New. Reindexing callers (an Appender folding in
// newly written features, say) use this to recover the existing
// references before rebuilding the tree over an expanded set.
func (t *PackedRTree) Leaves() []Ref {
	lvl := t.levels[0]
	refs := make([]Ref, lvl.end-lvl.start)
	for i := range refs {
		refs[i] = t.nodes[lvl.start+i].Ref
	}
	return refs
}

// String returns a short summary of the tree.
func (t *PackedRTree) String() string {
	return fmt.Sprintf("PackedRTree{Bounds:%s,NumRefs:%d,NodeSize:%d}", t.Bounds(), t.numRefs, t.nodeSize)
}

// Search returns every reference whose bounding box intersects b. The
// order of results is unspecified.
//
// To query a FlatGeobuf index section directly from a seekable
// stream, without materializing a PackedRTree, use Seek instead.
func (t *PackedRTree) Search(b Box) Results {
	hits, err := t.traverse(b)
	if err != nil {
		// An in-memory tree has no load function, so traverse cannot
		// fail; a non-nil error here would be a bug in this package.
		panic(err)
	}
	return hits
}

// Marshal writes the tree to w in the FlatGeobuf index section wire
// format, returning the number of bytes written.
//
// When writing a complete FlatGeobuf file, w should be positioned at
// the start of the index section; on success it is left positioned at
// the start of the data section.
func (t *PackedRTree) Marshal(w io.Writer) (int, error) {
	if w == nil {
		panicMsg("nil writer")
	}
	raw := nodesAsBytes(t.nodes)
	return writeRawNodeBytes(w, raw)
}

// nodesAsBytes reinterprets a node slice's backing array as a raw byte
// slice, in the node struct's natural in-memory layout, without
// copying.
func nodesAsBytes(nodes []node) []byte {
	ptr := (*byte)(unsafe.Pointer(&nodes[0]))
	return unsafe.Slice(ptr, numNodeBytes*len(nodes))
}
