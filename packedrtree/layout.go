// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import "math"

// numNodeBytes is set in packedrtree.go, where the node type lives;
// this file only consumes it when computing tree sizes.

func validateParams(numRefs int, nodeSize uint16) {
	if numRefs < 1 {
		panicMsg("empty tree not allowed (num refs must be > 0)")
	} else if nodeSize < 2 {
		panicMsg("node size must be at least 2")
	}
}

// Size returns the serialized size, in bytes, of a packed Hilbert
// R-Tree built over numRefs leaves with the given node size. It
// panics if numRefs is less than 1 or nodeSize is less than 2, and
// returns an error on integer overflow.
func Size(numRefs int, nodeSize uint16) (int64, error) {
	validateParams(numRefs, nodeSize)
	return size(numRefs, int(nodeSize))
}

func size(numRefs, nodeSize int) (int64, error) {
	numNodes, err := totalNodes(numRefs, countInternalNodes(numRefs, nodeSize))
	if err != nil {
		return 0, err
	}
	if int64(numNodes) > math.MaxInt64/int64(numNodeBytes) {
		return 0, newErr("index size overflows int64")
	}
	return int64(numNodes) * int64(numNodeBytes), nil
}

// countInternalNodes sums the node counts of every level above the
// leaves: ceil(numRefs/nodeSize) parents, then ceil of that again, and
// so on until a single root node remains.
func countInternalNodes(numRefs, nodeSize int) int {
	var total int
	n := numRefs
	for {
		n = (n-1)/nodeSize + 1
		total += n
		if n == 1 {
			break
		}
	}
	return total
}

func totalNodes(numRefs, numInternal int) (n int, err error) {
	if numInternal > math.MaxInt-numRefs {
		err = newErr("total node count overflows int")
		return
	}
	return numRefs + numInternal, nil
}

// levelRange is a half-open [start, end) span of node indices, within
// the tree's single flat node array, that belongs to one level. Level
// 0 holds the leaves; the last entry holds the root.
type levelRange struct {
	start, end int
}

// levelify computes the levelRange boundaries implied by a leaf count
// and branching factor, in the same bottom-up order the tree itself is
// built: leaves first, root last.
//
// For numRefs = 4, nodeSize = 2, levelify returns
// [{3, 7}, {1, 3}, {0, 1}]: 4 leaves at indices 3..6, 2 parents at
// indices 1..2, and 1 root at index 0.
func levelify(numRefs, nodeSize int) ([]levelRange, error) {
	nodesPerLevel := []int{numRefs}
	numInternal := 0
	n := numRefs
	for {
		n = (n-1)/nodeSize + 1
		nodesPerLevel = append(nodesPerLevel, n)
		numInternal += n
		if n == 1 {
			break
		}
	}

	numNodes, err := totalNodes(numRefs, numInternal)
	if err != nil {
		return nil, err
	}

	levels := make([]levelRange, len(nodesPerLevel))
	end := numNodes
	for i, count := range nodesPerLevel {
		levels[i] = levelRange{start: end - count, end: end}
		end -= count
	}
	return levels, nil
}
