// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import "container/heap"

// rangeLoader fetches the nodes in the half-open index range [i, j)
// into dst, for a traversal that streams nodes from storage rather
// than holding the whole tree in memory.
type rangeLoader func(i, j int, dst []node) error

// workItem is one pending subtree to visit during a tree walk:
// nodeIndex is the first child index to examine, level is the tree
// level nodeIndex belongs to (level 0 holds the leaves).
type workItem struct {
	nodeIndex int
	level     int
}

// workQueue holds the pending workItems of an in-progress tree walk.
// Its ordering behavior is pluggable via enqueueFunc/dequeueFunc: a
// plain LIFO stack is enough for an in-memory search, but a streaming
// Seek needs node visits to happen in strictly ascending index order
// so the underlying reader never has to seek backward, which is why
// workQueue also implements heap.Interface.
type workQueue []workItem

func (q workQueue) Len() int            { return len(q) }
func (q workQueue) Less(i, j int) bool  { return q[i].nodeIndex < q[j].nodeIndex }
func (q workQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *workQueue) Push(x interface{}) { *q = append(*q, x.(workItem)) }
func (q *workQueue) Pop() interface{}   { return lifoDequeue(q) }

type enqueueFunc func(q *workQueue, w workItem)
type dequeueFunc func(q *workQueue) workItem

// lifoEnqueue/lifoDequeue treat the queue as a stack. Visit order
// doesn't matter for an in-memory PackedRTree.Search, so the cheapest
// discipline wins.
func lifoEnqueue(q *workQueue, w workItem) {
	*q = append(*q, w)
}

func lifoDequeue(q *workQueue) workItem {
	old := *q
	n := len(old)
	w := old[n-1]
	*q = old[:n-1]
	return w
}

// heapEnqueue/heapDequeue treat the queue as a min-heap ordered by
// nodeIndex, guaranteeing Seek visits nodes in ascending offset order.
func heapEnqueue(q *workQueue, w workItem) {
	heap.Push(q, w)
}

func heapDequeue(q *workQueue) workItem {
	return heap.Pop(q).(workItem)
}

// traverse runs a breadth-first walk of the tree rooted at the top
// level, reporting every leaf whose box intersects b. The push/pop
// strategy wired into t determines visit order; the load strategy (if
// any) determines whether nodes are already resident or must be
// fetched on demand.
func (t *packedRTree) traverse(b Box) (Results, error) {
	pending := make(workQueue, 1)
	pending[0] = workItem{nodeIndex: 0, level: len(t.levels) - 1}

	hits := make(Results, 0)
	for {
		w := t.dequeue(&pending)

		end := w.nodeIndex + t.nodeSize
		if lvlEnd := t.levels[w.level].end; end > lvlEnd {
			end = lvlEnd
		}
		atLeafLevel := w.nodeIndex >= t.levels[0].start

		if t.load != nil {
			if err := t.load(w.nodeIndex, end, t.nodes); err != nil {
				return nil, err
			}
		}

		for pos := w.nodeIndex; pos < end; pos++ {
			n := &t.nodes[pos]
			if !b.intersects(&n.Box) {
				continue
			}
			if atLeafLevel {
				hits = append(hits, Result{Offset: n.Offset, RefIndex: pos - t.levels[0].start})
			} else {
				t.enqueue(&pending, workItem{nodeIndex: int(n.Offset), level: w.level - 1})
			}
		}

		if len(pending) == 0 {
			return hits, nil
		}
	}
}
