// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkQueueAsStack(t *testing.T) {
	var q workQueue

	assert.Equal(t, 0, q.Len())

	lifoEnqueue(&q, workItem{nodeIndex: 3, level: 5})
	assert.Equal(t, 1, q.Len())

	got := lifoDequeue(&q)
	assert.Equal(t, workItem{nodeIndex: 3, level: 5}, got)
	assert.Equal(t, 0, q.Len())
}

func TestWorkQueueStackOrder(t *testing.T) {
	var q workQueue
	for i := 0; i < 5; i++ {
		lifoEnqueue(&q, workItem{nodeIndex: i})
	}

	for i := 4; i >= 0; i-- {
		got := lifoDequeue(&q)
		assert.Equal(t, i, got.nodeIndex)
	}
}

func TestWorkQueueHeapInterface(t *testing.T) {
	q := workQueue{{nodeIndex: 0}, {nodeIndex: 1}}

	assert.Equal(t, 2, q.Len())
	assert.True(t, q.Less(0, 1))
	assert.False(t, q.Less(1, 0))

	q.Swap(0, 1)
	assert.Equal(t, 1, q[0].nodeIndex)
	assert.Equal(t, 0, q[1].nodeIndex)

	q.Push(workItem{nodeIndex: 9})
	assert.Equal(t, 9, q[len(q)-1].nodeIndex)

	popped := q.Pop().(workItem)
	assert.Equal(t, 9, popped.nodeIndex)
}

func TestHeapEnqueueDequeueOrder(t *testing.T) {
	var q workQueue
	indices := []int{5, 1, 4, 2, 8, 0, 7, 6, 3}
	for _, i := range indices {
		heapEnqueue(&q, workItem{nodeIndex: i})
	}
	assert.Equal(t, len(indices), q.Len())

	for want := 0; want < len(indices); want++ {
		got := heapDequeue(&q)
		assert.Equal(t, want, got.nodeIndex, "heapDequeue must return nodes in ascending order")
	}
}
