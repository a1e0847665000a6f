// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errFetchFailed = errors.New("fetch failed")

// mockNodeFetcher is a recording double for NodeFetcher, following the
// same mock.Mock embedding pattern as mockReadSeeker in seek_test.go.
type mockNodeFetcher struct {
	mock.Mock
	data []byte
}

func (f *mockNodeFetcher) FetchNodes(ctx context.Context, byteStart, byteEnd int64) ([]byte, error) {
	args := f.Called(byteStart, byteEnd)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return f.data[byteStart:byteEnd], nil
}

func buildTestTree(t *testing.T) (*PackedRTree, []byte) {
	t.Helper()
	refs := []Ref{
		{Box: Box{XMin: 0, YMin: 0, XMax: 1, YMax: 1}, Offset: 0},
		{Box: Box{XMin: 10, YMin: 10, XMax: 11, YMax: 11}, Offset: 10},
		{Box: Box{XMin: 20, YMin: 0, XMax: 21, YMax: 1}, Offset: 20},
		{Box: Box{XMin: 30, YMin: 10, XMax: 31, YMax: 11}, Offset: 30},
		{Box: Box{XMin: 40, YMin: 0, XMax: 41, YMax: 1}, Offset: 40},
	}
	HilbertSort(refs, Box{XMin: 0, YMin: 0, XMax: 41, YMax: 11})
	tree, err := New(refs, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = tree.Marshal(&buf)
	require.NoError(t, err)
	return tree, buf.Bytes()
}

func TestHttpStreamSearch(t *testing.T) {
	tree, raw := buildTestTree(t)

	// headerLen is 0 here because raw is exactly Marshal's flat node
	// array with no preceding header bytes; HttpStreamSearch addresses
	// nodes at headerLen + nodeIndex*numNodeBytes.
	const headerLen = 0
	fetcher := &mockNodeFetcher{data: raw}
	fetcher.On("FetchNodes", mock.Anything, mock.Anything).Return(0, nil)

	box := Box{XMin: 19, YMin: -1, XMax: 32, YMax: 12}
	items, err := HttpStreamSearch(context.Background(), fetcher, int64(headerLen), tree.NumRefs(), tree.NodeSize(), box, DefaultCombineRequestThreshold)
	require.NoError(t, err)

	want := tree.Search(box)
	assert.Equal(t, len(want), len(items))

	gotIdx := make(map[int]bool, len(items))
	for _, it := range items {
		gotIdx[it.Index] = true
	}
	for _, w := range want {
		assert.True(t, gotIdx[w.RefIndex], "expected RefIndex %d among streamed results", w.RefIndex)
	}
	fetcher.AssertExpectations(t)
}

func TestHttpStreamSearch_FetchError(t *testing.T) {
	_, raw := buildTestTree(t)
	fetcher := &mockNodeFetcher{data: raw}
	fetcher.On("FetchNodes", mock.Anything, mock.Anything).Return(0, errFetchFailed)

	_, err := HttpStreamSearch(context.Background(), fetcher, 0, 5, 2, Box{}, DefaultCombineRequestThreshold)
	assert.Error(t, err)
	fetcher.AssertExpectations(t)
}
