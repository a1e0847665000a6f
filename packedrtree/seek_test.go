// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import (
	"bytes"
	"io"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockReadSeeker lets tests script Read/Seek failures that a real
// file or network stream could produce, without needing one.
type mockReadSeeker struct {
	mock.Mock
}

func (m *mockReadSeeker) Read(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *mockReadSeeker) Seek(offset int64, whence int) (int64, error) {
	args := m.Called(offset, whence)
	return args.Get(0).(int64), args.Error(1)
}

func TestUnmarshalPanics(t *testing.T) {
	cases := map[string]struct {
		r        io.Reader
		numRefs  int
		nodeSize uint16
		want     string
	}{
		"nil reader":     {nil, 1, 2, "packedrtree: nil reader"},
		"zero num refs":  {strings.NewReader("x"), 0, 2, "packedrtree: empty tree not allowed (num refs must be > 0)"},
		"zero node size": {strings.NewReader("x"), 1, 0, "packedrtree: node size must be at least 2"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.PanicsWithValue(t, tc.want, func() {
				_, _ = Unmarshal(tc.r, tc.numRefs, tc.nodeSize)
			})
		})
	}
}

func TestUnmarshalShortRead(t *testing.T) {
	var r mockReadSeeker
	r.Test(t)
	r.On("Read", mock.Anything).Return(0, io.ErrUnexpectedEOF).Once()

	got, err := Unmarshal(&r, 1, 2)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	r.AssertExpectations(t)
}

func TestSeekPanics(t *testing.T) {
	cases := map[string]struct {
		rs       io.ReadSeeker
		numRefs  int
		nodeSize uint16
		want     string
	}{
		"nil read seeker": {nil, 1, 2, "packedrtree: nil read seeker"},
		"zero num refs":   {strings.NewReader("x"), 0, 2, "packedrtree: empty tree not allowed (num refs must be > 0)"},
		"zero node size":  {strings.NewReader("x"), 1, 0, "packedrtree: node size must be at least 2"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.PanicsWithValue(t, tc.want, func() {
				_, _ = Seek(tc.rs, tc.numRefs, tc.nodeSize, Box{})
			})
		})
	}
}

func TestSeekFailsToCacheStartOffset(t *testing.T) {
	var r mockReadSeeker
	r.Test(t)
	r.On("Seek", int64(0), io.SeekCurrent).Return(int64(0), io.ErrClosedPipe).Once()

	got, err := Seek(&r, 2, 6, Box{})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.EqualError(t, err, "packedrtree: failed to cache index start offset: "+io.ErrClosedPipe.Error())
	r.AssertExpectations(t)
}

func TestSeekIndexEndOverflows(t *testing.T) {
	var r mockReadSeeker
	r.Test(t)
	r.On("Seek", int64(0), io.SeekCurrent).Return(int64(math.MaxInt64), nil).Once()

	got, err := Seek(&r, 2, 6, Box{})

	assert.Nil(t, got)
	assert.EqualError(t, err, "packedrtree: index end offset overflows int64")
	r.AssertExpectations(t)
}

func TestSeekFailsMidRead(t *testing.T) {
	var r mockReadSeeker
	r.Test(t)
	r.On("Seek", int64(0), io.SeekCurrent).Return(int64(0), nil).Once()
	r.On("Read", mock.Anything).Return(0, io.ErrUnexpectedEOF).Once()

	got, err := Seek(&r, 2, 6, Box{})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	r.AssertExpectations(t)
}

func TestSeekMatchesUnmarshal(t *testing.T) {
	// ...    ^
	// ...    |              [0]
	// ...    |       [1]
	// ...    | [2]
	// ...    +----------------->
	refs := []Ref{
		{Box: Box{XMin: 4, YMin: 4, XMax: 5, YMax: 5}, Offset: 1},
		{Box: Box{XMin: 2, YMin: 2, XMax: 3, YMax: 3}, Offset: 2},
		{Box: Box{XMin: 0, YMin: 0, XMax: 1, YMax: 1}, Offset: 3},
	}
	bounds := Box{XMin: 0, YMin: 0, XMax: 5, YMax: 5}
	sorted := make([]Ref, len(refs))
	copy(sorted, refs)
	HilbertSort(sorted, bounds)
	require.Equal(t, refs, sorted, "fixture must already be in Hilbert order")

	tree, err := New(refs, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = tree.Marshal(&buf)
	require.NoError(t, err)
	raw := buf.Bytes()

	query := Box{XMin: 1.5, YMin: 1.5, XMax: 4.5, YMax: 4.5}
	want := tree.Search(query)
	sort.Sort(want)

	got, err := Seek(bytes.NewReader(raw), len(refs), 2, query)
	require.NoError(t, err)
	sort.Sort(got)

	assert.Equal(t, want, got)
}

func TestSeekLeavesReaderAtDataSection(t *testing.T) {
	refs, _ := starRefs(6)
	tree, err := New(refs, 3)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = tree.Marshal(&buf)
	require.NoError(t, err)
	raw := buf.Bytes()
	trailer := []byte("trailing-data-section")

	r := bytes.NewReader(append(append([]byte{}, raw...), trailer...))

	_, err = Seek(r, len(refs), 3, EmptyBox)
	require.NoError(t, err)

	rest := make([]byte, len(trailer))
	n, err := r.Read(rest)
	require.NoError(t, err)
	assert.Equal(t, trailer, rest[:n])
}
