// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizePanics(t *testing.T) {
	cases := map[string]struct {
		numRefs  int
		nodeSize uint16
		want     string
	}{
		"zero refs":     {0, 2, "packedrtree: empty tree not allowed (num refs must be > 0)"},
		"negative refs": {-1, 2, "packedrtree: empty tree not allowed (num refs must be > 0)"},
		"zero node size": {1, 0, "packedrtree: node size must be at least 2"},
		"node size one":  {1, 1, "packedrtree: node size must be at least 2"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.PanicsWithValue(t, tc.want, func() {
				_, _ = Size(tc.numRefs, tc.nodeSize)
			})
		})
	}
}

func TestSizeOverflow(t *testing.T) {
	if math.MaxInt != math.MaxInt64 {
		t.Skip("requires a 64-bit int")
	}

	cases := map[string]struct {
		numRefs  int
		nodeSize uint16
		want     string
	}{
		"node count overflows int":     {math.MaxInt, 2, "packedrtree: total node count overflows int"},
		"index size overflows int64":   {math.MaxInt / 32, 16, "packedrtree: index size overflows int64"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			n, err := Size(tc.numRefs, tc.nodeSize)
			assert.Zero(t, n)
			assert.EqualError(t, err, tc.want)
		})
	}
}

func TestSizeSuccess(t *testing.T) {
	cases := map[string]struct {
		numRefs  int
		nodeSize uint16
		want     int64
	}{
		"minimum":           {1, 2, 2 * int64(numNodeBytes)},
		"one full level":    {2, 2, 3 * int64(numNodeBytes)},
		"two full levels":   {4, 2, 7 * int64(numNodeBytes)},
		"three full levels": {8, 2, 15 * int64(numNodeBytes)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			n, err := Size(tc.numRefs, tc.nodeSize)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, n)
		})
	}
}

func TestLevelify(t *testing.T) {
	cases := map[string]struct {
		numRefs  int
		nodeSize int
		want     []levelRange
	}{
		"minimum":            {1, 2, []levelRange{{1, 2}, {0, 1}}},
		"one full level":     {2, 2, []levelRange{{1, 3}, {0, 1}}},
		"two full levels":    {4, 2, []levelRange{{3, 7}, {1, 3}, {0, 1}}},
		"three full levels":  {8, 2, []levelRange{{7, 15}, {3, 7}, {1, 3}, {0, 1}}},
		"partial upper level": {5, 3, []levelRange{{3, 8}, {1, 3}, {0, 1}}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			levels, err := levelify(tc.numRefs, tc.nodeSize)
			require.NoError(t, err)
			assert.Equal(t, tc.want, levels)

			sz, err := size(tc.numRefs, tc.nodeSize)
			require.NoError(t, err)
			assert.Equal(t, int64(tc.want[0].end), sz/int64(numNodeBytes))
		})
	}

	t.Run("node count overflow is reported as an error, not a panic", func(t *testing.T) {
		_, err := levelify(math.MaxInt, 2)
		assert.EqualError(t, err, "packedrtree: total node count overflows int")
	})
}
