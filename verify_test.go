// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"testing"

	"github.com/fgbgo/flatgeobuf/flat"
	"github.com/stretchr/testify/assert"
)

// truncatedHeader returns a Header whose backing buffer is far too
// short for the position it claims to sit at, so any field accessor
// that reads its vtable indexes past the end of the slice and panics.
func truncatedHeader() *flat.Header {
	var h flat.Header
	h.Init(make([]byte, 4), 1000)
	return &h
}

func truncatedFeature() *flat.Feature {
	var f flat.Feature
	f.Init(make([]byte, 4), 1000)
	return &f
}

func TestVerifyHeader_rejectsTruncatedTable(t *testing.T) {
	err := verifyHeader(truncatedHeader())
	assert.Error(t, err)
}

func TestVerifyFeature_rejectsTruncatedTable(t *testing.T) {
	err := verifyFeature(truncatedFeature())
	assert.Error(t, err)
}

func TestSafeFlatBuffersInteraction(t *testing.T) {
	t.Run("passes through a nil error", func(t *testing.T) {
		err := safeFlatBuffersInteraction(func() error { return nil })
		assert.NoError(t, err)
	})

	t.Run("passes through a non-nil error", func(t *testing.T) {
		want := fmtErr("boom")
		err := safeFlatBuffersInteraction(func() error { return want })
		assert.Equal(t, want, err)
	})

	t.Run("converts a panic to an error", func(t *testing.T) {
		err := safeFlatBuffersInteraction(func() error {
			_ = truncatedHeader().Name()
			return nil
		})
		assert.Error(t, err)
	})
}
