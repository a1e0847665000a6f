// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_String(t *testing.T) {
	cases := map[string]struct {
		s    stage
		want string
	}{
		"beforeHeader": {stageBeforeHeader, "beforeHeader"},
		"afterHeader":  {stageAfterHeader, "afterHeader"},
		"afterIndex":   {stageAfterIndex, "afterIndex"},
		"inData":       {stageInData, "inData"},
		"unknown":      {stage(99), "stage(99)"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.s.String())
		})
	}
}

func TestStateful_toState(t *testing.T) {
	t.Run("advances on match", func(t *testing.T) {
		s := &stateful{state: stageBeforeHeader}
		require.NoError(t, s.toState(stageBeforeHeader, stageAfterHeader))
		assert.Equal(t, stageAfterHeader, s.state)
	})

	t.Run("rejects mismatch without advancing", func(t *testing.T) {
		s := &stateful{state: stageBeforeHeader}
		err := s.toState(stageAfterHeader, stageAfterIndex)
		assert.ErrorIs(t, err, errUnexpectedState)
		assert.Equal(t, stageBeforeHeader, s.state)
	})

	t.Run("latched error wins over state check", func(t *testing.T) {
		sentinel := errors.New("boom")
		s := &stateful{state: stageBeforeHeader, err: sentinel}
		err := s.toState(stageAfterHeader, stageAfterIndex)
		assert.Equal(t, sentinel, err)
		assert.Equal(t, stageBeforeHeader, s.state)
	})
}

func TestStateful_toErr(t *testing.T) {
	s := &stateful{}
	sentinel := errors.New("boom")
	got := s.toErr(sentinel)
	assert.Equal(t, sentinel, got)
	assert.Equal(t, sentinel, s.err)

	assert.Panics(t, func() {
		s.toErr(errors.New("again"))
	})
}

type fakeCloser struct {
	closed bool
	err    error
}

func (c *fakeCloser) Close() error {
	c.closed = true
	return c.err
}

func TestStateful_close(t *testing.T) {
	t.Run("closes an io.Closer and latches ErrClosed", func(t *testing.T) {
		s := &stateful{}
		c := &fakeCloser{}
		err := s.close(c)
		assert.NoError(t, err)
		assert.True(t, c.closed)
		assert.Equal(t, ErrClosed, s.err)
	})

	t.Run("propagates Close error", func(t *testing.T) {
		s := &stateful{}
		want := errors.New("disk error")
		c := &fakeCloser{err: want}
		err := s.close(c)
		assert.Equal(t, want, err)
		assert.Equal(t, ErrClosed, s.err)
	})

	t.Run("no-op on a non-Closer", func(t *testing.T) {
		s := &stateful{}
		assert.NoError(t, s.close(struct{}{}))
		assert.Equal(t, ErrClosed, s.err)
	})

	t.Run("already closed returns ErrClosed again without reclosing", func(t *testing.T) {
		s := &stateful{err: ErrClosed}
		c := &fakeCloser{}
		err := s.close(c)
		assert.ErrorIs(t, err, ErrClosed)
		assert.False(t, c.closed)
	})
}

var _ io.Closer = (*fakeCloser)(nil)
