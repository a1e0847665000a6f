// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"fmt"
	"io"
)

// stage tracks a reader's position in its Header -> Index/IndexSearch
// -> Data lifecycle. Every exported method that advances the
// lifecycle calls toState to enforce the required call order; once an
// operation fails, a reader's err field latches and every subsequent
// call returns it unchanged.
type stage int

const (
	stageBeforeHeader stage = iota
	stageAfterHeader
	stageAfterIndex
	stageInData
)

func (s stage) String() string {
	switch s {
	case stageBeforeHeader:
		return "beforeHeader"
	case stageAfterHeader:
		return "afterHeader"
	case stageAfterIndex:
		return "afterIndex"
	case stageInData:
		return "inData"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// stateful is embedded by FileReader and SequentialReader to share
// lifecycle tracking and the latch-on-first-error discipline §7
// requires of every reader/writer.
type stateful struct {
	state  stage
	err    error
	verify bool
}

// toState advances from expected to to, or returns errUnexpectedState
// if the reader isn't in expected. Once err is set it is returned
// unconditionally, regardless of state.
func (s *stateful) toState(expected, to stage) error {
	if s.err != nil {
		return s.err
	}
	if s.state != expected {
		return errUnexpectedState
	}
	s.state = to
	return nil
}

// toErr latches err as the reader's permanent error state. Calling it
// twice is a bug in this package: once latched, every public method
// must check err and return early rather than reach toErr again.
func (s *stateful) toErr(err error) error {
	if s.err != nil {
		fmtPanic("logic error: already in error state (%v)", s.err)
	}
	s.err = err
	return err
}

// close latches ErrClosed and, if a is an io.Closer, closes it.
// Calling close on an already-closed stateful is a no-op that returns
// ErrClosed again rather than re-closing a.
func (s *stateful) close(a interface{}) error {
	if s.err == ErrClosed {
		return ErrClosed
	}
	s.err = ErrClosed
	if c, ok := a.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return nil
}
