// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import (
	"errors"
	"fmt"
)

// pkgPrefix is prepended to every error and panic message raised by
// this package, so a bare error string identifies its source without
// needing a stack trace.
const pkgPrefix = "packedrtree: "

// newErr builds a plain, unformatted error scoped to this package.
func newErr(msg string) error {
	return errors.New(pkgPrefix + msg)
}

// newErrf builds a formatted error scoped to this package.
func newErrf(format string, a ...interface{}) error {
	return fmt.Errorf(pkgPrefix+format, a...)
}

// wrapErrf formats msg and appends cause as a wrapped %w so callers
// can errors.Is/errors.As through to it.
func wrapErrf(msg string, cause error, a ...interface{}) error {
	return fmt.Errorf(pkgPrefix+msg+": %w", append(a, cause)...)
}

// panicMsg panics with a plain message scoped to this package. Reserved
// for programmer-error conditions (bad arguments), never for something
// a caller is expected to recover from.
func panicMsg(msg string) {
	panic(pkgPrefix + msg)
}

// panicMsgf panics with a formatted message scoped to this package.
func panicMsgf(format string, a ...interface{}) {
	panic(fmt.Sprintf(pkgPrefix+format, a...))
}
