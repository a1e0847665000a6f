// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package packedrtree implements the packed Hilbert R-Tree used to
// index a FlatGeobuf file's features: build it in memory from a
// Hilbert-sorted reference list, serialize/deserialize it to the
// on-disk node layout, and search it either in memory, against a
// seekable source, or incrementally against a buffered HTTP range
// client.
//
// Nothing here depends on the rest of the flatgeobuf module; the index
// is a self-contained bbox structure that happens to match FlatGeobuf's
// wire format.
package packedrtree
