// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"bytes"
	"io"

	"github.com/fgbgo/flatgeobuf/flat"
	"github.com/fgbgo/flatgeobuf/packedrtree"
	flatbuffers "github.com/google/flatbuffers/go"
)

// FeatureDef is the plain-struct counterpart of the generated
// flat.Feature table, used as FileWriter/Appender input before the
// table bytes exist. Properties is a pre-encoded property blob, e.g.
// produced by PropWriter against the file's column schema.
type FeatureDef struct {
	Geom       *GeomDef
	Properties []byte
}

// bounds returns the bounding box of f's geometry, or EmptyBox if f
// has no geometry.
func (f *FeatureDef) bounds() packedrtree.Box {
	b := packedrtree.EmptyBox
	if f.Geom != nil {
		f.Geom.bounds(&b)
	}
	return b
}

// buildFeature encodes f as a size-prefixed FlatBuffers Feature table
// and writes it to out, returning the number of bytes written.
func buildFeature(out io.Writer, f *FeatureDef) (int, error) {
	b := flatbuffers.NewBuilder(256 + len(f.Properties))

	var geomOffset flatbuffers.UOffsetT
	if f.Geom != nil {
		geomOffset = buildGeometry(b, f.Geom)
	}

	var propsOffset flatbuffers.UOffsetT
	if len(f.Properties) > 0 {
		propsOffset = b.CreateByteVector(f.Properties)
	}

	flat.FeatureStart(b)
	if geomOffset != 0 {
		flat.FeatureAddGeometry(b, geomOffset)
	}
	if propsOffset != 0 {
		flat.FeatureAddProperties(b, propsOffset)
	}
	end := flat.FeatureEnd(b)
	flat.FinishSizePrefixedFeatureBuffer(b, end)

	feat := flat.GetSizePrefixedRootAsFeature(b.FinishedBytes(), 0)
	return writeSizePrefixedTable(out, feat.Table())
}

// encodeProperties is a convenience wrapper that runs enc against a
// PropWriter and returns the resulting blob.
func encodeProperties(enc func(w *PropWriter) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := enc(NewPropWriter(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
