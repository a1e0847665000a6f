// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import "github.com/fgbgo/flatgeobuf/flat"

// verifyHeader eagerly walks every field of hdr inside
// safeFlatBuffersInteraction, forcing the FlatBuffers runtime to
// resolve each vtable offset now rather than the first time calling
// code happens to touch it. This is the "verified" open path: a
// truncated or corrupt header table panics here, inside the trap,
// instead of surfacing later as an unguarded panic from deep inside
// unrelated code.
//
// It does not validate the header's semantic invariants (e.g. schema
// sanity) beyond what Header.go and prop_reader.go already check;
// it only confirms the table itself is structurally well-formed.
func verifyHeader(hdr *flat.Header) error {
	return safeFlatBuffersInteraction(func() error {
		_ = hdr.Name()
		_ = hdr.GeometryType()
		_ = hdr.HasZ()
		_ = hdr.HasM()
		_ = hdr.HasT()
		_ = hdr.HasTm()
		for i := 0; i < hdr.EnvelopeLength(); i++ {
			_ = hdr.Envelope(i)
		}
		var col flat.Column
		for i, n := 0, hdr.ColumnsLength(); i < n; i++ {
			if hdr.Columns(&col, i) {
				_ = col.Name()
				_ = col.Type()
			}
		}
		var crs flat.Crs
		if hdr.Crs(&crs) != nil {
			_ = crs.Org()
			_ = crs.Code()
		}
		_ = hdr.Title()
		_ = hdr.Description()
		_ = hdr.Metadata()
		_ = hdr.FeaturesCount()
		_ = hdr.IndexNodeSize()
		_ = hdr.MutabilityVersion()
		return nil
	})
}

// verifyFeature is verifyHeader's counterpart for a decoded feature
// frame: it walks the geometry and properties vectors' lengths (and,
// for geometry, every coordinate and sub-part) so a malformed frame
// panics inside the trap at read time rather than later, wherever the
// caller happens to first touch the bad offset.
func verifyFeature(f *flat.Feature) error {
	return safeFlatBuffersInteraction(func() error {
		var g flat.Geometry
		if f.Geometry(&g) != nil {
			if err := verifyGeometry(&g); err != nil {
				return err
			}
		}
		_ = f.PropertiesLength()
		var col flat.Column
		for i, n := 0, f.ColumnsLength(); i < n; i++ {
			if f.Columns(&col, i) {
				_ = col.Name()
			}
		}
		return nil
	})
}

func verifyGeometry(g *flat.Geometry) error {
	_ = g.Type()
	for i, n := 0, g.XyLength(); i < n; i++ {
		_ = g.Xy(i)
	}
	for i, n := 0, g.ZLength(); i < n; i++ {
		_ = g.Z(i)
	}
	for i, n := 0, g.MLength(); i < n; i++ {
		_ = g.M(i)
	}
	for i, n := 0, g.EndsLength(); i < n; i++ {
		_ = g.Ends(i)
	}
	var part flat.Geometry
	for i, n := 0, g.PartsLength(); i < n; i++ {
		if g.Parts(&part, i) {
			if err := verifyGeometry(&part); err != nil {
				return err
			}
		}
	}
	return nil
}
