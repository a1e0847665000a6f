// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"github.com/fgbgo/flatgeobuf/flat"
	"github.com/fgbgo/flatgeobuf/packedrtree"
	flatbuffers "github.com/google/flatbuffers/go"
)

// GeomDef is the plain-struct counterpart of the generated flat.Geometry
// table, used as FileWriter/Appender input before the table bytes
// exist. Collections (MultiPolygon, GeometryCollection, ...) nest via
// Parts; Polygon and MultiLineString linearize ring boundaries via
// Ends, expressed in coordinate-pair units.
type GeomDef struct {
	Type  GeometryType
	Xy    []float64
	Z     []float64
	M     []float64
	T     []float64
	Tm    []uint64
	Ends  []uint32
	Parts []GeomDef
}

// buildGeometry encodes g as a FlatBuffers Geometry table, recursing
// into Parts depth-first since nested tables must be finished before
// the table that references them.
func buildGeometry(b *flatbuffers.Builder, g *GeomDef) flatbuffers.UOffsetT {
	var partOffsets []flatbuffers.UOffsetT
	for i := range g.Parts {
		partOffsets = append(partOffsets, buildGeometry(b, &g.Parts[i]))
	}

	var endsVec, xyVec, zVec, mVec, tVec, tmVec, partsVec flatbuffers.UOffsetT
	if len(g.Ends) > 0 {
		flat.GeometryStartEndsVector(b, len(g.Ends))
		for i := len(g.Ends) - 1; i >= 0; i-- {
			b.PrependUint32(g.Ends[i])
		}
		endsVec = b.EndVector(len(g.Ends))
	}
	if len(g.Xy) > 0 {
		flat.GeometryStartXyVector(b, len(g.Xy))
		for i := len(g.Xy) - 1; i >= 0; i-- {
			b.PrependFloat64(g.Xy[i])
		}
		xyVec = b.EndVector(len(g.Xy))
	}
	if len(g.Z) > 0 {
		flat.GeometryStartZVector(b, len(g.Z))
		for i := len(g.Z) - 1; i >= 0; i-- {
			b.PrependFloat64(g.Z[i])
		}
		zVec = b.EndVector(len(g.Z))
	}
	if len(g.M) > 0 {
		flat.GeometryStartMVector(b, len(g.M))
		for i := len(g.M) - 1; i >= 0; i-- {
			b.PrependFloat64(g.M[i])
		}
		mVec = b.EndVector(len(g.M))
	}
	if len(g.T) > 0 {
		flat.GeometryStartTVector(b, len(g.T))
		for i := len(g.T) - 1; i >= 0; i-- {
			b.PrependFloat64(g.T[i])
		}
		tVec = b.EndVector(len(g.T))
	}
	if len(g.Tm) > 0 {
		flat.GeometryStartTmVector(b, len(g.Tm))
		for i := len(g.Tm) - 1; i >= 0; i-- {
			b.PrependUint64(g.Tm[i])
		}
		tmVec = b.EndVector(len(g.Tm))
	}
	if len(partOffsets) > 0 {
		flat.GeometryStartPartsVector(b, len(partOffsets))
		for i := len(partOffsets) - 1; i >= 0; i-- {
			b.PrependUOffsetT(partOffsets[i])
		}
		partsVec = b.EndVector(len(partOffsets))
	}

	flat.GeometryStart(b)
	if endsVec != 0 {
		flat.GeometryAddEnds(b, endsVec)
	}
	if xyVec != 0 {
		flat.GeometryAddXy(b, xyVec)
	}
	if zVec != 0 {
		flat.GeometryAddZ(b, zVec)
	}
	if mVec != 0 {
		flat.GeometryAddM(b, mVec)
	}
	if tVec != 0 {
		flat.GeometryAddT(b, tVec)
	}
	if tmVec != 0 {
		flat.GeometryAddTm(b, tmVec)
	}
	flat.GeometryAddType(b, g.Type)
	if partsVec != 0 {
		flat.GeometryAddParts(b, partsVec)
	}
	return flat.GeometryEnd(b)
}

// bounds computes g's bounding box by walking Xy directly and
// recursing into Parts, mirroring (*Geometry).bounds in stringers.go
// but operating on the pre-build GeomDef instead of decoded tables.
func (g *GeomDef) bounds(b *packedrtree.Box) {
	for i := 0; i+1 < len(g.Xy); i += 2 {
		b.ExpandXY(g.Xy[i], g.Xy[i+1])
	}
	for i := range g.Parts {
		g.Parts[i].bounds(b)
	}
}
