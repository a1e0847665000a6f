// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/fgbgo/flatgeobuf"
	"github.com/paulmach/orb"
)

// geometryToOrb converts a decoded FlatGeobuf geometry to its orb
// equivalent. Ring boundaries recorded via Ends become orb.Ring
// members of a Polygon/MultiLineString; Parts become orb.Collection
// or the Multi* slice types.
func geometryToOrb(g *flatgeobuf.Geometry) (orb.Geometry, error) {
	switch g.Type() {
	case flatgeobuf.GeometryTypePoint:
		pts := xyPoints(g)
		if len(pts) == 0 {
			return orb.Point{}, nil
		}
		return orb.Point(pts[0]), nil

	case flatgeobuf.GeometryTypeLineString:
		return orb.LineString(xyPoints(g)), nil

	case flatgeobuf.GeometryTypePolygon:
		return orb.Polygon(rings(g)), nil

	case flatgeobuf.GeometryTypeMultiPoint:
		return orb.MultiPoint(xyPoints(g)), nil

	case flatgeobuf.GeometryTypeMultiLineString:
		rs := rings(g)
		mls := make(orb.MultiLineString, len(rs))
		for i, r := range rs {
			mls[i] = orb.LineString(r)
		}
		return mls, nil

	case flatgeobuf.GeometryTypeMultiPolygon:
		mp := make(orb.MultiPolygon, g.PartsLength())
		for i := range mp {
			part, err := geometryPart(g, i)
			if err != nil {
				return nil, err
			}
			sub, err := geometryToOrb(part)
			if err != nil {
				return nil, err
			}
			poly, ok := sub.(orb.Polygon)
			if !ok {
				return nil, fgbutilErrf("multipolygon part %d is not a polygon", i)
			}
			mp[i] = poly
		}
		return mp, nil

	default:
		coll := make(orb.Collection, g.PartsLength())
		for i := range coll {
			part, err := geometryPart(g, i)
			if err != nil {
				return nil, err
			}
			sub, err := geometryToOrb(part)
			if err != nil {
				return nil, err
			}
			coll[i] = sub
		}
		return coll, nil
	}
}

func geometryPart(g *flatgeobuf.Geometry, i int) (*flatgeobuf.Geometry, error) {
	var part flatgeobuf.Geometry
	if !g.Parts(&part, i) {
		return nil, fgbutilErrf("failed to locate geometry part %d", i)
	}
	return &part, nil
}

// xyPoints returns g's flat Xy vector as a slice of orb.Point.
func xyPoints(g *flatgeobuf.Geometry) []orb.Point {
	n := g.XyLength() / 2
	pts := make([]orb.Point, n)
	for i := 0; i < n; i++ {
		pts[i] = orb.Point{g.Xy(i * 2), g.Xy(i*2 + 1)}
	}
	return pts
}

// rings splits g's Xy vector into rings at the boundaries recorded in
// Ends, or returns the whole vector as a single ring if Ends is empty.
func rings(g *flatgeobuf.Geometry) []orb.Ring {
	m := g.EndsLength()
	if m == 0 {
		return []orb.Ring{orb.Ring(xyPoints(g))}
	}
	all := xyPoints(g)
	out := make([]orb.Ring, m)
	var start uint32
	for i := 0; i < m; i++ {
		end := g.Ends(i)
		out[i] = orb.Ring(all[start:end])
		start = end
	}
	return out
}

// orbToGeomDef converts an orb geometry to a GeomDef tree suitable for
// a FeatureDef, inferring the matching GeometryType.
func orbToGeomDef(o orb.Geometry) (*flatgeobuf.GeomDef, error) {
	switch v := o.(type) {
	case orb.Point:
		return &flatgeobuf.GeomDef{Type: flatgeobuf.GeometryTypePoint, Xy: flattenPoints([]orb.Point{v})}, nil

	case orb.LineString:
		return &flatgeobuf.GeomDef{Type: flatgeobuf.GeometryTypeLineString, Xy: flattenPoints(v)}, nil

	case orb.Polygon:
		xy, ends := flattenRings(v)
		return &flatgeobuf.GeomDef{Type: flatgeobuf.GeometryTypePolygon, Xy: xy, Ends: ends}, nil

	case orb.MultiPoint:
		return &flatgeobuf.GeomDef{Type: flatgeobuf.GeometryTypeMultiPoint, Xy: flattenPoints(v)}, nil

	case orb.MultiLineString:
		rs := make([]orb.Ring, len(v))
		for i, ls := range v {
			rs[i] = orb.Ring(ls)
		}
		xy, ends := flattenRings(rs)
		return &flatgeobuf.GeomDef{Type: flatgeobuf.GeometryTypeMultiLineString, Xy: xy, Ends: ends}, nil

	case orb.MultiPolygon:
		parts := make([]flatgeobuf.GeomDef, len(v))
		for i, poly := range v {
			d, err := orbToGeomDef(poly)
			if err != nil {
				return nil, err
			}
			parts[i] = *d
		}
		return &flatgeobuf.GeomDef{Type: flatgeobuf.GeometryTypeMultiPolygon, Parts: parts}, nil

	case orb.Collection:
		parts := make([]flatgeobuf.GeomDef, len(v))
		for i, g := range v {
			d, err := orbToGeomDef(g)
			if err != nil {
				return nil, err
			}
			parts[i] = *d
		}
		return &flatgeobuf.GeomDef{Type: flatgeobuf.GeometryTypeGeometryCollection, Parts: parts}, nil

	default:
		return nil, fgbutilErrf("unsupported geometry type %T", o)
	}
}

func flattenPoints(pts []orb.Point) []float64 {
	xy := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		xy = append(xy, p[0], p[1])
	}
	return xy
}

func flattenRings(rs []orb.Ring) (xy []float64, ends []uint32) {
	ends = make([]uint32, len(rs))
	for i, r := range rs {
		xy = append(xy, flattenPoints(r)...)
		ends[i] = uint32(len(xy) / 2)
	}
	return
}
