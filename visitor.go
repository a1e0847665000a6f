// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"bytes"
	"fmt"
)

// GeomVisitor receives callbacks describing a geometry's structure in
// a fixed order: a Point/LineString/Polygon/Multi* begin call, the
// coordinates themselves via XY, then the matching end call. Multi*
// and collection geometries nest: MultiBegin/MultiEnd bracket a run of
// child begin/end pairs.
type GeomVisitor interface {
	PointBegin() error
	PointEnd() error
	XY(x, y float64, idx int) error
	LineStringBegin() error
	LineStringEnd() error
	PolygonBegin() error
	PolygonEnd() error
	MultiBegin(kind GeometryType, parts int) error
	MultiEnd() error
}

// DefaultVisitor is a no-op GeomVisitor. Embed it to implement only
// the callbacks a particular visitor cares about.
type DefaultVisitor struct{}

func (DefaultVisitor) PointBegin() error                         { return nil }
func (DefaultVisitor) PointEnd() error                            { return nil }
func (DefaultVisitor) XY(x, y float64, idx int) error             { return nil }
func (DefaultVisitor) LineStringBegin() error                     { return nil }
func (DefaultVisitor) LineStringEnd() error                       { return nil }
func (DefaultVisitor) PolygonBegin() error                        { return nil }
func (DefaultVisitor) PolygonEnd() error                          { return nil }
func (DefaultVisitor) MultiBegin(kind GeometryType, n int) error { return nil }
func (DefaultVisitor) MultiEnd() error                           { return nil }

// VisitGeometry walks a decoded Geometry table depth-first, driving v
// through the fixed begin/xy/end callback sequence. Ring boundaries
// come from Ends (Polygon, MultiLineString); collection membership
// comes from Parts (MultiPolygon, GeometryCollection, and the other
// collection kinds).
func VisitGeometry(g *Geometry, v GeomVisitor) error {
	switch g.Type() {
	case GeometryTypePoint:
		if err := v.PointBegin(); err != nil {
			return err
		}
		if err := visitXY(g, v); err != nil {
			return err
		}
		return v.PointEnd()

	case GeometryTypeLineString:
		if err := v.LineStringBegin(); err != nil {
			return err
		}
		if err := visitXY(g, v); err != nil {
			return err
		}
		return v.LineStringEnd()

	case GeometryTypePolygon:
		if err := v.PolygonBegin(); err != nil {
			return err
		}
		if err := visitRings(g, v); err != nil {
			return err
		}
		return v.PolygonEnd()

	case GeometryTypeMultiPoint:
		return visitMultiPoint(g, v)

	case GeometryTypeMultiLineString:
		n := g.EndsLength()
		if n == 0 {
			n = 1
		}
		if err := v.MultiBegin(g.Type(), n); err != nil {
			return err
		}
		if err := visitRings(g, v); err != nil {
			return err
		}
		return v.MultiEnd()

	default:
		// Heterogeneous collections (MultiPolygon, GeometryCollection,
		// and the curve/surface variants) recurse via Parts, since
		// each member may need its own Ends.
		n := g.PartsLength()
		if err := v.MultiBegin(g.Type(), n); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			var part Geometry
			if !g.Parts(&part, i) {
				return fmtErr("failed to locate geometry part %d", i)
			}
			if err := VisitGeometry(&part, v); err != nil {
				return err
			}
		}
		return v.MultiEnd()
	}
}

// visitXY emits every coordinate pair in g's flat Xy vector.
func visitXY(g *Geometry, v GeomVisitor) error {
	n := g.XyLength()
	if n%2 != 0 {
		return &GeometryFormat{Reason: fmt.Sprintf("xy vector has odd length %d", n)}
	}
	for i := 0; i < n; i += 2 {
		if err := v.XY(g.Xy(i), g.Xy(i+1), i/2); err != nil {
			return err
		}
	}
	return nil
}

// visitRings drives one LineStringBegin/XY.../LineStringEnd sequence
// per ring, as delimited by Ends (in coordinate-pair units), or a
// single ring spanning the whole Xy vector if Ends is absent.
func visitRings(g *Geometry, v GeomVisitor) error {
	m := g.EndsLength()
	if m == 0 {
		if err := v.LineStringBegin(); err != nil {
			return err
		}
		if err := visitXY(g, v); err != nil {
			return err
		}
		return v.LineStringEnd()
	}

	n := g.XyLength()
	if n%2 != 0 {
		return &GeometryFormat{Reason: fmt.Sprintf("xy vector has odd length %d", n)}
	}
	numPairs := uint32(n / 2)

	var start uint32
	for i := 0; i < m; i++ {
		end := g.Ends(i)
		if end < start || end > numPairs {
			return &GeometryFormat{Reason: fmt.Sprintf("ring %d end %d out of range for %d coordinate pairs", i, end, numPairs)}
		}
		if err := v.LineStringBegin(); err != nil {
			return err
		}
		for j := start; j < end; j++ {
			if err := v.XY(g.Xy(int(j)*2), g.Xy(int(j)*2+1), int(j)); err != nil {
				return err
			}
		}
		if err := v.LineStringEnd(); err != nil {
			return err
		}
		start = end
	}
	if start != numPairs {
		return &GeometryFormat{Reason: fmt.Sprintf("rings cover %d of %d coordinate pairs", start, numPairs)}
	}
	return nil
}

// visitMultiPoint drives MultiBegin/MultiEnd around one
// PointBegin/XY/PointEnd triple per coordinate pair, for MultiPoint's
// flat (unparted, unended) representation.
func visitMultiPoint(g *Geometry, v GeomVisitor) error {
	n := g.XyLength() / 2
	if err := v.MultiBegin(g.Type(), n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := v.PointBegin(); err != nil {
			return err
		}
		if err := v.XY(g.Xy(i*2), g.Xy(i*2+1), i); err != nil {
			return err
		}
		if err := v.PointEnd(); err != nil {
			return err
		}
	}
	return v.MultiEnd()
}

// PropVisitor receives one callback per packed (column_index, value)
// pair in a feature's property blob. Property returns true to stop
// iteration early.
type PropVisitor interface {
	Property(colIndex uint16, name string, value interface{}) bool
}

// VisitProperties decodes blob against schema and drives v, stopping
// early if v.Property returns true.
func VisitProperties(schema Schema, blob []byte, v PropVisitor) error {
	vals, err := NewPropReader(bytes.NewReader(blob)).ReadSchema(schema)
	if err != nil {
		return err
	}
	for _, val := range vals {
		if v.Property(val.ColIndex, string(val.Col.Name()), val.Value) {
			break
		}
	}
	return nil
}

// geomNode is GeomBuilder's working representation of one geometry
// being assembled. It is built purely with pointers so that appending
// a new sibling never invalidates an ancestor's address; Finish
// converts the whole tree to GeomDef's value-slice form in one pass.
type geomNode struct {
	typ      GeometryType
	xy       []float64
	ends     []uint32
	children []*geomNode
	// ringMode: nested LineStringBegin/End calls append coordinates to
	// this node directly and record a ring boundary in ends, rather
	// than creating a child node (Polygon, MultiLineString).
	ringMode bool
	// flatMode: nested PointBegin/End calls are no-ops; XY appends
	// straight to this node's xy (MultiPoint).
	flatMode bool
}

func (n *geomNode) toDef() GeomDef {
	d := GeomDef{Type: n.typ, Xy: n.xy, Ends: n.ends}
	if len(n.children) > 0 {
		d.Parts = make([]GeomDef, len(n.children))
		for i, c := range n.children {
			d.Parts[i] = c.toDef()
		}
	}
	return d
}

// GeomBuilder implements GeomVisitor, accumulating callbacks into a
// GeomDef tree suitable for FeatureDef.Geom. It lets a caller stream a
// geometry decoded from another format into a FileWriter without
// constructing the GeomDef by hand.
//
// A GeomBuilder is single-use: create one per feature.
type GeomBuilder struct {
	onFirstType func(GeometryType)
	typeSeen    bool
	root        *geomNode
	stack       []*geomNode
}

// NewGeomBuilder returns a GeomBuilder. onFirstType, if non-nil, is
// called once with the geometry's outermost kind the first time a
// Begin callback arrives; FileWriter uses this to infer and set its
// header's geometry type tag from the first feature observed.
func NewGeomBuilder(onFirstType func(GeometryType)) *GeomBuilder {
	return &GeomBuilder{onFirstType: onFirstType}
}

// Finish returns the completed GeomDef, or nil if no geometry was
// ever begun. It must only be called after the matching sequence of
// End callbacks has completed the geometry.
func (b *GeomBuilder) Finish() *GeomDef {
	if b.root == nil {
		return nil
	}
	d := b.root.toDef()
	return &d
}

func (b *GeomBuilder) cur() *geomNode {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *GeomBuilder) beginPart(t GeometryType, ringMode, flatMode bool) {
	if !b.typeSeen {
		b.typeSeen = true
		if b.onFirstType != nil {
			b.onFirstType(t)
		}
	}
	n := &geomNode{typ: t, ringMode: ringMode, flatMode: flatMode}
	if top := b.cur(); top != nil {
		top.children = append(top.children, n)
	} else {
		b.root = n
	}
	b.stack = append(b.stack, n)
}

func (b *GeomBuilder) endPart() {
	b.stack = b.stack[:len(b.stack)-1]
}

func (b *GeomBuilder) PointBegin() error {
	if top := b.cur(); top != nil && top.flatMode {
		return nil
	}
	b.beginPart(GeometryTypePoint, false, false)
	return nil
}

func (b *GeomBuilder) PointEnd() error {
	if top := b.cur(); top != nil && top.flatMode {
		return nil
	}
	b.endPart()
	return nil
}

func (b *GeomBuilder) LineStringBegin() error {
	if top := b.cur(); top != nil && top.ringMode {
		return nil
	}
	b.beginPart(GeometryTypeLineString, false, false)
	return nil
}

func (b *GeomBuilder) LineStringEnd() error {
	if top := b.cur(); top != nil && top.ringMode {
		top.ends = append(top.ends, uint32(len(top.xy)/2))
		return nil
	}
	b.endPart()
	return nil
}

func (b *GeomBuilder) PolygonBegin() error {
	b.beginPart(GeometryTypePolygon, true, false)
	return nil
}

func (b *GeomBuilder) PolygonEnd() error {
	b.endPart()
	return nil
}

func (b *GeomBuilder) MultiBegin(kind GeometryType, parts int) error {
	switch kind {
	case GeometryTypeMultiPoint:
		b.beginPart(kind, false, true)
	case GeometryTypeMultiLineString:
		b.beginPart(kind, true, false)
	default:
		b.beginPart(kind, false, false)
	}
	return nil
}

func (b *GeomBuilder) MultiEnd() error {
	b.endPart()
	return nil
}

func (b *GeomBuilder) XY(x, y float64, idx int) error {
	top := b.cur()
	if top == nil {
		return fmtErr("XY callback with no open geometry")
	}
	top.xy = append(top.xy, x, y)
	return nil
}

var _ GeomVisitor = (*GeomBuilder)(nil)
