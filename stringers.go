// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fgbgo/flatgeobuf/packedrtree"
)

func (f *Feature) String() string {
	return f.string(f)
}

func (f *Feature) StringSchema(s Schema) string {
	return f.string(f, s)
}

func (f *Feature) string(s ...Schema) string {
	var b strings.Builder
	b.WriteString("Feature{Geometry:")
	if err := f.stringGeom(&b); err != nil {
		return "error: geometry: " + err.Error()
	}
	b.WriteString(",Properties:{")
	if err := f.stringProps(&b, s...); err != nil {
		return "error: properties: " + err.Error()
	}
	b.WriteString("}}")
	return b.String()
}

func (f *Feature) stringGeom(b *strings.Builder) error {
	return safeFlatBuffersInteraction(func() error {
		var g Geometry
		if f.Geometry(&g) == nil {
			b.WriteString("<nil>")
			return nil
		}
		b.WriteString("{Type:")
		b.WriteString(g.Type().String())
		b.WriteString(",Bounds:")
		bounds, err := geometryBounds(&g)
		if err != nil {
			return err
		}
		if bounds == packedrtree.EmptyBox {
			b.WriteString("<nil>")
		} else {
			b.WriteString(bounds.String())
		}
		b.WriteByte('}')
		return nil
	})
}

func (f *Feature) stringProps(b *strings.Builder, s ...Schema) error {
	return safeFlatBuffersInteraction(func() error {
		// Pick the lowest indexed schema which has at least one
		// column.
		schema := s[0]
		n := schema.ColumnsLength()
		for i := 1; i < len(s) && n == 0; i++ {
			if n2 := s[i].ColumnsLength(); n2 > 0 {
				schema = s[i]
				n = n2
			}
		}
		vals, err := NewPropReader(bytes.NewReader(f.PropertiesBytes())).ReadSchema(schema)
		if err != nil {
			return err
		}
		for i := range vals {
			if i > 0 {
				b.WriteByte(',')
			}
			stringProp(b, &vals[i], i)
		}
		return nil
	})
}

func stringProp(b *strings.Builder, v *PropValue, i int) {
	if len(v.Col.Name()) > 0 {
		b.Write(v.Col.Name())
	} else {
		fmt.Fprintf(b, "[%d]", i)
	}
	b.WriteByte(':')
	fmt.Fprint(b, v.Value)
}

// boundsVisitor accumulates a Geometry's bounding box by watching every
// XY callback VisitGeometry drives it through; it relies on VisitGeometry
// to recurse through Parts, so it never needs to walk the tree itself.
type boundsVisitor struct {
	DefaultVisitor
	box packedrtree.Box
}

func (v *boundsVisitor) XY(x, y float64, idx int) error {
	v.box.ExpandXY(x, y)
	return nil
}

// geometryBounds computes g's bounding box by replaying it through
// VisitGeometry, the same traversal GeomBuilder and external encoders
// use, rather than maintaining a second recursive walk over Parts.
func geometryBounds(g *Geometry) (packedrtree.Box, error) {
	v := boundsVisitor{box: packedrtree.EmptyBox}
	if err := VisitGeometry(g, &v); err != nil {
		return packedrtree.EmptyBox, err
	}
	return v.box, nil
}
