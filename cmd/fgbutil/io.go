// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/fgbgo/flatgeobuf"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// record is one feature's geometry and decoded properties, independent
// of whichever format it was read from.
type record struct {
	geom  orb.Geometry
	props map[string]interface{}
}

// collection is the in-memory form every conversion routes through:
// read into a collection from one format, then write a collection out
// in the other.
type collection struct {
	name         string
	geometryType flatgeobuf.GeometryType
	columns      []flatgeobuf.ColumnDef
	records      []record
}

// readFgb reads every feature from a FlatGeobuf stream.
func readFgb(rs io.ReadSeeker) (*collection, error) {
	r := flatgeobuf.NewFileReader(rs)
	hdr, err := r.Header()
	if err != nil {
		return nil, fmt.Errorf("fgbutil: %w", err)
	}
	if _, err = r.Index(); err != nil {
		return nil, fmt.Errorf("fgbutil: %w", err)
	}
	feats, err := r.DataRem()
	if err != nil {
		return nil, fmt.Errorf("fgbutil: %w", err)
	}

	c := &collection{
		name:         string(hdr.Name()),
		geometryType: hdr.GeometryType(),
		columns:      columnsFromHeader(hdr),
		records:      make([]record, len(feats)),
	}

	for i := range feats {
		f := &feats[i]
		var g orb.Geometry
		if geom := f.Geometry(nil); geom != nil {
			if g, err = geometryToOrb(geom); err != nil {
				return nil, err
			}
		}
		props := map[string]interface{}{}
		if blob := f.PropertiesBytes(); len(blob) > 0 {
			vals, err := flatgeobuf.NewPropReader(bytes.NewReader(blob)).ReadSchema(hdr)
			if err != nil {
				return nil, fmt.Errorf("fgbutil: %w", err)
			}
			for _, v := range vals {
				props[string(v.Col.Name())] = v.Value
			}
		}
		c.records[i] = record{geom: g, props: props}
	}
	return c, nil
}

func columnsFromHeader(hdr *flatgeobuf.Header) []flatgeobuf.ColumnDef {
	n := hdr.ColumnsLength()
	cols := make([]flatgeobuf.ColumnDef, n)
	var col flatgeobuf.Column
	for i := 0; i < n; i++ {
		hdr.Columns(&col, i)
		cols[i] = flatgeobuf.ColumnDef{
			Name:        string(col.Name()),
			Type:        col.Type(),
			Title:       string(col.Title()),
			Description: string(col.Description()),
			Width:       col.Width(),
			Precision:   col.Precision(),
			Scale:       col.Scale(),
			Nullable:    col.Nullable(),
			Unique:      col.Unique(),
			PrimaryKey:  col.PrimaryKey(),
			Metadata:    string(col.Metadata()),
		}
	}
	return cols
}

// readGeoJSON reads a GeoJSON FeatureCollection.
func readGeoJSON(r io.Reader) (*collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("fgbutil: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("fgbutil: failed to parse geojson: %w", err)
	}

	c := &collection{
		name:    "features",
		columns: inferColumns(fc),
		records: make([]record, len(fc.Features)),
	}
	for i, f := range fc.Features {
		c.records[i] = record{geom: f.Geometry, props: map[string]interface{}(f.Properties)}
	}
	if len(fc.Features) > 0 {
		d, err := orbToGeomDef(fc.Features[0].Geometry)
		if err == nil {
			c.geometryType = d.Type
		}
	}
	return c, nil
}

// inferColumns derives a column schema from the union of every
// feature's property keys, in sorted order, typing each column from
// the first non-nil value observed for it.
func inferColumns(fc *geojson.FeatureCollection) []flatgeobuf.ColumnDef {
	seen := map[string]bool{}
	var names []string
	types := map[string]flatgeobuf.ColumnType{}
	for _, f := range fc.Features {
		for k, v := range f.Properties {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
			if _, ok := types[k]; !ok && v != nil {
				types[k] = columnTypeOf(v)
			}
		}
	}
	sort.Strings(names)
	cols := make([]flatgeobuf.ColumnDef, len(names))
	for i, n := range names {
		t, ok := types[n]
		if !ok {
			t = flatgeobuf.ColumnTypeString
		}
		cols[i] = flatgeobuf.ColumnDef{Name: n, Type: t, Nullable: true}
	}
	return cols
}

func columnTypeOf(v interface{}) flatgeobuf.ColumnType {
	switch v.(type) {
	case bool:
		return flatgeobuf.ColumnTypeBool
	case float64:
		return flatgeobuf.ColumnTypeDouble
	case string:
		return flatgeobuf.ColumnTypeString
	default:
		return flatgeobuf.ColumnTypeJson
	}
}

// writeGeoJSON writes c as a GeoJSON FeatureCollection.
func writeGeoJSON(w io.Writer, c *collection) error {
	fc := geojson.NewFeatureCollection()
	for _, rec := range c.records {
		f := geojson.NewFeature(rec.geom)
		f.Properties = geojson.Properties(rec.props)
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("fgbutil: failed to marshal geojson: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// writeFgb writes c as a FlatGeobuf file, indexed if withIndex is set.
func writeFgb(w io.Writer, c *collection, withIndex bool) error {
	fw, err := flatgeobuf.NewFileWriter(c.name, c.geometryType, c.columns)
	if err != nil {
		return fmt.Errorf("fgbutil: %w", err)
	}
	if !withIndex {
		fw.DisableIndex()
	}
	defer fw.Close()

	colIndex := make(map[string]uint16, len(c.columns))
	for i, col := range c.columns {
		colIndex[col.Name] = uint16(i)
	}

	for _, rec := range c.records {
		var geomDef *flatgeobuf.GeomDef
		if rec.geom != nil {
			if geomDef, err = orbToGeomDef(rec.geom); err != nil {
				return err
			}
		}
		var buf bytes.Buffer
		if err = writeProps(flatgeobuf.NewPropWriter(&buf), c.columns, colIndex, rec.props); err != nil {
			return fmt.Errorf("fgbutil: %w", err)
		}
		if err = fw.Add(&flatgeobuf.FeatureDef{Geom: geomDef, Properties: buf.Bytes()}); err != nil {
			return fmt.Errorf("fgbutil: %w", err)
		}
	}
	return fw.Write(w)
}

func writeProps(pw *flatgeobuf.PropWriter, cols []flatgeobuf.ColumnDef, colIndex map[string]uint16, props map[string]interface{}) error {
	for name, v := range props {
		if v == nil {
			continue
		}
		idx, ok := colIndex[name]
		if !ok {
			continue
		}
		if _, err := pw.WriteUShort(idx); err != nil {
			return err
		}
		switch cols[idx].Type {
		case flatgeobuf.ColumnTypeBool:
			b, _ := v.(bool)
			if _, err := pw.WriteBool(b); err != nil {
				return err
			}
		case flatgeobuf.ColumnTypeDouble:
			f, _ := v.(float64)
			if _, err := pw.WriteDouble(f); err != nil {
				return err
			}
		case flatgeobuf.ColumnTypeString:
			s := fmt.Sprintf("%v", v)
			if _, err := pw.WriteString(s); err != nil {
				return err
			}
		default:
			s := fmt.Sprintf("%v", v)
			if _, err := pw.WriteBinary([]byte(s)); err != nil {
				return err
			}
		}
	}
	return nil
}
