// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"github.com/fgbgo/flatgeobuf/flat"
)

// Feature is a single record's geometry and properties, as laid out
// in the FlatGeobuf feature table.
type Feature = flat.Feature

// Geometry is a FlatGeobuf geometry, recursively composed of parts
// for multi-part and collection geometry types.
type Geometry = flat.Geometry

// GeometryType enumerates the geometry kinds a Geometry's Type method
// can return.
type GeometryType = flat.GeometryType

// Column describes one field of a feature's schema.
type Column = flat.Column

// ColumnType enumerates the primitive types a Column's Type method
// can return.
type ColumnType = flat.ColumnType

// Header is the file-level FlatGeobuf header table.
type Header = flat.Header

// Crs describes a coordinate reference system.
type Crs = flat.Crs

const (
	ColumnTypeByte     = flat.ColumnTypeByte
	ColumnTypeUByte    = flat.ColumnTypeUByte
	ColumnTypeBool     = flat.ColumnTypeBool
	ColumnTypeShort    = flat.ColumnTypeShort
	ColumnTypeUShort   = flat.ColumnTypeUShort
	ColumnTypeInt      = flat.ColumnTypeInt
	ColumnTypeUInt     = flat.ColumnTypeUInt
	ColumnTypeLong     = flat.ColumnTypeLong
	ColumnTypeULong    = flat.ColumnTypeULong
	ColumnTypeFloat    = flat.ColumnTypeFloat
	ColumnTypeDouble   = flat.ColumnTypeDouble
	ColumnTypeString   = flat.ColumnTypeString
	ColumnTypeJson     = flat.ColumnTypeJson
	ColumnTypeDateTime = flat.ColumnTypeDateTime
	ColumnTypeBinary   = flat.ColumnTypeBinary
)

const (
	GeometryTypeUnknown            = flat.GeometryTypeUnknown
	GeometryTypePoint               = flat.GeometryTypePoint
	GeometryTypeMultiPoint          = flat.GeometryTypeMultiPoint
	GeometryTypeLineString          = flat.GeometryTypeLineString
	GeometryTypeMultiLineString     = flat.GeometryTypeMultiLineString
	GeometryTypePolygon             = flat.GeometryTypePolygon
	GeometryTypeMultiPolygon        = flat.GeometryTypeMultiPolygon
	GeometryTypeGeometryCollection  = flat.GeometryTypeGeometryCollection
	GeometryTypeCircularString      = flat.GeometryTypeCircularString
	GeometryTypeCompoundCurve       = flat.GeometryTypeCompoundCurve
	GeometryTypeCurvePolygon        = flat.GeometryTypeCurvePolygon
	GeometryTypeMultiCurve          = flat.GeometryTypeMultiCurve
	GeometryTypeMultiSurface        = flat.GeometryTypeMultiSurface
	GeometryTypeTriangle            = flat.GeometryTypeTriangle
	GeometryTypePolyhedralSurface   = flat.GeometryTypePolyhedralSurface
	GeometryTypeTIN                 = flat.GeometryTypeTIN
)

// Schema is the subset of Header's column accessors needed to decode
// a feature's packed properties. *Header satisfies it directly.
type Schema interface {
	ColumnsLength() int
	Columns(obj *Column, j int) bool
}
