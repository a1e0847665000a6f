// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"fmt"
	"io"
	"math"
	"unsafe"

	flatbuffers "github.com/google/flatbuffers/go"
)

// PropReader decodes a feature's packed property blob: a sequence of
// (uint16 column_index, typed value) pairs, terminated by EOF. The
// column index selects a Column from the Schema passed to ReadSchema,
// whose Type says which Read* method decodes the value that follows.
type PropReader struct {
	r io.Reader
}

func NewPropReader(r io.Reader) *PropReader {
	if r == nil {
		textPanic("nil reader")
	}
	return &PropReader{r: r}
}

func (r *PropReader) ReadByte() (int8, error) {
	v, err := r.readLE(1)
	return int8(v), err
}

func (r *PropReader) ReadUByte() (uint8, error) {
	v, err := r.readLE(1)
	return uint8(v), err
}

func (r *PropReader) ReadBool() (bool, error) {
	v, err := r.readLE(1)
	return v > 0, err
}

func (r *PropReader) ReadShort() (int16, error) {
	v, err := r.readLE(2)
	return int16(v), err
}

func (r *PropReader) ReadUShort() (uint16, error) {
	v, err := r.readLE(2)
	return uint16(v), err
}

func (r *PropReader) ReadInt() (int32, error) {
	v, err := r.readLE(4)
	return int32(v), err
}

func (r *PropReader) ReadUInt() (uint32, error) {
	v, err := r.readLE(4)
	return uint32(v), err
}

func (r *PropReader) ReadLong() (int64, error) {
	v, err := r.readLE(8)
	return int64(v), err
}

func (r *PropReader) ReadULong() (uint64, error) {
	return r.readLE(8)
}

func (r *PropReader) ReadFloat() (float32, error) {
	b := make([]byte, flatbuffers.SizeFloat32)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return 0, err
	}
	return flatbuffers.GetFloat32(b), nil
}

func (r *PropReader) ReadDouble() (float64, error) {
	b := make([]byte, flatbuffers.SizeFloat64)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return 0, err
	}
	return flatbuffers.GetFloat64(b), nil
}

// ReadString reads a length-prefixed blob and reinterprets it as a
// string without copying; the backing bytes must not be modified
// afterward. It also decodes the DateTime column type, which shares
// this wire layout.
func (r *PropReader) ReadString() (string, error) {
	b, err := r.ReadBinary()
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}
	return unsafe.String(&b[0], len(b)), nil
}

// ReadBinary reads a uint32 byte count followed by the raw bytes; the
// Json column type shares this wire layout.
func (r *PropReader) ReadBinary() ([]byte, error) {
	n, err := r.ReadUInt()
	if err != nil {
		return nil, err
	}
	if int64(n) > math.MaxInt {
		return nil, fmtErr("property length %d overflows int", n)
	}
	b := make([]byte, int(n))
	if _, err = io.ReadFull(r.r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// readLE reads size little-endian bytes and returns them widened into
// a uint64, for size in {1, 2, 4, 8}.
func (r *PropReader) readLE(size int) (uint64, error) {
	b := make([]byte, size)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return 0, err
	}
	var v uint64
	for i := size - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// PropValue is one decoded (column, value) pair from ReadSchema.
type PropValue struct {
	Col      Column
	Value    interface{}
	ColIndex uint16
	Type     ColumnType
}

// ReadSchema decodes every (column_index, value) pair in the blob
// against schema, returning one PropValue per pair in wire order.
func (r *PropReader) ReadSchema(schema Schema) ([]PropValue, error) {
	n := schema.ColumnsLength()
	vals := make([]PropValue, 0, n)

	for {
		col, err := r.ReadUShort()
		if err == io.EOF {
			return vals, nil
		} else if err != nil {
			return nil, fmtErr("error reading column index")
		}
		i := int(col)
		if i >= n {
			return nil, &InvalidSchema{Reason: fmt.Sprintf("column index %d not in schema (%d columns)", i, n)}
		}
		val := PropValue{
			ColIndex: col,
		}
		if !schema.Columns(&val.Col, i) {
			return nil, &InvalidSchema{Reason: fmt.Sprintf("failed to locate column %d", i)}
		}
		val.Type = val.Col.Type()
		switch val.Type {
		case ColumnTypeByte:
			val.Value, err = r.ReadByte()
		case ColumnTypeUByte:
			val.Value, err = r.ReadUByte()
		case ColumnTypeBool:
			val.Value, err = r.ReadBool()
		case ColumnTypeShort:
			val.Value, err = r.ReadShort()
		case ColumnTypeUShort:
			val.Value, err = r.ReadUShort()
		case ColumnTypeInt:
			val.Value, err = r.ReadInt()
		case ColumnTypeUInt:
			val.Value, err = r.ReadUInt()
		case ColumnTypeLong:
			val.Value, err = r.ReadLong()
		case ColumnTypeULong:
			val.Value, err = r.ReadULong()
		case ColumnTypeFloat:
			val.Value, err = r.ReadFloat()
		case ColumnTypeDouble:
			val.Value, err = r.ReadDouble()
		case ColumnTypeString, ColumnTypeDateTime:
			val.Value, err = r.ReadString()
		case ColumnTypeJson, ColumnTypeBinary:
			val.Value, err = r.ReadBinary()
		default:
			fmtPanic("unknown column type: %s", val.Type)
		}
		if err != nil {
			return nil, err
		}
		vals = append(vals, val)
	}
}
