// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"io"
	"math"
	"unsafe"

	flatbuffers "github.com/google/flatbuffers/go"
)

// PropWriter writes a list of key value pairs in FlatGeobuf property
// format to an underlying stream.
type PropWriter struct {
	w io.Writer
}

func NewPropWriter(w io.Writer) *PropWriter {
	if w == nil {
		textPanic("nil writer")
	}
	return &PropWriter{w: w}
}

func (w *PropWriter) WriteByte(v int8) (int, error) {
	return w.w.Write([]byte{byte(v)})
}

func (w *PropWriter) WriteUByte(v uint8) (int, error) {
	return w.w.Write([]byte{v})
}

func (w *PropWriter) WriteBool(v bool) (int, error) {
	if v {
		return w.w.Write([]byte{1})
	}
	return w.w.Write([]byte{0})
}

func (w *PropWriter) WriteShort(v int16) (int, error) {
	return w.writeLE(uint64(uint16(v)), 2)
}

func (w *PropWriter) WriteUShort(v uint16) (int, error) {
	return w.writeLE(uint64(v), 2)
}

func (w *PropWriter) WriteInt(v int32) (int, error) {
	return w.writeLE(uint64(uint32(v)), 4)
}

func (w *PropWriter) WriteUInt(v uint32) (int, error) {
	return w.writeLE(uint64(v), 4)
}

func (w *PropWriter) WriteLong(v int64) (int, error) {
	return w.writeLE(uint64(v), 8)
}

func (w *PropWriter) WriteULong(v uint64) (int, error) {
	return w.writeLE(v, 8)
}

func (w *PropWriter) WriteFloat(v float32) (int, error) {
	b := make([]byte, flatbuffers.SizeFloat32)
	flatbuffers.WriteFloat32(b, v)
	return w.w.Write(b)
}

func (w *PropWriter) WriteDouble(v float64) (int, error) {
	b := make([]byte, flatbuffers.SizeFloat64)
	flatbuffers.WriteFloat64(b, v)
	return w.w.Write(b)
}

// WriteString writes v length-prefixed, the same binary layout as
// WriteBinary; it's also the wire representation ReadString expects,
// for both String and DateTime columns.
func (w *PropWriter) WriteString(v string) (int, error) {
	return w.WriteBinary(unsafe.Slice(unsafe.StringData(v), len(v)))
}

// WriteBinary writes v as a uint32 byte count followed by the raw
// bytes; JSON and binary columns share this layout.
func (w *PropWriter) WriteBinary(v []byte) (int, error) {
	if int64(len(v)) > math.MaxUint32 {
		return 0, fmtErr("property length %d overflows uint32", len(v))
	}
	n, err := w.WriteUInt(uint32(len(v)))
	if err != nil {
		return n, err
	}
	m, err := w.w.Write(v)
	return n + m, err
}

// writeLE writes the low size bytes of v to w.w in little-endian
// order.
func (w *PropWriter) writeLE(v uint64, size int) (int, error) {
	b := make([]byte, size)
	for i := 0; i < size; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return w.w.Write(b)
}
