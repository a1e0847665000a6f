// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"io"

	"github.com/fgbgo/flatgeobuf/flat"
	"github.com/fgbgo/flatgeobuf/packedrtree"
	flatbuffers "github.com/google/flatbuffers/go"
)

// ColumnDef describes one feature attribute column to be included in
// a file's header. It is the plain-struct counterpart of the
// generated flat.Column table accessor, used as FileWriter/Appender
// input before the table bytes exist.
type ColumnDef struct {
	Name        string
	Type        ColumnType
	Title       string
	Description string
	Width       int32
	Precision   int32
	Scale       int32
	Nullable    bool
	Unique      bool
	PrimaryKey  bool
	Metadata    string
}

// CrsDef describes a coordinate reference system to embed in a
// file's header.
type CrsDef struct {
	Org         string
	Code        int32
	Name        string
	Description string
	Wkt         string
	CodeString  string
}

// headerFields carries everything needed to build and emit a header
// table, shared by FileWriter and Appender.
type headerFields struct {
	name               string
	geometryType       GeometryType
	hasZ, hasM, hasT   bool
	hasTm              bool
	columns            []ColumnDef
	featuresCount      uint64
	indexNodeSize      uint16
	crs                *CrsDef
	title              string
	description        string
	metadata           string
	mutabilityVersion  uint16
	envelope           *packedrtree.Box
}

// buildHeader encodes fields as a FlatBuffers Header table and writes
// it, size-prefixed, to out. It returns the number of bytes written.
func buildHeader(out io.Writer, f *headerFields) (int, error) {
	b := flatbuffers.NewBuilder(1024)

	var colOffsets []flatbuffers.UOffsetT
	for i := range f.columns {
		c := &f.columns[i]
		name := b.CreateString(c.Name)
		var title, desc, meta flatbuffers.UOffsetT
		if c.Title != "" {
			title = b.CreateString(c.Title)
		}
		if c.Description != "" {
			desc = b.CreateString(c.Description)
		}
		if c.Metadata != "" {
			meta = b.CreateString(c.Metadata)
		}
		flat.ColumnStart(b)
		flat.ColumnAddName(b, name)
		flat.ColumnAddType(b, c.Type)
		if title != 0 {
			flat.ColumnAddTitle(b, title)
		}
		if desc != 0 {
			flat.ColumnAddDescription(b, desc)
		}
		flat.ColumnAddWidth(b, c.Width)
		flat.ColumnAddPrecision(b, c.Precision)
		flat.ColumnAddScale(b, c.Scale)
		flat.ColumnAddNullable(b, c.Nullable)
		flat.ColumnAddUnique(b, c.Unique)
		flat.ColumnAddPrimaryKey(b, c.PrimaryKey)
		if meta != 0 {
			flat.ColumnAddMetadata(b, meta)
		}
		colOffsets = append(colOffsets, flat.ColumnEnd(b))
	}
	var columnsVec flatbuffers.UOffsetT
	if len(colOffsets) > 0 {
		flat.HeaderStartColumnsVector(b, len(colOffsets))
		for i := len(colOffsets) - 1; i >= 0; i-- {
			b.PrependUOffsetT(colOffsets[i])
		}
		columnsVec = b.EndVector(len(colOffsets))
	}

	var crsOffset flatbuffers.UOffsetT
	if f.crs != nil {
		org := b.CreateString(f.crs.Org)
		var name, desc, wkt, codeString flatbuffers.UOffsetT
		if f.crs.Name != "" {
			name = b.CreateString(f.crs.Name)
		}
		if f.crs.Description != "" {
			desc = b.CreateString(f.crs.Description)
		}
		if f.crs.Wkt != "" {
			wkt = b.CreateString(f.crs.Wkt)
		}
		if f.crs.CodeString != "" {
			codeString = b.CreateString(f.crs.CodeString)
		}
		flat.CrsStart(b)
		flat.CrsAddOrg(b, org)
		flat.CrsAddCode(b, f.crs.Code)
		if name != 0 {
			flat.CrsAddName(b, name)
		}
		if desc != 0 {
			flat.CrsAddDescription(b, desc)
		}
		if wkt != 0 {
			flat.CrsAddWkt(b, wkt)
		}
		if codeString != 0 {
			flat.CrsAddCodeString(b, codeString)
		}
		crsOffset = flat.CrsEnd(b)
	}

	var envelopeVec flatbuffers.UOffsetT
	if f.envelope != nil {
		flat.HeaderStartEnvelopeVector(b, 4)
		b.PrependFloat64(f.envelope.YMax)
		b.PrependFloat64(f.envelope.XMax)
		b.PrependFloat64(f.envelope.YMin)
		b.PrependFloat64(f.envelope.XMin)
		envelopeVec = b.EndVector(4)
	}

	name := b.CreateString(f.name)
	var title, description, metadata flatbuffers.UOffsetT
	if f.title != "" {
		title = b.CreateString(f.title)
	}
	if f.description != "" {
		description = b.CreateString(f.description)
	}
	if f.metadata != "" {
		metadata = b.CreateString(f.metadata)
	}

	flat.HeaderStart(b)
	flat.HeaderAddName(b, name)
	if envelopeVec != 0 {
		flat.HeaderAddEnvelope(b, envelopeVec)
	}
	flat.HeaderAddGeometryType(b, f.geometryType)
	flat.HeaderAddHasZ(b, f.hasZ)
	flat.HeaderAddHasM(b, f.hasM)
	flat.HeaderAddHasT(b, f.hasT)
	flat.HeaderAddHasTm(b, f.hasTm)
	if columnsVec != 0 {
		flat.HeaderAddColumns(b, columnsVec)
	}
	flat.HeaderAddFeaturesCount(b, f.featuresCount)
	flat.HeaderAddIndexNodeSize(b, f.indexNodeSize)
	if crsOffset != 0 {
		flat.HeaderAddCrs(b, crsOffset)
	}
	if title != 0 {
		flat.HeaderAddTitle(b, title)
	}
	if description != 0 {
		flat.HeaderAddDescription(b, description)
	}
	if metadata != 0 {
		flat.HeaderAddMetadata(b, metadata)
	}
	flat.HeaderAddMutabilityVersion(b, f.mutabilityVersion)
	end := flat.HeaderEnd(b)
	flat.FinishSizePrefixedHeaderBuffer(b, end)

	hdr := flat.GetSizePrefixedRootAsHeader(b.FinishedBytes(), 0)
	return writeSizePrefixedTable(out, hdr.Table())
}

// headerFieldsFromHeader copies every field of an already-decoded
// header into a fresh headerFields, for Appender's "rebuild header
// args mirroring every field" step. The returned value's envelope and
// featuresCount are left as read from the old header; the caller
// overwrites them with the merged extent and count.
func headerFieldsFromHeader(hdr *Header) headerFields {
	f := headerFields{
		name:              string(hdr.Name()),
		geometryType:      hdr.GeometryType(),
		hasZ:              hdr.HasZ(),
		hasM:              hdr.HasM(),
		hasT:              hdr.HasT(),
		hasTm:             hdr.HasTm(),
		featuresCount:     hdr.FeaturesCount(),
		indexNodeSize:     hdr.IndexNodeSize(),
		title:             string(hdr.Title()),
		description:       string(hdr.Description()),
		metadata:          string(hdr.Metadata()),
		mutabilityVersion: hdr.MutabilityVersion(),
	}

	n := hdr.ColumnsLength()
	if n > 0 {
		f.columns = make([]ColumnDef, n)
		var c flat.Column
		for i := 0; i < n; i++ {
			hdr.Columns(&c, i)
			f.columns[i] = ColumnDef{
				Name:        string(c.Name()),
				Type:        c.Type(),
				Title:       string(c.Title()),
				Description: string(c.Description()),
				Width:       c.Width(),
				Precision:   c.Precision(),
				Scale:       c.Scale(),
				Nullable:    c.Nullable(),
				Unique:      c.Unique(),
				PrimaryKey:  c.PrimaryKey(),
				Metadata:    string(c.Metadata()),
			}
		}
	}

	if crs := hdr.Crs(nil); crs != nil {
		f.crs = &CrsDef{
			Org:         string(crs.Org()),
			Code:        crs.Code(),
			Name:        string(crs.Name()),
			Description: string(crs.Description()),
			Wkt:         string(crs.Wkt()),
			CodeString:  string(crs.CodeString()),
		}
	}

	return f
}
