// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf_test

import (
	"bytes"
	"fmt"

	"github.com/fgbgo/flatgeobuf"
	"github.com/fgbgo/flatgeobuf/packedrtree"
)

func encodeCountryProps(id, name string) []byte {
	var buf bytes.Buffer
	w := flatgeobuf.NewPropWriter(&buf)
	_, _ = w.WriteUShort(0)
	_, _ = w.WriteString(id)
	_, _ = w.WriteUShort(1)
	_, _ = w.WriteString(name)
	return buf.Bytes()
}

func countryColumns() []flatgeobuf.ColumnDef {
	return []flatgeobuf.ColumnDef{
		{Name: "id", Type: flatgeobuf.ColumnTypeString},
		{Name: "name", Type: flatgeobuf.ColumnTypeString},
	}
}

func ExampleReader_emptyFile() {
	w, err := flatgeobuf.NewFileWriter("countries", flatgeobuf.GeometryTypePoint, countryColumns())
	if err != nil {
		panic(err)
	}
	var buf bytes.Buffer
	if err = w.Write(&buf); err != nil {
		panic(err)
	}

	r := flatgeobuf.NewFileReader(bytes.NewReader(buf.Bytes()))
	hdr, err := r.Header()
	if err != nil {
		panic(err)
	}
	fmt.Printf("Header -> { FeaturesCount = %d, IndexNodeSize = %d, Title = %q }\n", hdr.FeaturesCount(), hdr.IndexNodeSize(), hdr.Title())

	index, err := r.Index()
	fmt.Printf("Index = %v, err = %v\n", index, err)

	features, err := r.DataRem()
	fmt.Printf("Data = %v, err = %v\n", features, err)

	// Output: Header -> { FeaturesCount = 0, IndexNodeSize = 16, Title = "" }
	// Index = <nil>, err = <nil>
	// Data = [], err = <nil>
}

func ExampleReader_materializedIndex() {
	w, err := flatgeobuf.NewFileWriter("countries", flatgeobuf.GeometryTypePoint, countryColumns())
	if err != nil {
		panic(err)
	}
	err = w.Add(&flatgeobuf.FeatureDef{
		Geom:       &flatgeobuf.GeomDef{Type: flatgeobuf.GeometryTypePoint, Xy: []float64{-1, 2}},
		Properties: encodeCountryProps("USA", "United States of America"),
	})
	if err != nil {
		panic(err)
	}
	var buf bytes.Buffer
	if err = w.Write(&buf); err != nil {
		panic(err)
	}

	r := flatgeobuf.NewFileReader(bytes.NewReader(buf.Bytes()))
	hdr, err := r.Header()
	if err != nil {
		panic(err)
	}
	fmt.Printf("Header -> { FeaturesCount = %d, IndexNodeSize = %d, Title = %q }\n", hdr.FeaturesCount(), hdr.IndexNodeSize(), hdr.Title())

	// Read the index into memory. This is a good option if repeated index
	// searches are planned.
	index, _ := r.Index()
	fmt.Printf("Index -> { Bounds = %s, NumRefs = %d, NodeSize = %d }\n", index.Bounds(), index.NumRefs(), index.NodeSize())

	// Search the index for features intersecting a bounding box.
	results := index.Search(packedrtree.Box{
		XMin: -2, YMin: 1,
		XMax: 0, YMax: 3,
	})
	fmt.Printf("Results -> %+v\n", results)

	if len(results) > 0 {
		data := make([]flatgeobuf.Feature, results[0].RefIndex+1)
		n, _ := r.Data(data) // Ignoring error to simplify example only.
		if n > results[0].RefIndex {
			fmt.Printf("First Result: %s\n", data[results[0].RefIndex].StringSchema(hdr))
		}
	}
	// Output: Header -> { FeaturesCount = 1, IndexNodeSize = 16, Title = "" }
	// Index -> { Bounds = [-1,2,-1,2], NumRefs = 1, NodeSize = 16 }
	// Results -> [{Offset:0 RefIndex:0}]
	// First Result: Feature{Geometry:{Type:Point,Bounds:[-1,2,-1,2]},Properties:{id:USA,name:United States of America}}
}
