// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fgbgo/flatgeobuf"
	"github.com/fgbgo/flatgeobuf/packedrtree"
)

func pointFeature(x, y float64, id string) *flatgeobuf.FeatureDef {
	return &flatgeobuf.FeatureDef{
		Geom:       &flatgeobuf.GeomDef{Type: flatgeobuf.GeometryTypePoint, Xy: []float64{x, y}},
		Properties: encodeCountryProps(id, id),
	}
}

func buildPointFile(t *testing.T, opts func(*flatgeobuf.FileWriter), pts [][3]interface{}) []byte {
	t.Helper()
	w, err := flatgeobuf.NewFileWriter("points", flatgeobuf.GeometryTypePoint, countryColumns())
	require.NoError(t, err)
	if opts != nil {
		opts(w)
	}
	for _, p := range pts {
		x, y, id := p[0].(float64), p[1].(float64), p[2].(string)
		require.NoError(t, w.Add(pointFeature(x, y, id)))
	}
	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf))
	return buf.Bytes()
}

func TestFileWriterRoundTrip(t *testing.T) {
	data := buildPointFile(t, nil, [][3]interface{}{
		{-1.0, 2.0, "USA"},
		{10.0, 20.0, "FRA"},
		{-80.0, -10.0, "BRA"},
	})

	r := flatgeobuf.NewFileReader(bytes.NewReader(data))
	hdr, err := r.Header()
	require.NoError(t, err)
	assert.EqualValues(t, 3, hdr.FeaturesCount())
	assert.Equal(t, uint16(16), hdr.IndexNodeSize())

	idx, err := r.Index()
	require.NoError(t, err)
	require.NotNil(t, idx)
	assert.Equal(t, 3, idx.NumRefs())
	assert.Equal(t, uint16(16), idx.NodeSize())

	feats, err := r.DataRem()
	require.NoError(t, err)
	assert.Len(t, feats, 3)

	ids := map[string]bool{}
	for _, f := range feats {
		s := f.StringSchema(hdr)
		assert.Contains(t, s, "Feature{Geometry:{Type:Point")
		m := regexp.MustCompile(`id:(\w+)`).FindStringSubmatch(s)
		require.Len(t, m, 2)
		ids[m[1]] = true
	}
	assert.Equal(t, map[string]bool{"USA": true, "FRA": true, "BRA": true}, ids)
}

func TestFileWriterNoIndex(t *testing.T) {
	data := buildPointFile(t, func(w *flatgeobuf.FileWriter) { w.DisableIndex() }, [][3]interface{}{
		{5.0, 5.0, "A"},
		{1.0, 1.0, "B"},
		{9.0, 9.0, "C"},
	})

	r := flatgeobuf.NewFileReader(bytes.NewReader(data))
	hdr, err := r.Header()
	require.NoError(t, err)
	assert.EqualValues(t, 0, hdr.IndexNodeSize())

	idx, err := r.Index()
	require.NoError(t, err)
	assert.Nil(t, idx)

	feats, err := r.DataRem()
	require.NoError(t, err)
	require.Len(t, feats, 3)

	// Without indexing, features are never reordered: insertion order
	// survives exactly.
	var got []string
	for _, f := range feats {
		s := f.StringSchema(hdr)
		m := regexp.MustCompile(`id:(\w+)`).FindStringSubmatch(s)
		require.Len(t, m, 2)
		got = append(got, m[1])
	}
	assert.Equal(t, []string{"A", "B", "C"}, got)
}

func TestFileReaderIndexSearch(t *testing.T) {
	data := buildPointFile(t, nil, [][3]interface{}{
		{-1.0, 2.0, "USA"},
		{10.0, 20.0, "FRA"},
		{-80.0, -10.0, "BRA"},
	})

	r := flatgeobuf.NewFileReader(bytes.NewReader(data))
	hdr, err := r.Header()
	require.NoError(t, err)

	feats, err := r.IndexSearch(packedrtree.Box{XMin: -2, YMin: 1, XMax: 0, YMax: 3})
	require.NoError(t, err)
	require.Len(t, feats, 1)
	assert.Contains(t, feats[0].StringSchema(hdr), "id:USA")
}

func TestFileReaderIndexSearchNoIndex(t *testing.T) {
	data := buildPointFile(t, func(w *flatgeobuf.FileWriter) { w.DisableIndex() }, [][3]interface{}{
		{5.0, 5.0, "A"},
	})

	r := flatgeobuf.NewFileReader(bytes.NewReader(data))
	_, err := r.Header()
	require.NoError(t, err)

	_, err = r.IndexSearch(packedrtree.Box{})
	assert.ErrorIs(t, err, flatgeobuf.ErrNoIndex)
}

func TestFileReaderRewind(t *testing.T) {
	data := buildPointFile(t, nil, [][3]interface{}{
		{1.0, 1.0, "A"},
		{2.0, 2.0, "B"},
	})

	r := flatgeobuf.NewFileReader(bytes.NewReader(data))
	_, err := r.Header()
	require.NoError(t, err)

	_, err = r.Index()
	require.NoError(t, err)
	feats, err := r.DataRem()
	require.NoError(t, err)
	assert.Len(t, feats, 2)

	require.NoError(t, r.Rewind())
	feats, err = r.IndexSearch(packedrtree.Box{XMin: 0, YMin: 0, XMax: 3, YMax: 3})
	require.NoError(t, err)
	assert.Len(t, feats, 2)
}

func TestAppenderRoundTrip(t *testing.T) {
	w, err := flatgeobuf.NewFileWriter("points", flatgeobuf.GeometryTypePoint, countryColumns())
	require.NoError(t, err)
	w.WithMutabilityVersion(1)
	require.NoError(t, w.Add(pointFeature(-1, 2, "USA")))
	require.NoError(t, w.Add(pointFeature(10, 20, "FRA")))
	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf))

	src := bytes.NewReader(buf.Bytes())
	a, err := flatgeobuf.NewAppender(src)
	require.NoError(t, err)
	require.NoError(t, a.Add(pointFeature(-80, -10, "BRA")))

	var out bytes.Buffer
	require.NoError(t, a.Write(&out))

	r := flatgeobuf.NewFileReader(bytes.NewReader(out.Bytes()))
	hdr, err := r.Header()
	require.NoError(t, err)
	assert.EqualValues(t, 3, hdr.FeaturesCount())

	idx, err := r.Index()
	require.NoError(t, err)
	require.NotNil(t, idx)
	assert.Equal(t, 3, idx.NumRefs())
	bounds := idx.Bounds()
	assert.Equal(t, -80.0, bounds.XMin)
	assert.Equal(t, 20.0, bounds.YMax)

	feats, err := r.DataRem()
	require.NoError(t, err)
	assert.Len(t, feats, 3)

	results := idx.Search(packedrtree.Box{XMin: -90, YMin: -20, XMax: -70, YMax: 0})
	require.Len(t, results, 1)
}

func TestAppenderRequiresMutabilityVersion(t *testing.T) {
	w, err := flatgeobuf.NewFileWriter("points", flatgeobuf.GeometryTypePoint, countryColumns())
	require.NoError(t, err)
	require.NoError(t, w.Add(pointFeature(0, 0, "A")))
	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf))

	_, err = flatgeobuf.NewAppender(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, flatgeobuf.ErrImmutable)
}

func TestMagic(t *testing.T) {
	data := buildPointFile(t, nil, [][3]interface{}{{1.0, 1.0, "A"}})
	v, err := flatgeobuf.Magic(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, uint8(3), v.Major)

	_, err = flatgeobuf.Magic(bytes.NewReader([]byte("not-a-flatgeobuf-stream")))
	var missing *flatgeobuf.MissingMagicBytes
	assert.ErrorAs(t, err, &missing)
}

func TestGeomBuilderPolygonRings(t *testing.T) {
	var seenType flatgeobuf.GeometryType
	b := flatgeobuf.NewGeomBuilder(func(t flatgeobuf.GeometryType) { seenType = t })

	require.NoError(t, b.PolygonBegin())
	require.NoError(t, b.LineStringBegin())
	require.NoError(t, b.XY(0, 0, 0))
	require.NoError(t, b.XY(4, 0, 1))
	require.NoError(t, b.XY(4, 4, 2))
	require.NoError(t, b.XY(0, 0, 3))
	require.NoError(t, b.LineStringEnd())
	require.NoError(t, b.LineStringBegin())
	require.NoError(t, b.XY(1, 1, 0))
	require.NoError(t, b.XY(2, 1, 1))
	require.NoError(t, b.XY(1, 1, 2))
	require.NoError(t, b.LineStringEnd())
	require.NoError(t, b.PolygonEnd())

	def := b.Finish()
	require.NotNil(t, def)
	assert.Equal(t, flatgeobuf.GeometryTypePolygon, seenType)
	assert.Equal(t, flatgeobuf.GeometryTypePolygon, def.Type)
	// Two rings share a single Xy vector and Ends records the boundary
	// between them, rather than the rings becoming separate Parts.
	assert.Equal(t, []uint32{4, 7}, def.Ends)
	assert.Len(t, def.Xy, 14)
	assert.Empty(t, def.Parts)
}

func TestGeomBuilderMultiPolygon(t *testing.T) {
	b := flatgeobuf.NewGeomBuilder(nil)

	require.NoError(t, b.MultiBegin(flatgeobuf.GeometryTypeMultiPolygon, 2))
	for i := 0; i < 2; i++ {
		require.NoError(t, b.PolygonBegin())
		require.NoError(t, b.LineStringBegin())
		require.NoError(t, b.XY(0, 0, 0))
		require.NoError(t, b.XY(1, 0, 1))
		require.NoError(t, b.XY(0, 1, 2))
		require.NoError(t, b.LineStringEnd())
		require.NoError(t, b.PolygonEnd())
	}
	require.NoError(t, b.MultiEnd())

	def := b.Finish()
	require.NotNil(t, def)
	assert.Equal(t, flatgeobuf.GeometryTypeMultiPolygon, def.Type)
	// Unlike a polygon's own rings, a MultiPolygon's members nest
	// through Parts: each sub-polygon gets its own GeomDef.
	require.Len(t, def.Parts, 2)
	for _, part := range def.Parts {
		assert.Equal(t, flatgeobuf.GeometryTypePolygon, part.Type)
		assert.Equal(t, []uint32{3}, part.Ends)
	}
}

func TestGeomBuilderMultiPoint(t *testing.T) {
	b := flatgeobuf.NewGeomBuilder(nil)

	require.NoError(t, b.MultiBegin(flatgeobuf.GeometryTypeMultiPoint, 3))
	for _, xy := range [][2]float64{{0, 0}, {1, 1}, {2, 2}} {
		require.NoError(t, b.PointBegin())
		require.NoError(t, b.XY(xy[0], xy[1], 0))
		require.NoError(t, b.PointEnd())
	}
	require.NoError(t, b.MultiEnd())

	def := b.Finish()
	require.NotNil(t, def)
	assert.Equal(t, flatgeobuf.GeometryTypeMultiPoint, def.Type)
	assert.Equal(t, []float64{0, 0, 1, 1, 2, 2}, def.Xy)
	assert.Empty(t, def.Ends)
	assert.Empty(t, def.Parts)
}

func TestVisitGeometryRoundTripsThroughGeomBuilder(t *testing.T) {
	w, err := flatgeobuf.NewFileWriter("polys", flatgeobuf.GeometryTypePolygon, nil)
	require.NoError(t, err)
	require.NoError(t, w.Add(&flatgeobuf.FeatureDef{Geom: &flatgeobuf.GeomDef{
		Type: flatgeobuf.GeometryTypePolygon,
		Xy:   []float64{0, 0, 4, 0, 4, 4, 0, 0, 1, 1, 2, 1, 1, 1},
		Ends: []uint32{4, 7},
	}}))
	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf))

	r := flatgeobuf.NewFileReader(bytes.NewReader(buf.Bytes()))
	_, err = r.Header()
	require.NoError(t, err)
	_, err = r.Index()
	require.NoError(t, err)
	feats, err := r.DataRem()
	require.NoError(t, err)
	require.Len(t, feats, 1)

	g := feats[0].Geometry(nil)
	require.NotNil(t, g)

	b := flatgeobuf.NewGeomBuilder(nil)
	require.NoError(t, flatgeobuf.VisitGeometry(g, b))
	def := b.Finish()
	require.NotNil(t, def)
	assert.Equal(t, flatgeobuf.GeometryTypePolygon, def.Type)
	assert.Equal(t, []uint32{4, 7}, def.Ends)
	assert.Equal(t, []float64{0, 0, 4, 0, 4, 4, 0, 0, 1, 1, 2, 1, 1, 1}, def.Xy)
}

type propCollector struct {
	got []string
}

func (c *propCollector) Property(colIndex uint16, name string, value interface{}) bool {
	c.got = append(c.got, fmt.Sprintf("%s=%v", name, value))
	return false
}

func TestVisitProperties(t *testing.T) {
	// The writer's header carries the schema VisitProperties decodes
	// against, so build one instead of hand-rolling a Schema.
	w, err := flatgeobuf.NewFileWriter("countries", flatgeobuf.GeometryTypePoint, countryColumns())
	require.NoError(t, err)
	require.NoError(t, w.Add(pointFeature(0, 0, "USA")))
	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf))

	r := flatgeobuf.NewFileReader(bytes.NewReader(buf.Bytes()))
	hdr, err := r.Header()
	require.NoError(t, err)
	_, err = r.Index()
	require.NoError(t, err)
	feats, err := r.DataRem()
	require.NoError(t, err)
	require.Len(t, feats, 1)

	var c propCollector
	require.NoError(t, flatgeobuf.VisitProperties(hdr, feats[0].PropertiesBytes(), &c))
	assert.Equal(t, []string{"id=USA", "name=USA"}, c.got)
}

// rangeTransport is a fake http.RoundTripper serving byte-range
// requests directly from an in-memory resource, so RangeClient and
// HttpReader can be tested without a real network call.
type rangeTransport struct {
	data []byte
}

var rangePattern = regexp.MustCompile(`^bytes=(\d+)-(\d*)$`)

func (t *rangeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rng := req.Header.Get("Range")
	m := rangePattern.FindStringSubmatch(rng)
	if m == nil {
		return &http.Response{StatusCode: http.StatusBadRequest, Body: io.NopCloser(bytes.NewReader(nil))}, nil
	}
	start, _ := strconv.ParseInt(m[1], 10, 64)
	end := int64(len(t.data))
	if m[2] != "" {
		e, _ := strconv.ParseInt(m[2], 10, 64)
		end = e + 1
	}
	if start > int64(len(t.data)) {
		start = int64(len(t.data))
	}
	if end > int64(len(t.data)) {
		end = int64(len(t.data))
	}
	body := t.data[start:end]
	return &http.Response{
		StatusCode: http.StatusPartialContent,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     http.Header{},
	}, nil
}

func TestRangeClientShortRead(t *testing.T) {
	data := []byte("0123456789")
	rc := &flatgeobuf.RangeClient{
		HTTPClient:     &http.Client{Transport: &rangeTransport{data: data}},
		URL:            "http://example.invalid/f.fgb",
		MinRequestSize: 1024,
	}
	got, err := rc.FetchNodes(context.Background(), 0, 1024)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestHttpReaderSelectAll(t *testing.T) {
	data := buildPointFile(t, nil, [][3]interface{}{
		{-1.0, 2.0, "USA"},
		{10.0, 20.0, "FRA"},
		{-80.0, -10.0, "BRA"},
	})

	httpClient := &http.Client{Transport: &rangeTransport{data: data}}
	ctx := context.Background()
	r, err := flatgeobuf.OpenHttpReader(ctx, httpClient, "http://example.invalid/points.fgb")
	require.NoError(t, err)
	assert.EqualValues(t, 3, r.Header().FeaturesCount())

	it := r.SelectAll()
	var count int
	for {
		_, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 3, count)
}

func TestHttpReaderSelectBbox(t *testing.T) {
	data := buildPointFile(t, nil, [][3]interface{}{
		{-1.0, 2.0, "USA"},
		{10.0, 20.0, "FRA"},
		{-80.0, -10.0, "BRA"},
	})

	httpClient := &http.Client{Transport: &rangeTransport{data: data}}
	ctx := context.Background()
	r, err := flatgeobuf.OpenHttpReader(ctx, httpClient, "http://example.invalid/points.fgb")
	require.NoError(t, err)

	it, err := r.SelectBbox(ctx, packedrtree.Box{XMin: -2, YMin: 1, XMax: 0, YMax: 3})
	require.NoError(t, err)

	f, err := it.Next(ctx)
	require.NoError(t, err)
	assert.Contains(t, f.StringSchema(r.Header()), "id:USA")

	_, err = it.Next(ctx)
	assert.Equal(t, io.EOF, err)
}
