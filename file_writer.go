// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"io"
	"os"

	"github.com/fgbgo/flatgeobuf/packedrtree"
)

// leafRecord is one buffered feature awaiting reindex-and-emit: its
// bounding box, its position in the spill file, and its encoded size.
// A leafRecord's position in FileWriter's leaves slice is the
// feature's insertion index; Write carries that index in each index
// Ref's Offset and overwrites it with the feature's final output
// offset once the emission order is known.
type leafRecord struct {
	box         packedrtree.Box
	spillOffset int64
	size        int64
}

// FileWriter builds a FlatGeobuf file in a single streaming pass. Each
// call to Add buffers one feature's encoded frame to a temporary
// spill file and records its bounding box; Write then streams
// the magic bytes, header, packed Hilbert R-tree index (unless
// disabled), and Hilbert-sorted feature frames to the destination.
//
// A FileWriter is not safe for concurrent use and must be closed
// (directly, or implicitly by a successful Write) to release its
// spill file.
type FileWriter struct {
	fields headerFields
	spill  *os.File
	leaves []leafRecord
	extent packedrtree.Box
	closed bool
}

// NewFileWriter starts a new file with the given name, geometry kind,
// and columns. Dimension flags, CRS/title/description/metadata, and
// the index branching factor may be set via the With* methods before
// the first call to Add; the branching factor defaults to 16.
func NewFileWriter(name string, geometryType GeometryType, columns []ColumnDef) (*FileWriter, error) {
	spill, err := os.CreateTemp("", "flatgeobuf-spill-*")
	if err != nil {
		return nil, wrapErr("failed to create spill file", err)
	}
	return &FileWriter{
		fields: headerFields{
			name:          name,
			geometryType:  geometryType,
			columns:       columns,
			indexNodeSize: defaultIndexNodeSize,
		},
		spill:  spill,
		extent: packedrtree.EmptyBox,
	}, nil
}

// WithDims sets the dimension flags advertised in the header.
func (w *FileWriter) WithDims(hasZ, hasM, hasT, hasTm bool) *FileWriter {
	w.fields.hasZ, w.fields.hasM, w.fields.hasT, w.fields.hasTm = hasZ, hasM, hasT, hasTm
	return w
}

// WithCrs sets the coordinate reference system advertised in the
// header.
func (w *FileWriter) WithCrs(crs *CrsDef) *FileWriter {
	w.fields.crs = crs
	return w
}

// WithMetadata sets the free-text title, description, and metadata
// fields advertised in the header.
func (w *FileWriter) WithMetadata(title, description, metadata string) *FileWriter {
	w.fields.title, w.fields.description, w.fields.metadata = title, description, metadata
	return w
}

// WithMutabilityVersion sets the header field an Appender consults
// before agreeing to extend the file. 0 (the default) marks the file
// immutable.
func (w *FileWriter) WithMutabilityVersion(v uint16) *FileWriter {
	w.fields.mutabilityVersion = v
	return w
}

// DisableIndex turns off spatial indexing for this file; features are
// emitted in insertion order and IndexNodeSize is written as 0.
func (w *FileWriter) DisableIndex() *FileWriter {
	w.fields.indexNodeSize = 0
	return w
}

// WithIndexNodeSize sets the R-tree branching factor, clamped to
// [2, 65535]: a value below 2 is raised to 2. Use DisableIndex instead
// to turn indexing off entirely.
func (w *FileWriter) WithIndexNodeSize(n uint16) *FileWriter {
	if n < 2 {
		n = 2
	}
	w.fields.indexNodeSize = n
	return w
}

// GeomBuilder returns a GeomBuilder for constructing one feature's
// geometry from visitor callbacks (e.g. while translating another
// format's geometry model). If the writer was constructed with
// GeometryTypeUnknown, the builder infers the concrete kind from the
// first Begin callback it sees and sets the header's geometry type
// tag accordingly; this only has an effect the first time it happens,
// since a file's header carries a single geometry type for all of its
// features.
func (w *FileWriter) GeomBuilder() *GeomBuilder {
	return NewGeomBuilder(func(t GeometryType) {
		if w.fields.geometryType == GeometryTypeUnknown {
			w.fields.geometryType = t
		}
	})
}

// Add buffers one feature's encoded frame to the spill file and
// records its bounding box for later indexing.
func (w *FileWriter) Add(f *FeatureDef) error {
	if w.closed {
		return ErrClosed
	}
	box := f.bounds()
	off, err := w.spill.Seek(0, io.SeekCurrent)
	if err != nil {
		return wrapErr("failed to locate spill position", err)
	}
	n, err := buildFeature(w.spill, f)
	if err != nil {
		return wrapErr("failed to buffer feature", err)
	}
	w.extent.Expand(&box)
	w.leaves = append(w.leaves, leafRecord{box: box, spillOffset: off, size: int64(n)})
	w.fields.featuresCount++
	return nil
}

// Write computes the final extent, Hilbert-sorts the buffered
// features when indexing is enabled, and streams the magic bytes,
// header, index, and feature frames to out in that order. Write
// closes the spill file before returning, successfully or not; the
// FileWriter must not be reused afterward.
func (w *FileWriter) Write(out io.Writer) error {
	if w.closed {
		return ErrClosed
	}
	defer w.close()

	w.fields.envelope = &w.extent
	if _, err := out.Write(magic[:]); err != nil {
		return wrapErr("failed to write magic bytes", err)
	}
	if _, err := buildHeader(out, &w.fields); err != nil {
		return wrapErr("failed to write header", err)
	}

	order := make([]int, len(w.leaves))
	for i := range order {
		order[i] = i
	}
	if w.fields.indexNodeSize != 0 && len(w.leaves) > 0 {
		refs := make([]packedrtree.Ref, len(w.leaves))
		for i, l := range w.leaves {
			refs[i] = packedrtree.Ref{Box: l.box, Offset: int64(i)}
		}
		packedrtree.HilbertSort(refs, w.extent)

		var outOffset int64
		for i, ref := range refs {
			order[i] = int(ref.Offset)
			refs[i].Offset = outOffset
			outOffset += w.leaves[ref.Offset].size
		}
		tree, err := packedrtree.New(refs, w.fields.indexNodeSize)
		if err != nil {
			return wrapErr("failed to build index", err)
		}
		if _, err = tree.Marshal(out); err != nil {
			return wrapErr("failed to write index", err)
		}
	}

	for _, i := range order {
		l := w.leaves[i]
		if _, err := w.spill.Seek(l.spillOffset, io.SeekStart); err != nil {
			return wrapErr("failed to seek spill file", err)
		}
		if _, err := io.CopyN(out, w.spill, l.size); err != nil {
			return wrapErr("failed to copy feature from spill", err)
		}
	}
	return nil
}

// Close discards the spill file without writing an output file. It is
// a no-op once Write or Close has already run.
func (w *FileWriter) Close() error {
	if w.closed {
		return nil
	}
	return w.close()
}

func (w *FileWriter) close() error {
	w.closed = true
	name := w.spill.Name()
	err := w.spill.Close()
	if rmErr := os.Remove(name); err == nil {
		err = rmErr
	}
	return err
}
