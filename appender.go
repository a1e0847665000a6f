// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"io"
	"os"

	"github.com/fgbgo/flatgeobuf/packedrtree"
)

// Appender extends an existing FlatGeobuf file with additional
// features. It is only permitted on files whose header carries a
// non-zero MutabilityVersion; otherwise NewAppender fails with
// ErrImmutable.
//
// Appending always reindexes: the entire merged leaf set (the file's
// existing leaves plus the newly added features) is rebuilt into a
// fresh packed Hilbert R-tree, rather than inserting into the old one
// in place. Add buffers new features to a spill file exactly like
// FileWriter; Write streams magic bytes, header, index, the original
// feature payload (copied verbatim), and the new features to out.
//
// An Appender is not reentrant: at most one Appender may be open on a
// given source file at a time.
type Appender struct {
	src          io.ReadSeeker
	fields       headerFields
	oldLeaves    []packedrtree.Ref
	oldDataStart int64
	oldDataLen   int64
	extent       packedrtree.Box
	spill        *os.File
	newLeaves    []leafRecord
	closed       bool
}

// NewAppender opens src for appending. src must have been written by
// a FileWriter (or a prior Appender) with a non-zero mutability
// version. The existing header and index are read through the same
// eager verification pass NewFileReader uses; use NewAppenderUnverified
// to skip it.
func NewAppender(src io.ReadSeeker) (*Appender, error) {
	return newAppender(src, true)
}

// NewAppenderUnverified opens src like NewAppender, but skips the
// eager panic-trapped verification pass described on
// NewFileReaderUnverified.
func NewAppenderUnverified(src io.ReadSeeker) (*Appender, error) {
	return newAppender(src, false)
}

func newAppender(src io.ReadSeeker, verify bool) (*Appender, error) {
	r := newFileReader(src, verify)
	hdr, err := r.Header()
	if err != nil {
		return nil, err
	}
	if hdr.MutabilityVersion() == 0 {
		return nil, ErrImmutable
	}

	tree, err := r.Index()
	if err != nil {
		return nil, err
	}
	var oldLeaves []packedrtree.Ref
	extent := packedrtree.EmptyBox
	if tree != nil {
		oldLeaves = tree.Leaves()
		extent = tree.Bounds()
	}

	end, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &IO{Op: "measure source file", Err: err}
	}

	spill, err := os.CreateTemp("", "flatgeobuf-spill-*")
	if err != nil {
		return nil, &IO{Op: "create spill file", Err: err}
	}

	return &Appender{
		src:          src,
		fields:       headerFieldsFromHeader(hdr),
		oldLeaves:    oldLeaves,
		oldDataStart: r.featureBase,
		oldDataLen:   end - r.featureBase,
		extent:       extent,
		spill:        spill,
	}, nil
}

// GeomBuilder returns a GeomBuilder for constructing one new feature's
// geometry from visitor callbacks. Unlike FileWriter.GeomBuilder, it
// never changes the header's geometry type tag, since Appender always
// mirrors the source file's existing header fields.
func (a *Appender) GeomBuilder() *GeomBuilder {
	return NewGeomBuilder(nil)
}

// Add buffers one new feature's encoded frame to the spill file and
// records its bounding box for later indexing.
func (a *Appender) Add(f *FeatureDef) error {
	if a.closed {
		return ErrClosed
	}
	box := f.bounds()
	off, err := a.spill.Seek(0, io.SeekCurrent)
	if err != nil {
		return &IO{Op: "locate spill position", Err: err}
	}
	n, err := buildFeature(a.spill, f)
	if err != nil {
		return wrapErr("failed to buffer feature", err)
	}
	a.extent.Expand(&box)
	a.newLeaves = append(a.newLeaves, leafRecord{box: box, spillOffset: off, size: int64(n)})
	return nil
}

// Write merges the original leaf set with the newly added features,
// rebuilds the index over the union, and streams the resulting file
// to out: magic, header, index, the original feature payload copied
// verbatim from src, then the new features from the spill file. Write
// closes the spill file before returning; the Appender must not be
// reused afterward.
//
// Callers wanting to replace the source file in place write to a
// temporary file and rename it over src's path only after Write
// returns success, per the package's partial-write policy.
func (a *Appender) Write(out io.Writer) error {
	if a.closed {
		return ErrClosed
	}
	defer a.close()

	a.fields.featuresCount = uint64(len(a.oldLeaves) + len(a.newLeaves))
	a.fields.envelope = &a.extent

	if _, err := out.Write(magic[:]); err != nil {
		return wrapErr("failed to write magic bytes", err)
	}
	if _, err := buildHeader(out, &a.fields); err != nil {
		return wrapErr("failed to write header", err)
	}

	if a.fields.indexNodeSize != 0 && (len(a.oldLeaves)+len(a.newLeaves)) > 0 {
		refs := make([]packedrtree.Ref, 0, len(a.oldLeaves)+len(a.newLeaves))
		refs = append(refs, a.oldLeaves...)
		for _, l := range a.newLeaves {
			refs = append(refs, packedrtree.Ref{Box: l.box, Offset: a.oldDataLen + l.spillOffset})
		}
		packedrtree.HilbertSort(refs, a.extent)

		tree, err := packedrtree.New(refs, a.fields.indexNodeSize)
		if err != nil {
			return wrapErr("failed to build merged index", err)
		}
		if _, err = tree.Marshal(out); err != nil {
			return wrapErr("failed to write index", err)
		}
	}

	if a.oldDataLen > 0 {
		if _, err := a.src.Seek(a.oldDataStart, io.SeekStart); err != nil {
			return &IO{Op: "seek source data", Err: err}
		}
		if _, err := io.CopyN(out, a.src, a.oldDataLen); err != nil {
			return &IO{Op: "copy original features", Err: err}
		}
	}

	for _, l := range a.newLeaves {
		if _, err := a.spill.Seek(l.spillOffset, io.SeekStart); err != nil {
			return &IO{Op: "seek spill file", Err: err}
		}
		if _, err := io.CopyN(out, a.spill, l.size); err != nil {
			return &IO{Op: "copy new feature from spill", Err: err}
		}
	}
	return nil
}

// Close discards the spill file without writing an output file. It is
// a no-op once Write or Close has already run.
func (a *Appender) Close() error {
	if a.closed {
		return nil
	}
	return a.close()
}

func (a *Appender) close() error {
	a.closed = true
	name := a.spill.Name()
	err := a.spill.Close()
	if rmErr := os.Remove(name); err == nil {
		err = rmErr
	}
	return err
}
