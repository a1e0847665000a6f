// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package packedrtree

import (
	"fmt"
	"math"
)

// Box is an axis-aligned 2D bounding box.
type Box struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// EmptyBox has inverted, infinite bounds, so Expanding it by any finite
// Box always yields that Box back unchanged.
var EmptyBox = Box{
	XMin: math.Inf(1),
	YMin: math.Inf(1),
	XMax: math.Inf(-1),
	YMax: math.Inf(-1),
}

// String renders b as a GeoJSON-style bounding box array.
func (b Box) String() string {
	return fmt.Sprintf("[%.8g,%.8g,%.8g,%.8g]", b.XMin, b.YMin, b.XMax, b.YMax)
}

// Width returns b's extent along the X axis.
func (b *Box) Width() float64 {
	return b.XMax - b.XMin
}

// Height returns b's extent along the Y axis.
func (b *Box) Height() float64 {
	return b.YMax - b.YMin
}

// centerX and centerY locate b's midpoint; HilbertSort maps this point,
// not b's corners, onto the Hilbert curve.
func (b *Box) centerX() float64 {
	return (b.XMin + b.XMax) / 2
}

func (b *Box) centerY() float64 {
	return (b.YMin + b.YMax) / 2
}

// Expand grows the receiver by the smallest amount needed to also
// cover c, leaving everything it already covered intact.
func (b *Box) Expand(c *Box) {
	// Direct comparisons rather than math.Min/Max: a NaN coordinate
	// in c must leave the corresponding bound in b untouched rather
	// than poisoning it, since math.Min/Max(x, NaN) is NaN.
	if c.XMin < b.XMin {
		b.XMin = c.XMin
	}
	if c.YMin < b.YMin {
		b.YMin = c.YMin
	}
	if c.XMax > b.XMax {
		b.XMax = c.XMax
	}
	if c.YMax > b.YMax {
		b.YMax = c.YMax
	}
}

// ExpandXY grows the receiver by the smallest amount needed to also
// cover the point (x, y).
func (b *Box) ExpandXY(x, y float64) {
	if x < b.XMin {
		b.XMin = x
	}
	if x > b.XMax {
		b.XMax = x
	}
	if y < b.YMin {
		b.YMin = y
	}
	if y > b.YMax {
		b.YMax = y
	}
}

// intersects reports whether b and o share at least one point. Two
// boxes that merely touch at an edge or corner count as intersecting.
func (b *Box) intersects(o *Box) bool {
	return b.XMin <= o.XMax && b.XMax >= o.XMin &&
		b.YMin <= o.YMax && b.YMax >= o.YMin
}
