// Package surface defines the drawing targets contours are emitted onto.
package surface

import (
	"image"
	"image/color"

	"github.com/paulmach/orb"
)

// Surface is a canvas accepting stroked lines and filled polygons in pixel
// coordinates. Implementations keep the current fill/stroke state only; there
// is no transform stack, callers pass a Transform explicitly.
type Surface interface {
	Clear(c color.Color)
	SetFillColor(c color.Color)
	SetStrokeColor(c color.Color)
	SetStrokeWeight(w float64)
	Line(a, b orb.Point)
	// Polygon fills the closed ring through pts.
	Polygon(pts []orb.Point)
}

// ImageSurface is a Surface whose pixels can be read back.
type ImageSurface interface {
	Surface
	Image() image.Image
}

// Transform translates local coordinates into surface coordinates.
type Transform struct {
	DX, DY float64
}

// Identity is the zero transform.
var Identity = Transform{}

// Translate returns t followed by a shift of (dx, dy).
func (t Transform) Translate(dx, dy float64) Transform {
	return Transform{DX: t.DX + dx, DY: t.DY + dy}
}

// Apply maps a local point.
func (t Transform) Apply(p orb.Point) orb.Point {
	return orb.Point{p[0] + t.DX, p[1] + t.DY}
}

// ApplyAll maps pts in place and returns them.
func (t Transform) ApplyAll(pts []orb.Point) []orb.Point {
	for i := range pts {
		pts[i] = t.Apply(pts[i])
	}
	return pts
}

// Layered surfaces hand out blank layers that can be drawn independently,
// possibly from different goroutines, and merged back in order.
type Layered interface {
	Surface
	NewLayer() Surface
	// MergeLayers paints layers onto the surface, first to last.
	MergeLayers(layers []Surface) error
}
