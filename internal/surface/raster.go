package surface

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/paulmach/orb"
	"golang.org/x/image/vector"
)

// Raster draws onto an NRGBA canvas with an anti-aliasing scanline rasterizer.
// Strokes are filled as quads with square caps.
type Raster struct {
	img    *image.NRGBA
	ras    *vector.Rasterizer
	fill   *image.Uniform
	stroke *image.Uniform
	weight float64
}

// NewRaster creates a transparent w×h raster surface.
func NewRaster(w, h int) *Raster {
	return &Raster{
		img:    image.NewNRGBA(image.Rect(0, 0, w, h)),
		ras:    vector.NewRasterizer(w, h),
		fill:   image.NewUniform(color.NRGBA{A: 255}),
		stroke: image.NewUniform(color.NRGBA{A: 255}),
		weight: 1,
	}
}

// Image returns the backing canvas.
func (r *Raster) Image() image.Image { return r.img }

// NRGBA returns the backing canvas without conversion.
func (r *Raster) NRGBA() *image.NRGBA { return r.img }

func (r *Raster) Clear(c color.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *Raster) SetFillColor(c color.Color)   { r.fill = image.NewUniform(c) }
func (r *Raster) SetStrokeColor(c color.Color) { r.stroke = image.NewUniform(c) }

func (r *Raster) SetStrokeWeight(w float64) {
	if w <= 0 {
		w = 1
	}
	r.weight = w
}

func (r *Raster) Polygon(pts []orb.Point) {
	if len(pts) < 3 {
		return
	}
	box, ok := r.bounds(pts)
	if !ok {
		return
	}
	ox, oy := float32(box.Min.X), float32(box.Min.Y)
	r.ras.MoveTo(float32(pts[0][0])-ox, float32(pts[0][1])-oy)
	for _, p := range pts[1:] {
		r.ras.LineTo(float32(p[0])-ox, float32(p[1])-oy)
	}
	r.ras.ClosePath()
	r.ras.Draw(r.img, box, r.fill, image.Point{})
}

func (r *Raster) Line(a, b orb.Point) {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	h := r.weight / 2

	// Unit direction and normal; a zero-length segment becomes a square dot.
	ux, uy := 1.0, 0.0
	if l := math.Hypot(dx, dy); l > 0 {
		ux, uy = dx/l, dy/l
	}
	nx, ny := -uy*h, ux*h
	ex, ey := ux*h, uy*h

	quad := [4]orb.Point{
		{a[0] - ex + nx, a[1] - ey + ny},
		{b[0] + ex + nx, b[1] + ey + ny},
		{b[0] + ex - nx, b[1] + ey - ny},
		{a[0] - ex - nx, a[1] - ey - ny},
	}
	box, ok := r.bounds(quad[:])
	if !ok {
		return
	}
	ox, oy := float32(box.Min.X), float32(box.Min.Y)
	r.ras.MoveTo(float32(quad[0][0])-ox, float32(quad[0][1])-oy)
	for _, p := range quad[1:] {
		r.ras.LineTo(float32(p[0])-ox, float32(p[1])-oy)
	}
	r.ras.ClosePath()
	r.ras.Draw(r.img, box, r.stroke, image.Point{})
}

// bounds sizes the rasterizer to the pixel bounding box of pts, clipped to
// the canvas, so each shape only touches the pixels it covers.
func (r *Raster) bounds(pts []orb.Point) (image.Rectangle, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	box := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	).Intersect(r.img.Bounds())
	if box.Empty() {
		return box, false
	}
	r.ras.Reset(box.Dx(), box.Dy())
	r.ras.DrawOp = draw.Over
	return box, true
}
