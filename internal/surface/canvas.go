package surface

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
)

// Canvas is a Surface backed by a gg context. Lines get round caps.
type Canvas struct {
	ctx    *gg.Context
	fill   color.Color
	stroke color.Color
	weight float64
}

// NewCanvas creates a transparent w×h gg surface.
func NewCanvas(w, h int) *Canvas {
	ctx := gg.NewContext(w, h)
	ctx.SetLineCapRound()
	return &Canvas{ctx: ctx, fill: color.Black, stroke: color.Black, weight: 1}
}

func (c *Canvas) Image() image.Image { return c.ctx.Image() }

func (c *Canvas) Clear(col color.Color) {
	c.ctx.SetColor(col)
	c.ctx.Clear()
}

func (c *Canvas) SetFillColor(col color.Color)   { c.fill = col }
func (c *Canvas) SetStrokeColor(col color.Color) { c.stroke = col }

func (c *Canvas) SetStrokeWeight(w float64) {
	if w <= 0 {
		w = 1
	}
	c.weight = w
}

func (c *Canvas) Line(a, b orb.Point) {
	c.ctx.SetColor(c.stroke)
	c.ctx.SetLineWidth(c.weight)
	c.ctx.DrawLine(a[0], a[1], b[0], b[1])
	c.ctx.Stroke()
}

func (c *Canvas) Polygon(pts []orb.Point) {
	if len(pts) < 3 {
		return
	}
	c.ctx.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		c.ctx.LineTo(p[0], p[1])
	}
	c.ctx.ClosePath()
	c.ctx.SetColor(c.fill)
	c.ctx.Fill()
}
