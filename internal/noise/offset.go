package noise

import (
	"fmt"
	"math"
)

// Offset is an additive field shaping the macro structure of a lattice.
type Offset func(x, y float64) float64

// Gradient names an offset kind.
type Gradient string

const (
	GradientFill   Gradient = "fill"
	GradientLinear Gradient = "linear"
	GradientRadial Gradient = "radial"
	GradientRing   Gradient = "ring"
)

// Gradients lists the kinds accepted by OffsetFor.
var Gradients = []Gradient{GradientFill, GradientLinear, GradientRadial, GradientRing}

// OffsetFor returns the offset field for a gradient over an nx×ny lattice.
// fill returns nil: no offset.
func OffsetFor(g Gradient, nx, ny int) (Offset, error) {
	switch g {
	case GradientFill, "":
		return nil, nil
	case GradientLinear:
		return Linear(nx), nil
	case GradientRadial:
		return Radial(float64(nx)/2, float64(ny)/2, 0.2, float64(nx)/2), nil
	case GradientRing:
		return Ring(float64(nx)/2, float64(ny)/2, float64(nx)/4), nil
	default:
		return nil, fmt.Errorf("unknown gradient %q", g)
	}
}

// Linear ramps from -0.5 at the top row towards +0.5 at y = nx.
func Linear(nx int) Offset {
	n := float64(nx)
	return func(_, y float64) float64 {
		return y/n - 0.5
	}
}

// Radial is c at the centre and falls off by 1 per r units of distance.
func Radial(cx, cy, c, r float64) Offset {
	return func(x, y float64) float64 {
		return c - Dist(cx, cy, x, y)/r
	}
}

// Ring peaks at 0 on the circle of radius r and is negative elsewhere, producing an annulus.
func Ring(cx, cy, r float64) Offset {
	return func(x, y float64) float64 {
		return -math.Abs(-1 + Dist(cx, cy, x, y)/r)
	}
}

// Center lifts the middle of an nx×ny lattice into a single blob:
// magnitude * ((1 - 2*dist/nx) - baseline).
func Center(nx, ny int, baseline, magnitude float64) Offset {
	cx, cy := float64(nx)/2, float64(ny)/2
	n := float64(nx)
	return func(x, y float64) float64 {
		return magnitude * ((1 - 2*Dist(cx, cy, x, y)/n) - baseline)
	}
}

// Dist is the euclidean distance between (cx, cy) and (x, y).
func Dist(cx, cy, x, y float64) float64 {
	return math.Hypot(cx-x, cy-y)
}
