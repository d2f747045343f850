package noise

import "math"

// DefaultOctaves is the octave count used by every recipe.
const DefaultOctaves = 16

// warpOctaves keeps the displacement field smooth relative to the main sum.
const warpOctaves = 3

// Params tune the fractal sum.
//
// Scale is the spatial wavelength of the first octave and must be positive.
// Persistence is the per-octave amplitude decay (useful range 0.1..0.8).
// Sigmoid > 0 contrast-stretches the result towards ±1.
// Warp > 0 displaces sample points by Warp lattice units using a secondary
// fractal sum of wavelength WarpScale (Scale when zero).
type Params struct {
	Scale       float64 `mapstructure:"scale"`
	Persistence float64 `mapstructure:"persistence"`
	Octaves     int     `mapstructure:"octaves"`
	Sigmoid     float64 `mapstructure:"sigmoid"`
	Warp        float64 `mapstructure:"warp"`
	WarpScale   float64 `mapstructure:"warp_scale"`
}

// DefaultParams mirrors the image recipe defaults.
func DefaultParams() Params {
	return Params{
		Scale:       400,
		Persistence: 0.2,
		Octaves:     DefaultOctaves,
	}
}

// Field is a deterministic scalar field over the plane.
type Field struct {
	prim   Primitive
	params Params
	offset Offset
}

// NewField combines a primitive with fractal parameters. Octaves <= 0 selects DefaultOctaves.
func NewField(prim Primitive, params Params) *Field {
	if params.Octaves <= 0 {
		params.Octaves = DefaultOctaves
	}
	return &Field{prim: prim, params: params}
}

// WithOffset returns a copy of f that adds off to every integer lattice sample.
func (f *Field) WithOffset(off Offset) *Field {
	c := *f
	c.offset = off
	return &c
}

// Params returns the parameters the field was built with.
func (f *Field) Params() Params { return f.params }

// Sample evaluates the shaped fractal sum at (x, y).
func (f *Field) Sample(x, y float64) float64 {
	if f.params.Warp != 0 {
		x, y = f.warp(x, y)
	}
	v := SumOctaves(f.prim, x, y, f.params.Octaves, f.params.Persistence, f.params.Scale, 0)
	return Shape(v, f.params.Sigmoid)
}

// At is the lattice field function: Sample plus the optional offset field.
func (f *Field) At(x, y int) float64 {
	fx, fy := float64(x), float64(y)
	v := f.Sample(fx, fy)
	if f.offset != nil {
		v += f.offset(fx, fy)
	}
	return v
}

func (f *Field) warp(x, y float64) (float64, float64) {
	s := f.params.WarpScale
	if s <= 0 {
		s = f.params.Scale
	}
	// Displacement layers sit above the main octave range on the z axis so they stay decorrelated.
	z := float64(f.params.Octaves)
	du := SumOctaves(f.prim, x+0.31*s, y+0.17*s, warpOctaves, 0.5, s, z)
	dv := SumOctaves(f.prim, x+0.73*s, y+0.51*s, warpOctaves, 0.5, s, z+warpOctaves)
	return x + f.params.Warp*du, y + f.params.Warp*dv
}

// SumOctaves is the normalised fractal sum. Octave i is evaluated at z = z0+i,
// which decorrelates octaves. scale must be positive.
func SumOctaves(prim Primitive, x, y float64, octaves int, persistence, scale, z0 float64) float64 {
	var noise, maxAmp float64
	amp := 1.0
	freq := 1 / scale
	for i := 0; i < octaves; i++ {
		noise += prim.Eval3(x*freq, y*freq, z0+float64(i)) * amp
		maxAmp += amp
		amp *= persistence
		freq *= 2
	}
	return noise / maxAmp
}

// Shape applies the sigmoid contrast stretch; intensity 0 is the identity.
func Shape(v, intensity float64) float64 {
	if intensity == 0 {
		return v
	}
	return 2*sigmoid(v*intensity) - 1
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
