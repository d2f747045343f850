package sketch

import (
	"image/color"
	"math/rand"

	"github.com/MeKo-Tech/topollock/internal/noise"
	"github.com/MeKo-Tech/topollock/internal/palette"
)

// Pass is the state of a single render: the seed, the random source every
// recipe decision is drawn from, the palette and the noise backend. A pass is
// created per render and never shared between renders.
type Pass struct {
	Seed    int64
	Rand    *rand.Rand
	Palette palette.Palette
	Backend noise.Backend
}

// NewPass starts a pass. Equal arguments yield identical renders.
func NewPass(seed int64, pal palette.Palette, backend noise.Backend) *Pass {
	return &Pass{
		Seed:    seed,
		Rand:    rand.New(rand.NewSource(seed)),
		Palette: pal,
		Backend: backend,
	}
}

// NewField returns a fresh noise field whose primitive is seeded from the
// pass random source, so consecutive calls give independent fields.
func (p *Pass) NewField(params noise.Params) (*noise.Field, error) {
	prim, err := noise.NewPrimitive(p.Backend, p.Rand.Int63())
	if err != nil {
		return nil, err
	}
	return noise.NewField(prim, params), nil
}

// hexOr parses s, falling back when it is empty or invalid.
func hexOr(s string, fallback color.Color) color.Color {
	if s == "" {
		return fallback
	}
	c, err := palette.ParseHex(s)
	if err != nil {
		return fallback
	}
	return c
}
