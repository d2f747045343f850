// Package noise provides the layered coherent-noise field sampled by every sketch.
package noise

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Backend names a coherent-noise implementation.
type Backend string

const (
	BackendSimplex Backend = "simplex"
	BackendPerlin  Backend = "perlin"
)

// Primitive is a seeded 3D coherent-noise function with output roughly in [-1, 1].
type Primitive interface {
	Eval3(x, y, z float64) float64
}

// NewPrimitive returns a deterministic primitive for the backend and seed.
// An empty backend selects simplex.
func NewPrimitive(backend Backend, seed int64) (Primitive, error) {
	switch backend {
	case "", BackendSimplex:
		return opensimplex.New(seed), nil
	case BackendPerlin:
		// n=1: every octave of the field is a single perlin layer; the field does the summing.
		return perlinPrimitive{p: perlin.NewPerlin(2.0, 2.0, 1, seed)}, nil
	default:
		return nil, fmt.Errorf("unknown noise backend %q", backend)
	}
}

type perlinPrimitive struct {
	p *perlin.Perlin
}

func (p perlinPrimitive) Eval3(x, y, z float64) float64 {
	return p.p.Noise3D(x, y, z)
}
