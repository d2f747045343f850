package noise

import (
	"math"
	"testing"
)

// constPrimitive returns the same value everywhere and counts evaluations.
type constPrimitive struct {
	v     float64
	calls int
	zs    []float64
}

func (c *constPrimitive) Eval3(_, _, z float64) float64 {
	c.calls++
	c.zs = append(c.zs, z)
	return c.v
}

func TestSumOctavesNormalises(t *testing.T) {
	prim := &constPrimitive{v: 0.5}
	got := SumOctaves(prim, 3, 4, DefaultOctaves, 0.3, 100, 0)
	if math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("constant primitive should normalise to itself, got %v", got)
	}
	if prim.calls != DefaultOctaves {
		t.Fatalf("expected %d evaluations, got %d", DefaultOctaves, prim.calls)
	}
	for i, z := range prim.zs {
		if z != float64(i) {
			t.Fatalf("octave %d evaluated at z=%v, want %d", i, z, i)
		}
	}
}

func TestShape(t *testing.T) {
	tests := []struct {
		name      string
		v         float64
		intensity float64
		want      float64
	}{
		{"identity at zero intensity", 0.37, 0, 0.37},
		{"zero stays zero", 0, 9, 0},
		{"symmetric", -0.4, 5, -Shape(0.4, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Shape(tt.v, tt.intensity); math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("Shape(%v, %v) = %v, want %v", tt.v, tt.intensity, got, tt.want)
			}
		})
	}

	// Higher intensity pushes values towards ±1.
	if !(Shape(0.3, 10) > Shape(0.3, 2)) {
		t.Fatalf("expected stronger stretch at higher intensity")
	}
	if v := Shape(1, 50); v <= 0.99 || v > 1 {
		t.Fatalf("expected saturation near 1, got %v", v)
	}
}

func TestFieldDeterministic(t *testing.T) {
	params := Params{Scale: 400, Persistence: 0.2, Octaves: 16}
	for _, backend := range []Backend{BackendSimplex, BackendPerlin} {
		t.Run(string(backend), func(t *testing.T) {
			a, err := NewPrimitive(backend, 1337)
			if err != nil {
				t.Fatal(err)
			}
			b, err := NewPrimitive(backend, 1337)
			if err != nil {
				t.Fatal(err)
			}
			fa := NewField(a, params)
			fb := NewField(b, params)

			if fa.At(0, 0) != fb.At(0, 0) {
				t.Fatalf("same seed must reproduce bit-identical samples")
			}
			for _, p := range [][2]int{{17, 3}, {250, 411}, {1299, 899}} {
				va, vb := fa.At(p[0], p[1]), fb.At(p[0], p[1])
				if va != vb {
					t.Fatalf("sample at %v differs: %v vs %v", p, va, vb)
				}
				if math.Abs(va) > 1.5 {
					t.Fatalf("sample at %v out of range: %v", p, va)
				}
			}
		})
	}
}

func TestFieldSeedsDiffer(t *testing.T) {
	params := Params{Scale: 50, Persistence: 0.5}
	a, _ := NewPrimitive(BackendSimplex, 1)
	b, _ := NewPrimitive(BackendSimplex, 2)
	fa, fb := NewField(a, params), NewField(b, params)

	same := 0
	for i := 0; i < 20; i++ {
		if fa.At(i*7, i*3) == fb.At(i*7, i*3) {
			same++
		}
	}
	if same == 20 {
		t.Fatalf("different seeds produced identical fields")
	}
}

func TestFieldWarp(t *testing.T) {
	prim, _ := NewPrimitive(BackendSimplex, 42)
	plain := NewField(prim, Params{Scale: 80, Persistence: 0.4})
	zero := NewField(prim, Params{Scale: 80, Persistence: 0.4, WarpScale: 30})
	warped := NewField(prim, Params{Scale: 80, Persistence: 0.4, Warp: 25, WarpScale: 120})

	if plain.Sample(10, 20) != zero.Sample(10, 20) {
		t.Fatalf("zero warp must not change samples")
	}
	diff := 0
	for i := 0; i < 10; i++ {
		if plain.Sample(float64(i*13), 5) != warped.Sample(float64(i*13), 5) {
			diff++
		}
	}
	if diff == 0 {
		t.Fatalf("warp had no effect")
	}
}

func TestFieldOffsetOnlyAffectsAt(t *testing.T) {
	prim := &constPrimitive{v: 0.1}
	f := NewField(prim, Params{Scale: 10, Persistence: 0.5, Octaves: 2})
	g := f.WithOffset(func(x, y float64) float64 { return x + y })

	if got := g.At(2, 3); math.Abs(got-5.1) > 1e-12 {
		t.Fatalf("At with offset = %v, want 5.1", got)
	}
	if got := f.At(2, 3); math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("original field must be unchanged, got %v", got)
	}
}

func TestNewPrimitiveUnknown(t *testing.T) {
	if _, err := NewPrimitive("value", 1); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
