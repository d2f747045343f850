// Package sketch contains the drawing recipes built on the marching-squares
// core. Every recipe samples one or more lattices, walks them with a
// threshold schedule and emits the result onto a surface.
package sketch

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sort"

	"github.com/MeKo-Tech/topollock/internal/march"
	"github.com/MeKo-Tech/topollock/internal/palette"
	"github.com/MeKo-Tech/topollock/internal/surface"
	"github.com/paulmach/orb"
)

// ErrUnknownRecipe is returned by Lookup for unregistered names.
var ErrUnknownRecipe = errors.New("unknown recipe")

// Recipe is one kind of sketch.
type Recipe interface {
	Name() string
	// DefaultPalette is used when Options.Palette is empty; "" means none.
	DefaultPalette() string
	Frame(o Options) Frame
	// Render clears dst and draws the sketch. It must only use p for randomness.
	Render(ctx context.Context, p *Pass, o Options, dst surface.Surface) (march.Stats, error)
}

var recipes = map[string]Recipe{}

func register(r Recipe) { recipes[r.Name()] = r }

func init() {
	register(bands{})
	register(lines{})
	register(imageRecipe{})
	register(layers{})
	register(stamps{})
}

// Lookup returns the named recipe.
func Lookup(name string) (Recipe, error) {
	r, ok := recipes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecipe, name)
	}
	return r, nil
}

// Names lists the recipes in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(recipes))
	for n := range recipes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ResolvePalette returns the palette named in o, or the recipe default.
func ResolvePalette(r Recipe, o Options) (palette.Palette, error) {
	name := o.Palette
	if name == "" {
		name = r.DefaultPalette()
	}
	if name == "" {
		return palette.Palette{}, nil
	}
	return palette.Get(name)
}

// Size returns the canvas size of the recipe selected by o.
func Size(o Options) (int, int, error) {
	r, err := Lookup(o.Recipe)
	if err != nil {
		return 0, 0, err
	}
	w, h := r.Frame(o).Canvas()
	return w, h, nil
}

// Render draws the recipe selected by o for seed onto dst.
func Render(ctx context.Context, seed int64, o Options, dst surface.Surface) (march.Stats, error) {
	r, err := Lookup(o.Recipe)
	if err != nil {
		return march.Stats{}, err
	}
	pal, err := ResolvePalette(r, o)
	if err != nil {
		return march.Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		return march.Stats{}, err
	}

	stats, err := r.Render(ctx, NewPass(seed, pal, o.Backend), o, dst)
	if err != nil {
		return stats, fmt.Errorf("recipe %s: %w", r.Name(), err)
	}
	if o.Grid > 0 {
		f := r.Frame(o)
		drawGrid(dst, f.Origin(), float64(f.Width), float64(f.Height), o.Grid)
	}
	return stats, nil
}

// gridColor is a translucent black used for the reference lattice.
var gridColor = color.NRGBA{A: 70}

// drawGrid strokes a num×num reference lattice over a w×h area.
func drawGrid(s surface.Surface, tr surface.Transform, w, h float64, num int) {
	s.SetStrokeColor(gridColor)
	s.SetStrokeWeight(1)
	for i := 0; i <= num; i++ {
		x := float64(i) * w / float64(num)
		y := float64(i) * h / float64(num)
		s.Line(tr.Apply(orb.Point{x, 0}), tr.Apply(orb.Point{x, h}))
		s.Line(tr.Apply(orb.Point{0, y}), tr.Apply(orb.Point{w, y}))
	}
}

func addStats(a, b march.Stats) march.Stats {
	return march.Stats{
		Cells:     a.Cells + b.Cells,
		Evaluated: a.Evaluated + b.Evaluated,
		Emitted:   a.Emitted + b.Emitted,
	}
}
