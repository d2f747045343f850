package sketch

import (
	"context"
	"math"

	"github.com/MeKo-Tech/topollock/internal/lattice"
	"github.com/MeKo-Tech/topollock/internal/march"
	"github.com/MeKo-Tech/topollock/internal/palette"
	"github.com/MeKo-Tech/topollock/internal/surface"
	"github.com/MeKo-Tech/topollock/internal/threshold"
)

// lines draws a topographic map: the area below the land/ocean ratio is
// filled, then iso-lines are stroked over the whole field.
type lines struct{}

func (lines) Name() string           { return "lines" }
func (lines) DefaultPalette() string { return "" }
func (lines) Frame(o Options) Frame  { return o.Lines.Frame }

func (lines) Render(ctx context.Context, p *Pass, o Options, dst surface.Surface) (march.Stats, error) {
	ln := o.Lines
	dst.Clear(hexOr(o.Background, hexOr(ln.Background, palette.DefaultBackground)))

	field, err := p.NewField(ln.Noise)
	if err != nil {
		return march.Stats{}, err
	}
	nx, ny := ln.Cells()
	l := lattice.Build(nx, ny, field.At)
	if err := ctx.Err(); err != nil {
		return march.Stats{}, err
	}

	ratio := ln.Range * 2
	ocean := threshold.Build(-1+ratio, 1, 2-ratio, threshold.Fixed(hexOr(ln.OceanColor, palette.DefaultStroke)))
	stats, err := march.Walk(ctx, l, ocean, march.Options{
		CellSize: ln.CellSize,
		Origin:   ln.Origin(),
		Mode:     march.Region,
		Prune:    true,
	}, dst)
	if err != nil {
		return stats, err
	}

	count := int(math.Floor(ratio * ln.Density))
	contours := threshold.Build(-1, count, 1/ln.Density, threshold.Fixed(hexOr(ln.LineColor, palette.DefaultStroke)))
	s, err := march.Walk(ctx, l, contours, march.Options{
		CellSize:     ln.CellSize,
		Origin:       ln.Origin(),
		Mode:         march.Boundary,
		Prune:        true,
		StrokeWeight: ln.StrokeWeight,
	}, dst)
	return addStats(stats, s), err
}
