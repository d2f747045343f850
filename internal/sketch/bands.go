package sketch

import (
	"context"

	"github.com/MeKo-Tech/topollock/internal/lattice"
	"github.com/MeKo-Tech/topollock/internal/march"
	"github.com/MeKo-Tech/topollock/internal/surface"
	"github.com/MeKo-Tech/topollock/internal/threshold"
)

// bands fills evenly spaced levels of one noise field with random palette
// colours, lowest level first, so the result reads like a layered relief.
type bands struct{}

func (bands) Name() string           { return "bands" }
func (bands) DefaultPalette() string { return "empusa" }
func (bands) Frame(o Options) Frame  { return o.Bands.Frame }

func (bands) Render(ctx context.Context, p *Pass, o Options, dst surface.Surface) (march.Stats, error) {
	b := o.Bands
	dst.Clear(hexOr(o.Background, p.Palette.BackgroundColor()))

	field, err := p.NewField(b.Noise)
	if err != nil {
		return march.Stats{}, err
	}
	nx, ny := b.Cells()
	l := lattice.Build(nx, ny, field.At)
	sched := threshold.Build(b.Init, b.Steps, b.Delta, threshold.Random(p.Palette, p.Rand))

	// Each level covers the whole grid before the next one is drawn.
	var stats march.Stats
	opts := march.Options{CellSize: b.CellSize, Origin: b.Origin(), Mode: march.Region}
	for _, e := range sched.Entries {
		level := threshold.Schedule{Entries: []threshold.Entry{e}}
		s, err := march.Walk(ctx, l, level, opts, dst)
		stats = addStats(stats, s)
		if err != nil {
			return stats, err
		}
	}
	return stats, nil
}
