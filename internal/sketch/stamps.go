package sketch

import (
	"context"
	"math"

	"github.com/MeKo-Tech/topollock/internal/lattice"
	"github.com/MeKo-Tech/topollock/internal/march"
	"github.com/MeKo-Tech/topollock/internal/noise"
	"github.com/MeKo-Tech/topollock/internal/poisson"
	"github.com/MeKo-Tech/topollock/internal/surface"
	"github.com/MeKo-Tech/topollock/internal/threshold"
)

// stamps scatters blob-shaped motifs over Poisson-disk points. Each motif
// has its own noise lifted in the middle by a centre offset and is cut at 0.
type stamps struct{}

func (stamps) Name() string           { return "stamps" }
func (stamps) DefaultPalette() string { return "jupiter" }
func (stamps) Frame(o Options) Frame  { return o.Stamps.Frame }

func (stamps) Render(ctx context.Context, p *Pass, o Options, dst surface.Surface) (march.Stats, error) {
	st := o.Stamps
	dst.Clear(hexOr(o.Background, p.Palette.BackgroundColor()))

	points := poisson.Sample(p.Rand, float64(st.Width), float64(st.Height), st.MinDist, st.Tries)

	n := st.Cells
	half := float64(n) * st.CellSize / 2
	origin := st.Origin().Translate(-half, -half)
	offset := noise.Center(n, n, st.Baseline, st.Magnitude)

	var stats march.Stats
	for _, pt := range points {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		col := p.Palette.RandomColor(p.Rand)
		field, err := p.NewField(st.Noise)
		if err != nil {
			return stats, err
		}
		l := lattice.Build(n, n, field.WithOffset(offset).At)

		opts := march.Options{
			CellSize: st.CellSize,
			Origin:   origin.Translate(math.Floor(pt[0]), math.Floor(pt[1])),
			Mode:     march.Region,
		}
		if st.Shadow {
			s, err := march.Walk(ctx, l, threshold.Single(0, p.Palette.StrokeColor()), opts, dst)
			stats = addStats(stats, s)
			if err != nil {
				return stats, err
			}
			opts.Origin = opts.Origin.Translate(st.ShadowDX, st.ShadowDY)
		}
		s, err := march.Walk(ctx, l, threshold.Single(0, col), opts, dst)
		stats = addStats(stats, s)
		if err != nil {
			return stats, err
		}
	}
	return stats, nil
}
