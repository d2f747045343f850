package sketch

import (
	"context"
	"math"

	"github.com/MeKo-Tech/topollock/internal/lattice"
	"github.com/MeKo-Tech/topollock/internal/march"
	"github.com/MeKo-Tech/topollock/internal/surface"
	"github.com/MeKo-Tech/topollock/internal/threshold"
)

// imageRecipe contours the luminance of a source picture with bands spread
// evenly over the palette.
type imageRecipe struct{}

func (imageRecipe) Name() string           { return "image" }
func (imageRecipe) DefaultPalette() string { return "empusa" }
func (imageRecipe) Frame(o Options) Frame  { return o.Image.Frame }

func (imageRecipe) Render(ctx context.Context, p *Pass, o Options, dst surface.Surface) (march.Stats, error) {
	im := o.Image
	sampler, err := lattice.LoadImageSampler(im.Path, im.Blur)
	if err != nil {
		return march.Stats{}, err
	}
	dst.Clear(hexOr(o.Background, p.Palette.BackgroundColor()))

	nx, ny := im.Cells()
	l := lattice.Build(nx, ny, sampler.Field(nx, ny))

	count := int(math.Floor(2 * im.Density))
	sched := threshold.Build(-1, count, 1/im.Density, threshold.Spread(p.Palette))
	return march.Walk(ctx, l, sched, march.Options{
		CellSize: im.CellSize,
		Origin:   im.Origin(),
		Mode:     march.Region,
		Prune:    true,
	}, dst)
}
