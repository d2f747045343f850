package sketch

import (
	"context"
	"runtime"
	"sync"

	"github.com/MeKo-Tech/topollock/internal/lattice"
	"github.com/MeKo-Tech/topollock/internal/march"
	"github.com/MeKo-Tech/topollock/internal/noise"
	"github.com/MeKo-Tech/topollock/internal/surface"
	"github.com/MeKo-Tech/topollock/internal/threshold"
)

// layers stacks Count independent noise shapes, each cut at a slightly
// higher level than the one below and shaped by a gradient offset.
type layers struct{}

func (layers) Name() string           { return "layers" }
func (layers) DefaultPalette() string { return "delphi" }
func (layers) Frame(o Options) Frame  { return o.Layers.Frame }

type layerJob struct {
	field *noise.Field
	level threshold.Entry
}

func (layers) Render(ctx context.Context, p *Pass, o Options, dst surface.Surface) (march.Stats, error) {
	lo := o.Layers
	pal := p.Palette.Shuffled(p.Rand)
	dst.Clear(hexOr(o.Background, pal.BackgroundColor()))

	nx, ny := lo.Cells()
	offset, err := noise.OffsetFor(lo.Gradient, nx, ny)
	if err != nil {
		return march.Stats{}, err
	}

	// Fields are seeded up front so the result does not depend on scheduling.
	jobs := make([]layerJob, lo.Count)
	span := lo.Top - lo.Bottom
	for k := range jobs {
		field, err := p.NewField(lo.Noise)
		if err != nil {
			return march.Stats{}, err
		}
		jobs[k] = layerJob{
			field: field.WithOffset(offset),
			level: threshold.Entry{
				Value: lo.Bottom + span*float64(k)/float64(lo.Count),
				Color: pal.Index(k),
			},
		}
	}

	opts := march.Options{CellSize: lo.CellSize, Origin: lo.Origin(), Mode: march.Region}
	draw := func(job layerJob, s surface.Surface) (march.Stats, error) {
		l := lattice.Build(nx, ny, job.field.At)
		return march.Walk(ctx, l, threshold.Schedule{Entries: []threshold.Entry{job.level}}, opts, s)
	}

	stacked, ok := dst.(surface.Layered)
	if !ok {
		var stats march.Stats
		for _, job := range jobs {
			s, err := draw(job, dst)
			stats = addStats(stats, s)
			if err != nil {
				return stats, err
			}
		}
		return stats, nil
	}

	targets := make([]surface.Surface, len(jobs))
	for k := range targets {
		targets[k] = stacked.NewLayer()
	}
	results := make([]march.Stats, len(jobs))

	work := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(runtime.GOMAXPROCS(0), len(jobs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range work {
				if ctx.Err() != nil {
					continue
				}
				results[k], _ = draw(jobs[k], targets[k])
			}
		}()
	}
	for k := range jobs {
		work <- k
	}
	close(work)
	wg.Wait()

	var stats march.Stats
	for _, r := range results {
		stats = addStats(stats, r)
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, stacked.MergeLayers(targets)
}
