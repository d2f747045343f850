package march

import (
	"context"

	"github.com/MeKo-Tech/topollock/internal/lattice"
	"github.com/MeKo-Tech/topollock/internal/surface"
	"github.com/MeKo-Tech/topollock/internal/threshold"
	"github.com/paulmach/orb"
)

// Mode selects what the walker emits per cell.
type Mode int

const (
	// Boundary strokes iso-lines.
	Boundary Mode = iota
	// Region fills the area above each threshold.
	Region
)

func (m Mode) String() string {
	if m == Region {
		return "region"
	}
	return "boundary"
}

// Options configures a walk.
type Options struct {
	// CellSize is the pixel size of one lattice cell.
	CellSize float64
	// Origin places the NW corner of cell (0, 0).
	Origin surface.Transform
	Mode   Mode
	// Prune evaluates only thresholds that can cross each cell. Leave it off
	// for single-level schedules without a Delta.
	Prune bool
	// StrokeWeight is applied before walking when positive.
	StrokeWeight float64
}

// Stats counts the work done by a walk.
type Stats struct {
	Cells     int
	Evaluated int
	Emitted   int
}

// Walk classifies every (cell, threshold) pair of l row by row, top to
// bottom and left to right, and emits the resulting geometry onto s. Entry
// colours are applied as stroke (Boundary) or fill (Region) colour; nil
// colours keep the current surface state. ctx is checked once per row; on
// cancellation the stats so far are returned with ctx.Err().
func Walk(ctx context.Context, l *lattice.Lattice, sched threshold.Schedule, opts Options, s surface.Surface) (Stats, error) {
	if opts.StrokeWeight > 0 {
		s.SetStrokeWeight(opts.StrokeWeight)
	}

	var (
		stats   Stats
		entries = sched.Entries
		pruned  []threshold.Entry
		buf     = make([]orb.Point, 0, 6)
	)

	for y := 0; y < l.NY; y++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		for x := 0; x < l.NX; x++ {
			c := l.Cell(x, y)
			stats.Cells++

			levels := entries
			if opts.Prune {
				pruned = sched.Relevant(pruned[:0], c.Min(), c.Max())
				levels = pruned
			}
			if len(levels) == 0 {
				continue
			}

			tr := opts.Origin.Translate(float64(x)*opts.CellSize, float64(y)*opts.CellSize)
			for _, e := range levels {
				stats.Evaluated++
				id := Classify(c, e.Value)

				switch opts.Mode {
				case Region:
					if id == 0 {
						continue
					}
					if e.Color != nil {
						s.SetFillColor(e.Color)
					}
					buf = EmitRegion(s, tr, id, c, e.Value, opts.CellSize, buf)
					stats.Emitted++
				default:
					if id == 0 || id == 15 {
						continue
					}
					if e.Color != nil {
						s.SetStrokeColor(e.Color)
					}
					stats.Emitted += EmitBoundary(s, tr, id, c, e.Value, opts.CellSize)
				}
			}
		}
	}
	return stats, nil
}
