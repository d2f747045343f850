package march

import (
	"context"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/MeKo-Tech/topollock/internal/lattice"
	"github.com/MeKo-Tech/topollock/internal/surface"
	"github.com/MeKo-Tech/topollock/internal/threshold"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func randomCorners(rng *rand.Rand) lattice.Corners {
	return lattice.Corners{
		NW: rng.Float64()*2 - 1,
		NE: rng.Float64()*2 - 1,
		SE: rng.Float64()*2 - 1,
		SW: rng.Float64()*2 - 1,
	}
}

func hasTie(c lattice.Corners, t float64) bool {
	return c.NW == t || c.NE == t || c.SE == t || c.SW == t
}

func TestClassifyBits(t *testing.T) {
	tests := []struct {
		name string
		c    lattice.Corners
		t    float64
		want int
	}{
		{"all below", lattice.Corners{NW: -1, NE: -1, SE: -1, SW: -1}, 0, 0},
		{"all above", lattice.Corners{NW: 1, NE: 1, SE: 1, SW: 1}, 0, 15},
		{"nw only", lattice.Corners{NW: 1, NE: -1, SE: -1, SW: -1}, 0, 8},
		{"ne only", lattice.Corners{NW: -1, NE: 1, SE: -1, SW: -1}, 0, 4},
		{"se only", lattice.Corners{NW: -1, NE: -1, SE: 1, SW: -1}, 0, 2},
		{"sw only", lattice.Corners{NW: -1, NE: -1, SE: -1, SW: 1}, 0, 1},
		{"equal counts as below", lattice.Corners{NW: 0.5, NE: 0.5, SE: 0.5, SW: 0.5}, 0.5, 0},
		{"saddle", lattice.Corners{NW: 1, NE: -1, SE: 1, SW: -1}, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.c, tt.t); got != tt.want {
				t.Fatalf("Classify = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClassifyShiftInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		c := randomCorners(rng)
		th := rng.Float64()*2 - 1
		// Dyadic shifts keep the sums exact.
		d := float64(rng.Intn(64)-32) / 4
		if got, want := Classify(c.Shift(d), th+d), Classify(c, th); got != want {
			t.Fatalf("shift %v changed id %d -> %d for %+v, t=%v", d, want, got, c, th)
		}
	}
}

func TestClassifyNegationComplements(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		c := randomCorners(rng)
		th := rng.Float64()*2 - 1
		if hasTie(c, th) {
			continue
		}
		id := Classify(c, th)
		if got := Classify(c.Negate(), -th); got != 15-id {
			t.Fatalf("negated id = %d, want %d", got, 15-id)
		}
	}
}

func TestInterpolate(t *testing.T) {
	assert.Equal(t, 5.0, Interpolate(0.5, 0, 1, 10))
	assert.Equal(t, 0.0, Interpolate(0, 0, 1, 10))
	assert.Equal(t, 10.0, Interpolate(1, 0, 1, 10))
	// No clamping.
	assert.Equal(t, 20.0, Interpolate(2, 0, 1, 10))
	// Direction follows the edge.
	assert.Equal(t, 2.5, Interpolate(0.75, 1, 0, 10))
}

func TestUniformCellsEmitNoBoundary(t *testing.T) {
	c := lattice.Corners{NW: 0.2, NE: 0.4, SE: 0.3, SW: 0.1}
	assert.Empty(t, BoundarySegments(nil, 0, c, 1, 10))
	assert.Empty(t, BoundarySegments(nil, 15, c, -1, 10))
	assert.Empty(t, RegionPolygon(nil, 0, c, 1, 10))

	full := RegionPolygon(nil, 15, c, -1, 10)
	assert.Equal(t, []orb.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, full)
}

func TestTablesAreSelfDual(t *testing.T) {
	for id := 0; id < 16; id++ {
		a, b := Segments(id), Segments(15-id)
		require.Equal(t, len(a), len(b), "id %d", id)
		for i := range a {
			assert.ElementsMatch(t, a[i][:], b[i][:], "id %d segment %d", id, i)
		}
	}
	for id := 1; id < 15; id++ {
		for _, v := range Ring(id) {
			if v.IsEdge() {
				continue
			}
			// Every corner vertex of a region must be above the threshold.
			bit := map[Vertex]int{NW: 8, NE: 4, SE: 2, SW: 1}[v]
			assert.NotZero(t, id&bit, "id %d uses corner %s below threshold", id, v)
		}
	}
}

func TestSaddleDrawsTwoSegments(t *testing.T) {
	c := lattice.Corners{NW: 1, NE: -1, SE: 1, SW: -1}
	id := Classify(c, 0)
	require.Equal(t, 10, id)

	rec := surface.NewRecorder()
	n := EmitBoundary(rec, surface.Identity, id, c, 0, 10)
	require.Equal(t, 2, n)

	lines := rec.Lines()
	require.Len(t, lines, 2)
	// East-south then west-north, never joined.
	assert.Equal(t, orb.LineString{{10, 5}, {5, 10}}, lines[0])
	assert.Equal(t, orb.LineString{{0, 5}, {5, 0}}, lines[1])

	poly := RegionPolygon(nil, id, c, 0, 10)
	assert.Len(t, poly, 6)
}

func TestRegionAreasComplement(t *testing.T) {
	const size = 10
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 2000; i++ {
		c := randomCorners(rng)
		th := rng.Float64()*2 - 1
		if hasTie(c, th) {
			continue
		}
		id := Classify(c, th)
		if id == 0 || id == 15 || id == 5 || id == 10 {
			continue
		}

		above := ringArea(RegionPolygon(nil, id, c, th, size))
		below := ringArea(RegionPolygon(nil, 15-id, c.Negate(), -th, size))
		if math.Abs(above+below-size*size) > 1e-6 {
			t.Fatalf("id %d: areas %v + %v != %v", id, above, below, size*size)
		}
		if above <= 0 || above >= size*size {
			t.Fatalf("id %d: area %v outside cell", id, above)
		}
	}
}

func ringArea(pts []orb.Point) float64 {
	ring := append(orb.Ring{}, pts...)
	ring = append(ring, pts[0])
	return math.Abs(planar.Area(orb.Polygon{ring}))
}

func goldenLattice() *lattice.Lattice {
	return lattice.FromRows([][]float64{
		{0.8, -0.2, 0.1},
		{-0.5, 0.9, -0.3},
		{0.2, 0.4, -0.6},
	})
}

func TestWalkGoldenBoundary(t *testing.T) {
	rec := surface.NewRecorder()
	stats, err := Walk(context.Background(), goldenLattice(), threshold.Single(0, nil), Options{CellSize: 10}, rec)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Cells)
	assert.Equal(t, 6, stats.Emitted)

	// Cells (0,0)=10, (1,0)=5, (0,1)=7, (1,1)=9.
	want := []orb.LineString{
		{{10, 10 * 0.2 / 1.1}, {10 * 0.5 / 1.4, 10}}, // (0,0) E-S
		{{0, 10 * 0.8 / 1.3}, {8, 0}},                // (0,0) W-N
		{{20, 2.5}, {17.5, 10}},                      // (1,0) E-S
		{{10, 10 * 0.2 / 1.1}, {10 + 10*0.2/0.3, 0}}, // (1,0) W-N
		{{0, 10 + 10*0.5/0.7}, {10 * 0.5 / 1.4, 10}}, // (0,1) W-N
		{{17.5, 10}, {14, 20}},                       // (1,1) N-S
	}
	got := rec.Lines()
	require.Len(t, got, len(want))
	for i := range want {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, want[i][j][0], got[i][j][0], eps, "segment %d point %d x", i, j)
			assert.InDelta(t, want[i][j][1], got[i][j][1], eps, "segment %d point %d y", i, j)
		}
	}
}

func TestWalkContoursMeetAcrossCells(t *testing.T) {
	rec := surface.NewRecorder()
	_, err := Walk(context.Background(), goldenLattice(), threshold.Single(0, nil), Options{CellSize: 10}, rec)
	require.NoError(t, err)
	lines := rec.Lines()
	// Shared edges yield identical crossings in neighbouring cells.
	assert.Equal(t, lines[0][1], lines[4][1])
	assert.Equal(t, lines[0][0], lines[3][0])
	assert.Equal(t, lines[2][1], lines[5][0])
}

func TestWalkRegionSkipsEmptyAndColours(t *testing.T) {
	l := lattice.FromRows([][]float64{
		{-1, -1, 1},
		{-1, -1, 1},
	})
	green := color.NRGBA{G: 255, A: 255}
	rec := surface.NewRecorder()
	stats, err := Walk(context.Background(), l, threshold.Single(0, green), Options{
		CellSize: 4,
		Origin:   surface.Identity.Translate(100, 50),
		Mode:     Region,
	}, rec)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Cells)
	require.Len(t, rec.Shapes, 1, "cell (0,0) is id 0 and must not be drawn")
	shape := rec.Shapes[0]
	assert.Equal(t, surface.KindPolygon, shape.Kind)
	assert.Equal(t, green, shape.Color)
	// Id 6 (NE and SE above): N, S, SE, NE of cell (1,0) offset by origin.
	assert.Equal(t, orb.Ring{{106, 50}, {106, 54}, {108, 54}, {108, 50}, {106, 50}}, shape.Geometry.(orb.Polygon)[0])
}

func TestWalkPruningPreservesBoundaryOutput(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	l := lattice.Build(12, 9, func(x, y int) float64 { return rng.Float64()*2 - 1 })
	sched := threshold.Build(-1, 20, 0.1, nil)

	full := surface.NewRecorder()
	pruned := surface.NewRecorder()
	a, err := Walk(context.Background(), l, sched, Options{CellSize: 3}, full)
	require.NoError(t, err)
	b, err := Walk(context.Background(), l, sched, Options{CellSize: 3, Prune: true}, pruned)
	require.NoError(t, err)

	assert.Less(t, b.Evaluated, a.Evaluated)
	assert.Equal(t, a.Emitted, b.Emitted)
	assert.Equal(t, full.Shapes, pruned.Shapes)
}

func TestWalkAppliesStrokeWeight(t *testing.T) {
	rec := surface.NewRecorder()
	_, err := Walk(context.Background(), goldenLattice(), threshold.Single(0, color.Black), Options{CellSize: 10, StrokeWeight: 3}, rec)
	require.NoError(t, err)
	for _, s := range rec.Shapes {
		assert.Equal(t, 3.0, s.Weight)
		assert.Equal(t, color.Black, s.Color)
	}
}

func TestWalkPruningPreservesRegionImage(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	l := lattice.Build(15, 12, func(x, y int) float64 { return rng.Float64()*2 - 1 })
	sched := threshold.Build(-1, 20, 0.1, func(i, n int) color.Color {
		return color.NRGBA{R: uint8(i * 12), G: uint8(255 - i*12), B: 80, A: 255}
	})

	full := surface.NewRaster(45, 36)
	pruned := surface.NewRaster(45, 36)
	a, err := Walk(context.Background(), l, sched, Options{CellSize: 3, Mode: Region}, full)
	require.NoError(t, err)
	b, err := Walk(context.Background(), l, sched, Options{CellSize: 3, Mode: Region, Prune: true}, pruned)
	require.NoError(t, err)

	assert.Less(t, b.Emitted, a.Emitted)
	// Dropped levels are full squares painted over by the next kept level.
	assert.Equal(t, full.NRGBA().Pix, pruned.NRGBA().Pix)
}

func TestWalkPruningSkipsCellsAboveLastLevel(t *testing.T) {
	l := lattice.FromRows([][]float64{
		{0.9, 0.8},
		{0.7, 0.95},
	})
	sched := threshold.Build(-1, 5, 0.1, nil) // highest level -0.5

	full := surface.NewRecorder()
	pruned := surface.NewRecorder()
	_, err := Walk(context.Background(), l, sched, Options{CellSize: 4, Mode: Region}, full)
	require.NoError(t, err)
	_, err = Walk(context.Background(), l, sched, Options{CellSize: 4, Mode: Region, Prune: true}, pruned)
	require.NoError(t, err)

	assert.Len(t, full.Shapes, 6)
	assert.Empty(t, pruned.Shapes)
}

func TestWalkStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := surface.NewRecorder()
	stats, err := Walk(ctx, goldenLattice(), threshold.Single(0, nil), Options{CellSize: 10}, rec)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Cells)
	assert.Empty(t, rec.Shapes)
}
