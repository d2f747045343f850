// Package poisson scatters points so that no two are closer than a minimum
// distance (Poisson-disk sampling).
package poisson

import (
	"math/rand"

	"github.com/fogleman/poissondisc"
	"github.com/paulmach/orb"
)

// Sample fills [0,w]×[0,h] with points at least minDist apart, trying up to
// tries candidates around each active point. The result is reproducible for
// a given rng state.
func Sample(rng *rand.Rand, w, h, minDist float64, tries int) []orb.Point {
	if w <= 0 || h <= 0 || minDist <= 0 {
		return nil
	}
	if tries < 1 {
		tries = 1
	}

	disc := poissondisc.Sample(0, 0, w, h, minDist, tries, rng)
	points := make([]orb.Point, len(disc))
	for i, p := range disc {
		points[i] = orb.Point{p.X, p.Y}
	}
	return points
}
