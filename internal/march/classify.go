package march

import "github.com/MeKo-Tech/topollock/internal/lattice"

// Classify returns the configuration id 8·[NW>t] + 4·[NE>t] + 2·[SE>t] + 1·[SW>t].
// A corner equal to t counts as below.
func Classify(c lattice.Corners, t float64) int {
	id := 0
	if c.NW > t {
		id |= 8
	}
	if c.NE > t {
		id |= 4
	}
	if c.SE > t {
		id |= 2
	}
	if c.SW > t {
		id |= 1
	}
	return id
}
