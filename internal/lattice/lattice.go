// Package lattice materialises scalar fields into dense grids of corner values.
package lattice

// FieldFunc yields the scalar value at an integer lattice point.
type FieldFunc func(x, y int) float64

// Lattice holds (NX+1)×(NY+1) values for an NX×NY grid of cells.
// It is immutable after Build and safe for concurrent reads.
type Lattice struct {
	NX, NY int
	values []float64
}

// Build samples fn once per lattice point, row by row. nx and ny must be positive.
func Build(nx, ny int, fn FieldFunc) *Lattice {
	l := &Lattice{NX: nx, NY: ny, values: make([]float64, (nx+1)*(ny+1))}
	i := 0
	for y := 0; y <= ny; y++ {
		for x := 0; x <= nx; x++ {
			l.values[i] = fn(x, y)
			i++
		}
	}
	return l
}

// FromRows builds a lattice from row-major values; every row must have the same length.
func FromRows(rows [][]float64) *Lattice {
	ny := len(rows) - 1
	nx := len(rows[0]) - 1
	l := &Lattice{NX: nx, NY: ny, values: make([]float64, 0, (nx+1)*(ny+1))}
	for _, row := range rows {
		l.values = append(l.values, row...)
	}
	return l
}

// At returns the value at lattice point (x, y), 0 <= x <= NX, 0 <= y <= NY.
func (l *Lattice) At(x, y int) float64 {
	return l.values[y*(l.NX+1)+x]
}

// Cell returns the corner values of cell (x, y), 0 <= x < NX, 0 <= y < NY.
func (l *Lattice) Cell(x, y int) Corners {
	w := l.NX + 1
	i := y*w + x
	return Corners{
		NW: l.values[i],
		NE: l.values[i+1],
		SE: l.values[i+w+1],
		SW: l.values[i+w],
	}
}

// Corners are the four values of a cell: NW=(x,y), NE=(x+1,y), SE=(x+1,y+1), SW=(x,y+1).
type Corners struct {
	NW, NE, SE, SW float64
}

// Min returns the smallest corner value.
func (c Corners) Min() float64 {
	return min(c.NW, c.NE, c.SE, c.SW)
}

// Max returns the largest corner value.
func (c Corners) Max() float64 {
	return max(c.NW, c.NE, c.SE, c.SW)
}

// Negate flips the sign of every corner.
func (c Corners) Negate() Corners {
	return Corners{NW: -c.NW, NE: -c.NE, SE: -c.SE, SW: -c.SW}
}

// Shift adds d to every corner.
func (c Corners) Shift(d float64) Corners {
	return Corners{NW: c.NW + d, NE: c.NE + d, SE: c.SE + d, SW: c.SW + d}
}
