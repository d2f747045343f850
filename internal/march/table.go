// Package march implements marching squares over a lattice: cell
// classification, the 16-case boundary and region tables, edge interpolation
// and the grid walk that emits geometry onto a surface.
package march

// Vertex names a point of a cell: one of the four edge crossings or a corner.
type Vertex uint8

const (
	N Vertex = iota // crossing on the top edge
	E               // crossing on the right edge
	S               // crossing on the bottom edge
	W               // crossing on the left edge
	NW
	NE
	SE
	SW
)

func (v Vertex) String() string {
	return [...]string{"N", "E", "S", "W", "NW", "NE", "SE", "SW"}[v]
}

// IsEdge reports whether v is an interpolated edge crossing.
func (v Vertex) IsEdge() bool { return v <= W }

// Segment is a boundary line between two edge crossings.
type Segment [2]Vertex

// boundaryTable lists the boundary segments per configuration id. The saddles
// 5 and 10 draw both diagonals' cuts.
var boundaryTable = [16][]Segment{
	0:  nil,
	1:  {{S, W}},
	2:  {{E, S}},
	3:  {{E, W}},
	4:  {{N, E}},
	5:  {{E, S}, {W, N}},
	6:  {{N, S}},
	7:  {{W, N}},
	8:  {{W, N}},
	9:  {{N, S}},
	10: {{E, S}, {W, N}},
	11: {{N, E}},
	12: {{E, W}},
	13: {{E, S}},
	14: {{S, W}},
	15: nil,
}

// regionTable lists the vertex ring of the filled region above the threshold.
// Id 0 has no region; the saddles fill a six-sided band joining both corners.
var regionTable = [16][]Vertex{
	0:  nil,
	1:  {S, W, SW},
	2:  {E, S, SE},
	3:  {E, W, SW, SE},
	4:  {N, E, NE},
	5:  {E, S, SW, W, N, NE},
	6:  {N, S, SE, NE},
	7:  {W, N, NE, SE, SW},
	8:  {W, N, NW},
	9:  {N, S, SW, NW},
	10: {E, SE, S, W, NW, N},
	11: {N, E, SE, SW, NW},
	12: {E, W, NW, NE},
	13: {E, S, SW, NW, NE},
	14: {S, W, NW, NE, SE},
	15: {NW, NE, SE, SW},
}

// Segments returns the boundary segments of configuration id.
func Segments(id int) []Segment { return boundaryTable[id] }

// Ring returns the region ring of configuration id.
func Ring(id int) []Vertex { return regionTable[id] }
