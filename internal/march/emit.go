package march

import (
	"github.com/MeKo-Tech/topollock/internal/lattice"
	"github.com/MeKo-Tech/topollock/internal/surface"
	"github.com/paulmach/orb"
)

// Interpolate maps t from [a, b] onto [0, size] without clamping.
func Interpolate(t, a, b, size float64) float64 {
	return size * (t - a) / (b - a)
}

// Point returns vertex v of a cell with the given corners, threshold and
// size, in cell-local coordinates with NW at the origin and y pointing down.
// Edge crossings are only meaningful when the edge actually straddles t.
func Point(v Vertex, c lattice.Corners, t, size float64) orb.Point {
	switch v {
	case N:
		return orb.Point{Interpolate(t, c.NW, c.NE, size), 0}
	case E:
		return orb.Point{size, Interpolate(t, c.NE, c.SE, size)}
	case S:
		return orb.Point{Interpolate(t, c.SW, c.SE, size), size}
	case W:
		return orb.Point{0, Interpolate(t, c.NW, c.SW, size)}
	case NW:
		return orb.Point{0, 0}
	case NE:
		return orb.Point{size, 0}
	case SE:
		return orb.Point{size, size}
	default:
		return orb.Point{0, size}
	}
}

// BoundarySegments appends the boundary segments of configuration id to dst
// in cell-local coordinates. Ids 0 and 15 append nothing.
func BoundarySegments(dst []orb.LineString, id int, c lattice.Corners, t, size float64) []orb.LineString {
	for _, seg := range boundaryTable[id] {
		dst = append(dst, orb.LineString{
			Point(seg[0], c, t, size),
			Point(seg[1], c, t, size),
		})
	}
	return dst
}

// RegionPolygon appends the open ring of the filled region of configuration
// id to dst in cell-local coordinates. Id 0 appends nothing.
func RegionPolygon(dst []orb.Point, id int, c lattice.Corners, t, size float64) []orb.Point {
	for _, v := range regionTable[id] {
		dst = append(dst, Point(v, c, t, size))
	}
	return dst
}

// EmitBoundary strokes the boundary of one cell onto s, placing the cell's
// NW corner at tr.
func EmitBoundary(s surface.Surface, tr surface.Transform, id int, c lattice.Corners, t, size float64) int {
	segs := boundaryTable[id]
	for _, seg := range segs {
		s.Line(
			tr.Apply(Point(seg[0], c, t, size)),
			tr.Apply(Point(seg[1], c, t, size)),
		)
	}
	return len(segs)
}

// EmitRegion fills the region of one cell onto s. buf is scratch space and
// is returned for reuse.
func EmitRegion(s surface.Surface, tr surface.Transform, id int, c lattice.Corners, t, size float64, buf []orb.Point) []orb.Point {
	buf = RegionPolygon(buf[:0], id, c, t, size)
	if len(buf) == 0 {
		return buf
	}
	s.Polygon(tr.ApplyAll(buf))
	return buf
}
