package surface

import (
	"encoding/json"
	"fmt"
	"image/color"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Kind tells recorded lines from filled polygons.
type Kind string

const (
	KindLine    Kind = "line"
	KindPolygon Kind = "polygon"
)

// Shape is one drawing call captured by a Recorder, in surface coordinates.
type Shape struct {
	Kind     Kind
	Geometry orb.Geometry
	Color    color.Color
	Weight   float64
}

// Recorder keeps every drawing call as orb geometry instead of pixels.
type Recorder struct {
	Background color.Color
	Shapes     []Shape

	fill   color.Color
	stroke color.Color
	weight float64
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{fill: color.Black, stroke: color.Black, weight: 1}
}

// Clear drops all recorded shapes.
func (r *Recorder) Clear(c color.Color) {
	r.Background = c
	r.Shapes = r.Shapes[:0]
}

func (r *Recorder) SetFillColor(c color.Color)   { r.fill = c }
func (r *Recorder) SetStrokeColor(c color.Color) { r.stroke = c }
func (r *Recorder) SetStrokeWeight(w float64)    { r.weight = w }

func (r *Recorder) Line(a, b orb.Point) {
	r.Shapes = append(r.Shapes, Shape{
		Kind:     KindLine,
		Geometry: orb.LineString{a, b},
		Color:    r.stroke,
		Weight:   r.weight,
	})
}

func (r *Recorder) Polygon(pts []orb.Point) {
	if len(pts) < 3 {
		return
	}
	ring := make(orb.Ring, 0, len(pts)+1)
	ring = append(ring, pts...)
	ring = append(ring, pts[0])
	r.Shapes = append(r.Shapes, Shape{
		Kind:     KindPolygon,
		Geometry: orb.Polygon{ring},
		Color:    r.fill,
	})
}

// Lines returns the recorded line segments in drawing order.
func (r *Recorder) Lines() []orb.LineString {
	var out []orb.LineString
	for _, s := range r.Shapes {
		if s.Kind == KindLine {
			out = append(out, s.Geometry.(orb.LineString))
		}
	}
	return out
}

// Polygons returns the recorded polygons in drawing order.
func (r *Recorder) Polygons() []orb.Polygon {
	var out []orb.Polygon
	for _, s := range r.Shapes {
		if s.Kind == KindPolygon {
			out = append(out, s.Geometry.(orb.Polygon))
		}
	}
	return out
}

// ToGeoJSON converts the recorded shapes to a FeatureCollection with
// "kind", "color" and (for lines) "weight" properties.
func (r *Recorder) ToGeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range r.Shapes {
		f := geojson.NewFeature(s.Geometry)
		f.Properties["kind"] = string(s.Kind)
		if s.Color != nil {
			f.Properties["color"] = Hex(s.Color)
		}
		if s.Kind == KindLine {
			f.Properties["weight"] = s.Weight
		}
		fc.Append(f)
	}
	return fc
}

// ToGeoJSONBytes marshals the recorded shapes as indented GeoJSON.
func (r *Recorder) ToGeoJSONBytes() ([]byte, error) {
	data, err := json.MarshalIndent(r.ToGeoJSON(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GeoJSON: %w", err)
	}
	return data, nil
}

// Hex formats c as #rrggbb, or #rrggbbaa when not opaque.
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// Tee forwards every call to all of its surfaces.
type Tee []Surface

func (t Tee) Clear(c color.Color) {
	for _, s := range t {
		s.Clear(c)
	}
}

func (t Tee) SetFillColor(c color.Color) {
	for _, s := range t {
		s.SetFillColor(c)
	}
}

func (t Tee) SetStrokeColor(c color.Color) {
	for _, s := range t {
		s.SetStrokeColor(c)
	}
}

func (t Tee) SetStrokeWeight(w float64) {
	for _, s := range t {
		s.SetStrokeWeight(w)
	}
}

func (t Tee) Line(a, b orb.Point) {
	for _, s := range t {
		s.Line(a, b)
	}
}

func (t Tee) Polygon(pts []orb.Point) {
	for _, s := range t {
		s.Polygon(pts)
	}
}
