package surface

import (
	"encoding/json"
	"image/color"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.NRGBA{R: 255, A: 255}

func TestTransform(t *testing.T) {
	tr := Identity.Translate(10, 20).Translate(-2.5, 1)
	got := tr.Apply(orb.Point{1, 1})
	assert.Equal(t, orb.Point{8.5, 22}, got)

	pts := tr.ApplyAll([]orb.Point{{0, 0}, {1, 2}})
	assert.Equal(t, []orb.Point{{7.5, 21}, {8.5, 23}}, pts)
}

func TestRasterPolygonFill(t *testing.T) {
	r := NewRaster(20, 20)
	r.Clear(color.White)
	r.SetFillColor(red)
	r.Polygon([]orb.Point{{5, 5}, {15, 5}, {15, 15}, {5, 15}})

	img := r.NRGBA()
	assert.Equal(t, red, img.NRGBAAt(10, 10), "inside")
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, img.NRGBAAt(2, 2), "outside")
}

func TestRasterLine(t *testing.T) {
	r := NewRaster(20, 20)
	r.SetStrokeColor(red)
	r.SetStrokeWeight(2)
	r.Line(orb.Point{2, 10}, orb.Point{18, 10})

	img := r.NRGBA()
	assert.Equal(t, uint8(255), img.NRGBAAt(10, 9).A)
	assert.Equal(t, uint8(255), img.NRGBAAt(10, 10).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(10, 14).A)
}

func TestRasterShapeTouchesOnlyItsBox(t *testing.T) {
	r := NewRaster(40, 40)
	r.SetFillColor(red)
	r.Polygon([]orb.Point{{20, 20}, {24, 20}, {24, 24}, {20, 24}})

	img := r.NRGBA()
	assert.Equal(t, red, img.NRGBAAt(22, 22))
	assert.Equal(t, red, img.NRGBAAt(23, 23))
	for _, p := range [][2]int{{19, 22}, {24, 22}, {22, 19}, {22, 24}, {0, 0}, {39, 39}} {
		assert.Equal(t, uint8(0), img.NRGBAAt(p[0], p[1]).A, "pixel %v", p)
	}
}

func TestRasterClipsShapesAtCanvasEdge(t *testing.T) {
	r := NewRaster(10, 10)
	r.SetFillColor(red)
	r.Polygon([]orb.Point{{-5, -5}, {5, -5}, {5, 5}, {-5, 5}})
	r.Polygon([]orb.Point{{20, 20}, {30, 20}, {30, 30}}) // fully outside

	img := r.NRGBA()
	assert.Equal(t, red, img.NRGBAAt(0, 0))
	assert.Equal(t, red, img.NRGBAAt(4, 4))
	assert.Equal(t, uint8(0), img.NRGBAAt(6, 6).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(9, 9).A)
}

func BenchmarkRasterCellPolygons(b *testing.B) {
	r := NewRaster(900, 900)
	r.SetFillColor(red)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x := float64(i%225) * 4
		y := float64(i/225%225) * 4
		r.Polygon([]orb.Point{{x, y}, {x + 4, y}, {x + 4, y + 4}, {x, y + 4}})
	}
}

func TestCanvasPolygonFill(t *testing.T) {
	c := NewCanvas(20, 20)
	c.Clear(color.White)
	c.SetFillColor(red)
	c.Polygon([]orb.Point{{5, 5}, {15, 5}, {15, 15}, {5, 15}})

	r, g, _, a := c.Image().At(10, 10).RGBA()
	assert.Greater(t, r, uint32(0xf000))
	assert.Less(t, g, uint32(0x1000))
	assert.Equal(t, uint32(0xffff), a)

	_, g, _, _ = c.Image().At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), g, "background untouched")
}

func TestRecorderAndGeoJSON(t *testing.T) {
	rec := NewRecorder()
	rec.Clear(color.White)
	rec.SetStrokeColor(color.Black)
	rec.SetStrokeWeight(1.5)
	rec.Line(orb.Point{0, 0}, orb.Point{1, 1})
	rec.SetFillColor(red)
	rec.Polygon([]orb.Point{{0, 0}, {1, 0}, {1, 1}})
	rec.Polygon([]orb.Point{{0, 0}, {1, 0}}) // degenerate, ignored

	require.Len(t, rec.Shapes, 2)
	require.Len(t, rec.Lines(), 1)
	require.Len(t, rec.Polygons(), 1)
	ring := rec.Polygons()[0][0]
	assert.True(t, ring.Closed())
	assert.Len(t, ring, 4)

	data, err := rec.ToGeoJSONBytes()
	require.NoError(t, err)

	var decoded struct {
		Features []struct {
			Geometry   struct{ Type string }
			Properties map[string]any
		}
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Features, 2)
	assert.Equal(t, "LineString", decoded.Features[0].Geometry.Type)
	assert.Equal(t, "line", decoded.Features[0].Properties["kind"])
	assert.Equal(t, "#000000", decoded.Features[0].Properties["color"])
	assert.Equal(t, 1.5, decoded.Features[0].Properties["weight"])
	assert.Equal(t, "Polygon", decoded.Features[1].Geometry.Type)
	assert.Equal(t, "#ff0000", decoded.Features[1].Properties["color"])

	rec.Clear(color.Black)
	assert.Empty(t, rec.Shapes)
}

func TestTeeForwards(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	tee := Tee{a, b}
	tee.SetFillColor(red)
	tee.Polygon([]orb.Point{{0, 0}, {2, 0}, {2, 2}})
	tee.Line(orb.Point{0, 0}, orb.Point{1, 0})
	assert.Equal(t, a.Shapes, b.Shapes)
	assert.Len(t, a.Shapes, 2)
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#ffc70b", Hex(color.NRGBA{R: 0xff, G: 0xc7, B: 0x0b, A: 0xff}))
	assert.Equal(t, "#00000000", Hex(color.NRGBA{}))
	var _ ImageSurface = NewRaster(1, 1)
	var _ ImageSurface = NewCanvas(1, 1)
	var _ Surface = Tee{}
}
