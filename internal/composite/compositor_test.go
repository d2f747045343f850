package composite

import (
	"image"
	"image/color"
	"math"
	"sync"
	"testing"

	"github.com/MeKo-Tech/topollock/internal/surface"
	"github.com/paulmach/orb"
)

func fillRect(img *image.NRGBA, rect image.Rectangle, c color.NRGBA) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func blendNRGBA(top, bottom color.NRGBA) color.NRGBA {
	sa := float64(top.A) / 255.0
	ba := float64(bottom.A) / 255.0

	outA := sa + ba*(1.0-sa)
	if outA == 0 {
		return color.NRGBA{}
	}

	blend := func(s, b uint8) uint8 {
		sp := float64(s) * sa
		bp := float64(b) * ba
		outPremult := sp + bp*(1.0-sa)
		return uint8(math.Round(outPremult / outA))
	}

	return color.NRGBA{
		R: blend(top.R, bottom.R),
		G: blend(top.G, bottom.G),
		B: blend(top.B, bottom.B),
		A: uint8(math.Round(outA * 255.0)),
	}
}

func expectColor(t *testing.T, got color.NRGBA, want color.NRGBA, context string) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: expected %+v, got %+v", context, want, got)
	}
}

func TestOverUsesOrderAndTransparency(t *testing.T) {
	size := 4
	bounds := image.Rect(0, 0, size, size)

	bottom := image.NewNRGBA(bounds)
	fillRect(bottom, bounds, color.NRGBA{B: 255, A: 255})

	middle := image.NewNRGBA(bounds)
	fillRect(middle, image.Rect(0, 0, size/2, size/2), color.NRGBA{G: 255, A: 255})

	top := image.NewNRGBA(bounds)
	for y := 0; y < size; y++ {
		top.SetNRGBA(1, y, color.NRGBA{R: 255, A: 128})
	}

	out := image.NewNRGBA(bounds)
	if err := Over(out, []image.Image{bottom, middle, nil, top}); err != nil {
		t.Fatalf("Over returned error: %v", err)
	}

	expectColor(t, out.NRGBAAt(0, 0), color.NRGBA{G: 255, A: 255}, "later layer should sit above earlier")
	expectColor(t, out.NRGBAAt(3, 3), color.NRGBA{B: 255, A: 255}, "bottom should show where upper layers are transparent")

	expected := blendNRGBA(color.NRGBA{R: 255, A: 128}, color.NRGBA{G: 255, A: 255})
	expectColor(t, out.NRGBAAt(1, 1), expected, "translucent layer should alpha-blend")
	expectColor(t, out.NRGBAAt(0, 1), color.NRGBA{G: 255, A: 255}, "neighbor pixel remains aligned")
}

func TestOverValidatesBounds(t *testing.T) {
	bad := image.NewNRGBA(image.Rect(1, 1, 3, 3))
	if err := Over(image.NewNRGBA(image.Rect(0, 0, 4, 4)), []image.Image{bad}); err == nil {
		t.Fatal("expected error for mismatched bounds")
	}
}

func TestOverOnRGBA(t *testing.T) {
	bounds := image.Rect(0, 0, 2, 2)
	dst := image.NewRGBA(bounds)
	src := image.NewNRGBA(bounds)
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	if err := Over(dst, []image.Image{src}); err != nil {
		t.Fatalf("Over returned error: %v", err)
	}
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("unexpected pixel %+v", got)
	}
	if got := dst.RGBAAt(1, 1); got.A != 0 {
		t.Fatalf("transparent source should leave dst untouched, got %+v", got)
	}
}

func square(x, y float64) []orb.Point {
	return []orb.Point{{x, y}, {x + 4, y}, {x + 4, y + 4}, {x, y + 4}}
}

func TestStackMergesLayersInOrder(t *testing.T) {
	newRaster := func(w, h int) surface.ImageSurface { return surface.NewRaster(w, h) }
	rec := surface.NewRecorder()
	stack := NewStack(surface.NewRaster(8, 8), rec, newRaster)
	stack.Clear(color.White)

	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}

	layers := []surface.Surface{stack.NewLayer(), stack.NewLayer()}
	var wg sync.WaitGroup
	for i, c := range []color.NRGBA{red, blue} {
		wg.Add(1)
		go func(l surface.Surface, c color.NRGBA, off float64) {
			defer wg.Done()
			l.SetFillColor(c)
			l.Polygon(square(off, off))
		}(layers[i], c, float64(i*2))
	}
	wg.Wait()

	if err := stack.MergeLayers(layers); err != nil {
		t.Fatalf("MergeLayers returned error: %v", err)
	}

	img := stack.Image().(*image.NRGBA)
	expectColor(t, img.NRGBAAt(1, 1), red, "first layer only")
	expectColor(t, img.NRGBAAt(3, 3), blue, "second layer on top of first")
	expectColor(t, img.NRGBAAt(7, 0), color.NRGBA{R: 255, G: 255, B: 255, A: 255}, "background")

	if len(rec.Shapes) != 2 {
		t.Fatalf("expected 2 recorded shapes, got %d", len(rec.Shapes))
	}
	if rec.Shapes[0].Color != color.Color(red) || rec.Shapes[1].Color != color.Color(blue) {
		t.Fatalf("recorded shapes out of layer order")
	}
}

func TestStackRejectsForeignLayers(t *testing.T) {
	newRaster := func(w, h int) surface.ImageSurface { return surface.NewRaster(w, h) }
	stack := NewStack(surface.NewRaster(4, 4), nil, newRaster)
	if err := stack.MergeLayers([]surface.Surface{surface.NewRaster(4, 4)}); err == nil {
		t.Fatal("expected error for a layer not created by the stack")
	}
	if stack.Recorder() != nil {
		t.Fatal("recorder should be nil when not requested")
	}
}
