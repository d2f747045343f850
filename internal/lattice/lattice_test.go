package lattice

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestBuildSamplesEveryPointOnce(t *testing.T) {
	calls := map[[2]int]int{}
	l := Build(3, 2, func(x, y int) float64 {
		calls[[2]int{x, y}]++
		return float64(10*y + x)
	})

	if len(calls) != 4*3 {
		t.Fatalf("expected 12 distinct points, got %d", len(calls))
	}
	for p, n := range calls {
		if n != 1 {
			t.Fatalf("point %v sampled %d times", p, n)
		}
	}
	if got := l.At(3, 2); got != 23 {
		t.Fatalf("At(3,2) = %v, want 23", got)
	}
}

func TestCellCorners(t *testing.T) {
	l := FromRows([][]float64{
		{0.8, -0.2, 0.1},
		{-0.5, 0.9, -0.3},
		{0.2, 0.4, -0.6},
	})
	if l.NX != 2 || l.NY != 2 {
		t.Fatalf("unexpected dims %dx%d", l.NX, l.NY)
	}

	got := l.Cell(1, 0)
	want := Corners{NW: -0.2, NE: 0.1, SE: -0.3, SW: 0.9}
	if got != want {
		t.Fatalf("Cell(1,0) = %+v, want %+v", got, want)
	}

	got = l.Cell(0, 1)
	want = Corners{NW: -0.5, NE: 0.9, SE: 0.4, SW: 0.2}
	if got != want {
		t.Fatalf("Cell(0,1) = %+v, want %+v", got, want)
	}
	if got.Min() != -0.5 || got.Max() != 0.9 {
		t.Fatalf("min/max = %v/%v", got.Min(), got.Max())
	}
}

func TestLuminance(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    float64
	}{
		{0, 0, 0, -1},
		{255, 255, 255, 1},
		{255, 0, 0, 2.0/3 - 1},
	}
	for _, tt := range tests {
		if got := Luminance(tt.r, tt.g, tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Luminance(%d,%d,%d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestImageFieldMapsProportionally(t *testing.T) {
	// Left half black, right half white.
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := uint8(0)
			if x >= 5 {
				v = 255
			}
			src.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}

	s := NewImageSampler(src, 0)
	if w, h := s.Size(); w != 10 || h != 10 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}

	// nx = 4: lattice x in 0..4 → floor(x/5*10) = 0,2,4,6,8
	l := Build(4, 4, s.Field(4, 4))
	for y := 0; y <= 4; y++ {
		for x := 0; x <= 4; x++ {
			want := -1.0
			if x >= 3 {
				want = 1
			}
			if got := l.At(x, y); got != want {
				t.Fatalf("At(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestImageSamplerBlur(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 9, 9))
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}
	src.SetNRGBA(4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	sharp := NewImageSampler(src, 0)
	soft := NewImageSampler(src, 1.5)

	r0, _, _ := sharp.PixelAt(4, 4)
	r1, _, _ := soft.PixelAt(4, 4)
	if r0 != 255 {
		t.Fatalf("unblurred centre = %d, want 255", r0)
	}
	if r1 >= r0 {
		t.Fatalf("blur should spread the bright pixel, centre = %d", r1)
	}
	if n, _, _ := soft.PixelAt(5, 4); n == 0 {
		t.Fatalf("blur should brighten the neighbour")
	}
}
