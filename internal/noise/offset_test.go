package noise

import (
	"math"
	"testing"
)

func TestOffsets(t *testing.T) {
	const nx, ny = 200, 100

	lin, err := OffsetFor(GradientLinear, nx, ny)
	if err != nil {
		t.Fatal(err)
	}
	if got := lin(37, 0); got != -0.5 {
		t.Errorf("linear top row = %v, want -0.5", got)
	}
	if got := lin(0, 100); got != 0 {
		t.Errorf("linear at y=nx/2 = %v, want 0", got)
	}

	rad, _ := OffsetFor(GradientRadial, nx, ny)
	if got := rad(100, 50); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("radial centre = %v, want 0.2", got)
	}
	if got := rad(200, 50); math.Abs(got-(0.2-1)) > 1e-12 {
		t.Errorf("radial at r = %v, want -0.8", got)
	}

	ring, _ := OffsetFor(GradientRing, nx, ny)
	if got := ring(150, 50); math.Abs(got) > 1e-12 {
		t.Errorf("ring on circle = %v, want 0", got)
	}
	if got := ring(100, 50); math.Abs(got+1) > 1e-12 {
		t.Errorf("ring centre = %v, want -1", got)
	}

	fill, err := OffsetFor(GradientFill, nx, ny)
	if err != nil || fill != nil {
		t.Errorf("fill should be a nil offset, got %v, %v", fill, err)
	}

	if _, err := OffsetFor("spiral", nx, ny); err == nil {
		t.Errorf("expected error for unknown gradient")
	}
}

func TestCenterOffset(t *testing.T) {
	c := Center(50, 50, 0.5, 2)
	if got := c(25, 25); math.Abs(got-1) > 1e-12 {
		t.Fatalf("centre = %v, want 1", got)
	}
	// dist = nx/4 → 1 - 0.5 - 0.5 = 0
	if got := c(37.5, 25); math.Abs(got) > 1e-12 {
		t.Fatalf("quarter radius = %v, want 0", got)
	}
}
