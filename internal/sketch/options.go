package sketch

import (
	"errors"
	"fmt"
	"math"

	"github.com/MeKo-Tech/topollock/internal/noise"
	"github.com/MeKo-Tech/topollock/internal/palette"
	"github.com/MeKo-Tech/topollock/internal/surface"
)

// Frame is the drawable grid area of a recipe and the margin around it.
type Frame struct {
	Width    int     `mapstructure:"width"`
	Height   int     `mapstructure:"height"`
	Padding  int     `mapstructure:"padding"`
	CellSize float64 `mapstructure:"cell_size"`
}

// Canvas returns the full output size including padding.
func (f Frame) Canvas() (int, int) {
	return f.Width + 2*f.Padding, f.Height + 2*f.Padding
}

// Cells returns the number of whole cells that fit the grid area.
func (f Frame) Cells() (nx, ny int) {
	return int(math.Floor(float64(f.Width) / f.CellSize)), int(math.Floor(float64(f.Height) / f.CellSize))
}

// Origin places the grid area inside the padding.
func (f Frame) Origin() surface.Transform {
	return surface.Identity.Translate(float64(f.Padding), float64(f.Padding))
}

func (f Frame) validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("grid size must be positive, got %dx%d", f.Width, f.Height)
	}
	if f.Padding < 0 {
		return fmt.Errorf("padding must not be negative, got %d", f.Padding)
	}
	if f.CellSize <= 0 {
		return fmt.Errorf("cell size must be positive, got %v", f.CellSize)
	}
	if nx, ny := f.Cells(); nx < 1 || ny < 1 {
		return fmt.Errorf("cell size %v leaves no cells in a %dx%d grid", f.CellSize, f.Width, f.Height)
	}
	return nil
}

func validateNoise(p noise.Params) error {
	if p.Scale <= 0 {
		return fmt.Errorf("noise scale must be positive, got %v", p.Scale)
	}
	if math.IsNaN(p.Persistence) || math.IsInf(p.Persistence, 0) {
		return fmt.Errorf("noise persistence must be finite, got %v", p.Persistence)
	}
	if p.Warp < 0 || p.WarpScale < 0 {
		return errors.New("noise warp and warp_scale must not be negative")
	}
	return nil
}

// BandsOptions configure the filled topographic bands recipe.
type BandsOptions struct {
	Frame `mapstructure:",squash"`
	Noise noise.Params `mapstructure:"noise"`
	Init  float64      `mapstructure:"init"`
	Steps int          `mapstructure:"steps"`
	Delta float64      `mapstructure:"delta"`
}

// LinesOptions configure the contour line recipe: one filled "ocean" level
// under evenly spaced stroked iso-lines.
type LinesOptions struct {
	Frame        `mapstructure:",squash"`
	Noise        noise.Params `mapstructure:"noise"`
	Density      float64      `mapstructure:"density"`
	Range        float64      `mapstructure:"range"`
	OceanColor   string       `mapstructure:"ocean_color"`
	LineColor    string       `mapstructure:"line_color"`
	Background   string       `mapstructure:"background"`
	StrokeWeight float64      `mapstructure:"stroke_weight"`
}

// ImageOptions configure the image-derived recipe.
type ImageOptions struct {
	Frame   `mapstructure:",squash"`
	Path    string  `mapstructure:"path"`
	Blur    float32 `mapstructure:"blur"`
	Density float64 `mapstructure:"density"`
}

// LayersOptions configure the stacked layers recipe.
type LayersOptions struct {
	Frame    `mapstructure:",squash"`
	Noise    noise.Params   `mapstructure:"noise"`
	Count    int            `mapstructure:"count"`
	Bottom   float64        `mapstructure:"bottom"`
	Top      float64        `mapstructure:"top"`
	Gradient noise.Gradient `mapstructure:"gradient"`
}

// StampsOptions configure the scattered motif recipe. Frame is the area
// points are scattered over; every motif is a Cells×Cells lattice.
type StampsOptions struct {
	Frame     `mapstructure:",squash"`
	Noise     noise.Params `mapstructure:"noise"`
	Cells     int          `mapstructure:"cells"`
	Baseline  float64      `mapstructure:"baseline"`
	Magnitude float64      `mapstructure:"magnitude"`
	MinDist   float64      `mapstructure:"min_dist"`
	Tries     int          `mapstructure:"tries"`
	Shadow    bool         `mapstructure:"shadow"`
	ShadowDX  float64      `mapstructure:"shadow_dx"`
	ShadowDY  float64      `mapstructure:"shadow_dy"`
}

// Options select a recipe and hold the knobs of every recipe.
type Options struct {
	Recipe     string        `mapstructure:"recipe"`
	Palette    string        `mapstructure:"palette"`
	Backend    noise.Backend `mapstructure:"backend"`
	Background string        `mapstructure:"background"`
	// Grid overlays a Grid×Grid reference lattice when positive.
	Grid int `mapstructure:"grid"`

	Bands  BandsOptions  `mapstructure:"bands"`
	Lines  LinesOptions  `mapstructure:"lines"`
	Image  ImageOptions  `mapstructure:"image"`
	Layers LayersOptions `mapstructure:"layers"`
	Stamps StampsOptions `mapstructure:"stamps"`
}

// DefaultOptions returns the classic settings of every recipe.
func DefaultOptions() Options {
	return Options{
		Recipe:  "lines",
		Backend: noise.BackendSimplex,
		Bands: BandsOptions{
			Frame: Frame{Width: 800, Height: 800, Padding: 50, CellSize: 4},
			Noise: noise.Params{Scale: 1 / 0.012, Persistence: 0.25, Octaves: noise.DefaultOctaves},
			Init:  -1,
			Steps: 20,
			Delta: 0.1,
		},
		Lines: LinesOptions{
			Frame:        Frame{Width: 1300, Height: 900, Padding: 40, CellSize: 2},
			Noise:        noise.Params{Scale: 350, Persistence: 0.55, Octaves: noise.DefaultOctaves, Sigmoid: 9},
			Density:      15,
			Range:        0.5,
			OceanColor:   "#ffc70b",
			LineColor:    "#000000",
			Background:   "#ffffff",
			StrokeWeight: 1,
		},
		Image: ImageOptions{
			Frame:   Frame{Width: 750, Height: 750, Padding: 80, CellSize: 2},
			Density: 2,
		},
		Layers: LayersOptions{
			Frame:    Frame{Width: 1100, Height: 1100, Padding: 0, CellSize: 5},
			Noise:    noise.Params{Scale: 50, Persistence: 0.5, Octaves: noise.DefaultOctaves},
			Count:    20,
			Bottom:   -0.1,
			Top:      0.5,
			Gradient: noise.GradientRadial,
		},
		Stamps: StampsOptions{
			Frame:     Frame{Width: 680, Height: 680, Padding: 160, CellSize: 3},
			Noise:     noise.Params{Scale: 40, Persistence: 0.3, Octaves: noise.DefaultOctaves},
			Cells:     50,
			Baseline:  0.5,
			Magnitude: 2,
			MinDist:   110,
			Tries:     10,
			Shadow:    true,
			ShadowDX:  5,
			ShadowDY:  -10,
		},
	}
}

// Validate checks the shared options and those of the selected recipe.
func (o Options) Validate() error {
	if _, err := Lookup(o.Recipe); err != nil {
		return err
	}
	switch o.Backend {
	case "", noise.BackendSimplex, noise.BackendPerlin:
	default:
		return fmt.Errorf("unknown noise backend %q", o.Backend)
	}
	if o.Background != "" {
		if _, err := palette.ParseHex(o.Background); err != nil {
			return fmt.Errorf("background: %w", err)
		}
	}
	if o.Grid < 0 {
		return fmt.Errorf("grid must not be negative, got %d", o.Grid)
	}

	var err error
	switch o.Recipe {
	case "bands":
		err = o.Bands.validate()
	case "lines":
		err = o.Lines.validate()
	case "image":
		err = o.Image.validate()
	case "layers":
		err = o.Layers.validate()
	case "stamps":
		err = o.Stamps.validate()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", o.Recipe, err)
	}
	return nil
}

func (b BandsOptions) validate() error {
	if err := b.Frame.validate(); err != nil {
		return err
	}
	if err := validateNoise(b.Noise); err != nil {
		return err
	}
	if b.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", b.Steps)
	}
	return nil
}

func (l LinesOptions) validate() error {
	if err := l.Frame.validate(); err != nil {
		return err
	}
	if err := validateNoise(l.Noise); err != nil {
		return err
	}
	if l.Density <= 0 {
		return fmt.Errorf("density must be positive, got %v", l.Density)
	}
	if l.Range < 0 || l.Range > 1 {
		return fmt.Errorf("range must be within [0, 1], got %v", l.Range)
	}
	for name, c := range map[string]string{"ocean_color": l.OceanColor, "line_color": l.LineColor, "background": l.Background} {
		if c == "" {
			continue
		}
		if _, err := palette.ParseHex(c); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (i ImageOptions) validate() error {
	if err := i.Frame.validate(); err != nil {
		return err
	}
	if i.Path == "" {
		return errors.New("image path is required")
	}
	if i.Density <= 0 {
		return fmt.Errorf("density must be positive, got %v", i.Density)
	}
	if i.Blur < 0 {
		return fmt.Errorf("blur must not be negative, got %v", i.Blur)
	}
	return nil
}

func (l LayersOptions) validate() error {
	if err := l.Frame.validate(); err != nil {
		return err
	}
	if err := validateNoise(l.Noise); err != nil {
		return err
	}
	if l.Count < 1 {
		return fmt.Errorf("count must be positive, got %d", l.Count)
	}
	nx, ny := l.Cells()
	if _, err := noise.OffsetFor(l.Gradient, nx, ny); err != nil {
		return err
	}
	return nil
}

func (s StampsOptions) validate() error {
	if err := s.Frame.validate(); err != nil {
		return err
	}
	if err := validateNoise(s.Noise); err != nil {
		return err
	}
	if s.Cells < 1 {
		return fmt.Errorf("cells must be positive, got %d", s.Cells)
	}
	if s.MinDist <= 0 {
		return fmt.Errorf("min_dist must be positive, got %v", s.MinDist)
	}
	if s.Tries < 1 {
		return fmt.Errorf("tries must be positive, got %d", s.Tries)
	}
	return nil
}
