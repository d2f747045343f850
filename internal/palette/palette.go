// Package palette provides named colour palettes used to colour contours.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// ErrUnknownPalette is returned by Get for names that are not registered.
var ErrUnknownPalette = errors.New("unknown palette")

// Default colours when a palette does not define its own.
var (
	DefaultStroke     = color.NRGBA{A: 255}
	DefaultBackground = color.NRGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 255}
)

// Palette is a named list of colours with optional stroke and background.
type Palette struct {
	Name       string
	Colors     []color.NRGBA
	Stroke     *color.NRGBA
	Background *color.NRGBA
}

// ColorAt spreads total picks evenly over the palette: floor(index/total*len).
func (p Palette) ColorAt(index, total int) color.Color {
	if total <= 0 {
		return p.Colors[0]
	}
	i := int(math.Floor(float64(index) / float64(total) * float64(len(p.Colors))))
	i = min(max(i, 0), len(p.Colors)-1)
	return p.Colors[i]
}

// RandomColor picks a colour uniformly with rng.
func (p Palette) RandomColor(rng *rand.Rand) color.Color {
	return p.Colors[rng.Intn(len(p.Colors))]
}

// Index returns colour k modulo the palette length.
func (p Palette) Index(k int) color.Color {
	n := len(p.Colors)
	return p.Colors[((k%n)+n)%n]
}

// StrokeColor returns the palette stroke or DefaultStroke.
func (p Palette) StrokeColor() color.Color {
	if p.Stroke != nil {
		return *p.Stroke
	}
	return DefaultStroke
}

// BackgroundColor returns the palette background or DefaultBackground.
func (p Palette) BackgroundColor() color.Color {
	if p.Background != nil {
		return *p.Background
	}
	return DefaultBackground
}

// Shuffled returns a copy with the colour order permuted by rng.
func (p Palette) Shuffled(rng *rand.Rand) Palette {
	out := p
	out.Colors = append([]color.NRGBA(nil), p.Colors...)
	rng.Shuffle(len(out.Colors), func(i, j int) {
		out.Colors[i], out.Colors[j] = out.Colors[j], out.Colors[i]
	})
	return out
}

// Config is the config-file form of a palette.
type Config struct {
	Colors     []string `mapstructure:"colors"`
	Stroke     string   `mapstructure:"stroke"`
	Background string   `mapstructure:"background"`
}

// FromConfig parses a configured palette.
func FromConfig(name string, cfg Config) (Palette, error) {
	if len(cfg.Colors) == 0 {
		return Palette{}, fmt.Errorf("palette %q has no colors", name)
	}
	p := Palette{Name: name, Colors: make([]color.NRGBA, 0, len(cfg.Colors))}
	for _, s := range cfg.Colors {
		c, err := ParseHex(s)
		if err != nil {
			return Palette{}, fmt.Errorf("palette %q: %w", name, err)
		}
		p.Colors = append(p.Colors, c)
	}
	if cfg.Stroke != "" {
		c, err := ParseHex(cfg.Stroke)
		if err != nil {
			return Palette{}, fmt.Errorf("palette %q stroke: %w", name, err)
		}
		p.Stroke = &c
	}
	if cfg.Background != "" {
		c, err := ParseHex(cfg.Background)
		if err != nil {
			return Palette{}, fmt.Errorf("palette %q background: %w", name, err)
		}
		p.Background = &c
	}
	return p, nil
}

// ParseHex parses #rgb, #rrggbb or #rrggbbaa (the leading # is optional).
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func mustHex(s string) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	mu       sync.RWMutex
	registry = map[string]Palette{}
)

// Register adds or replaces a palette.
func Register(p Palette) {
	mu.Lock()
	defer mu.Unlock()
	registry[p.Name] = p
}

// Get returns the named palette.
func Get(name string) (Palette, error) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := registry[name]
	if !ok {
		return Palette{}, fmt.Errorf("%w: %s", ErrUnknownPalette, name)
	}
	return p, nil
}

// Names lists the registered palettes in alphabetical order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
