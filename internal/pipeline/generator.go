// Package pipeline turns a recipe and a seed into an encoded image on disk.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/topollock/internal/composite"
	"github.com/MeKo-Tech/topollock/internal/march"
	"github.com/MeKo-Tech/topollock/internal/sketch"
	"github.com/MeKo-Tech/topollock/internal/surface"
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// Drawing backends.
const (
	BackendRaster = "raster"
	BackendGG     = "gg"
)

// DefaultJPEGQuality is used when GeneratorOptions.JPEGQuality is unset.
const DefaultJPEGQuality = 90

// SketchWriter receives every encoded sketch, e.g. an archive database.
type SketchWriter interface {
	WriteSketch(recipe string, seed int64, format string, data []byte) error
}

// GeneratorOptions tune how sketches are drawn and encoded.
type GeneratorOptions struct {
	Format         string // png (default) or jpeg
	PNGCompression string // default, speed, best, none
	Backend        string // raster (default) or gg
	JPEGQuality    int
	// GeoJSON also writes the emitted geometry next to the image.
	GeoJSON bool
	// SketchWriter, when set, receives the encoded image of every render.
	SketchWriter SketchWriter
}

// Generator renders sketches and writes them to disk.
type Generator struct {
	opts        sketch.Options
	writer      SketchWriter
	logger      *slog.Logger
	outputDir   string
	format      string
	backend     string
	quality     int
	compression png.CompressionLevel
	geojson     bool
}

// Result is an in-memory render.
type Result struct {
	Image  image.Image
	Shapes *surface.Recorder // nil unless GeoJSON output is on
	Stats  march.Stats
	Recipe string
	Seed   int64
}

// NewGenerator validates opts and prepares a generator writing to outputDir.
func NewGenerator(opts sketch.Options, outputDir string, logger *slog.Logger, gopts GeneratorOptions) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sketch options: %w", err)
	}

	format, err := parseFormat(gopts.Format)
	if err != nil {
		return nil, err
	}
	compression, err := parsePNGCompression(gopts.PNGCompression)
	if err != nil {
		return nil, err
	}

	backend := strings.ToLower(strings.TrimSpace(gopts.Backend))
	switch backend {
	case "":
		backend = BackendRaster
	case BackendRaster, BackendGG:
	default:
		return nil, fmt.Errorf("invalid backend %q: must be 'raster' or 'gg'", gopts.Backend)
	}

	quality := gopts.JPEGQuality
	if quality == 0 {
		quality = DefaultJPEGQuality
	}
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("jpeg quality must be within 1..100, got %d", quality)
	}

	return &Generator{
		opts:        opts,
		writer:      gopts.SketchWriter,
		logger:      logger,
		outputDir:   outputDir,
		format:      format,
		backend:     backend,
		quality:     quality,
		compression: compression,
		geojson:     gopts.GeoJSON,
	}, nil
}

// Options returns the sketch options the generator renders with.
func (g *Generator) Options() sketch.Options { return g.opts }

// Format returns the output format, png or jpeg.
func (g *Generator) Format() string { return g.format }

// Ext returns the file extension of the output format.
func (g *Generator) Ext() string {
	if g.format == FormatJPEG {
		return "jpg"
	}
	return "png"
}

// ContentType returns the MIME type of the output format.
func (g *Generator) ContentType() string {
	if g.format == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Path returns where Generate writes recipe/seed.
func (g *Generator) Path(recipe string, seed int64) string {
	return filepath.Join(g.outputDir, FileName(g.recipeName(recipe), seed, g.Ext()))
}

// FileName is the on-disk name of a rendered sketch.
func FileName(recipe string, seed int64, ext string) string {
	return fmt.Sprintf("sketch_%s_%d.%s", recipe, seed, ext)
}

func (g *Generator) recipeName(recipe string) string {
	if recipe == "" {
		return g.opts.Recipe
	}
	return recipe
}

// Render draws recipe (the configured one when empty) for seed in memory.
func (g *Generator) Render(ctx context.Context, recipe string, seed int64) (*Result, error) {
	o := g.opts
	if recipe != "" && recipe != o.Recipe {
		o.Recipe = recipe
		if err := o.Validate(); err != nil {
			return nil, err
		}
	}

	w, h, err := sketch.Size(o)
	if err != nil {
		return nil, err
	}

	var rec *surface.Recorder
	if g.geojson {
		rec = surface.NewRecorder()
	}
	stack := composite.NewStack(g.newImage(w, h), rec, g.newImage)

	start := time.Now()
	stats, err := sketch.Render(ctx, seed, o, stack)
	if err != nil {
		return nil, err
	}
	g.log().Debug("Sketch rendered",
		"recipe", o.Recipe,
		"seed", seed,
		"cells", stats.Cells,
		"evaluated", stats.Evaluated,
		"emitted", stats.Emitted,
		"ms", time.Since(start).Milliseconds(),
	)

	return &Result{
		Image:  stack.Image(),
		Shapes: rec,
		Stats:  stats,
		Recipe: o.Recipe,
		Seed:   seed,
	}, nil
}

func (g *Generator) newImage(w, h int) surface.ImageSurface {
	if g.backend == BackendGG {
		return surface.NewCanvas(w, h)
	}
	return surface.NewRaster(w, h)
}

// Encode writes img in the configured format.
func (g *Generator) Encode(w io.Writer, img image.Image) error {
	if g.format == FormatJPEG {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: g.quality})
	}
	enc := png.Encoder{CompressionLevel: g.compression}
	return enc.Encode(w, img)
}

// Generate renders recipe/seed and writes the image, plus GeoJSON when
// enabled. An existing file is kept unless force is set. Returns the image path.
func (g *Generator) Generate(ctx context.Context, recipe string, seed int64, force bool) (string, error) {
	recipe = g.recipeName(recipe)
	finalPath := g.Path(recipe, seed)
	if !force {
		if _, err := os.Stat(finalPath); err == nil {
			g.log().Info("Sketch already exists; skipping", "recipe", recipe, "seed", seed, "path", finalPath)
			return finalPath, nil
		}
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	res, err := g.Render(ctx, recipe, seed)
	if err != nil {
		return "", fmt.Errorf("failed to render sketch: %w", err)
	}

	var buf bytes.Buffer
	if err := g.Encode(&buf, res.Image); err != nil {
		return "", fmt.Errorf("failed to encode sketch: %w", err)
	}

	g.log().Info("Writing sketch", "recipe", recipe, "seed", seed, "path", finalPath)
	if err := os.WriteFile(finalPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write sketch file: %w", err)
	}

	if res.Shapes != nil {
		data, err := res.Shapes.ToGeoJSONBytes()
		if err != nil {
			return "", err
		}
		geoPath := strings.TrimSuffix(finalPath, filepath.Ext(finalPath)) + ".geojson"
		if err := os.WriteFile(geoPath, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write geojson: %w", err)
		}
		g.log().Debug("Wrote geometry", "path", geoPath, "shapes", len(res.Shapes.Shapes))
	}

	if g.writer != nil {
		if err := g.writer.WriteSketch(recipe, seed, g.format, buf.Bytes()); err != nil {
			return "", fmt.Errorf("failed to archive sketch: %w", err)
		}
	}

	return finalPath, nil
}

func parseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be 'png' or 'jpeg'", s)
	}
}

func parsePNGCompression(s string) (png.CompressionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return png.DefaultCompression, nil
	case "speed", "fast":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	case "none", "no":
		return png.NoCompression, nil
	default:
		return png.DefaultCompression, fmt.Errorf("invalid png compression %q: must be default, speed, best, or none", s)
	}
}

func (g *Generator) log() *slog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return slog.Default()
}
