package cmd

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/topollock/internal/palette"
	"github.com/MeKo-Tech/topollock/internal/surface"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var palettesCmd = &cobra.Command{
	Use:   "palettes",
	Short: "List palettes and optionally write swatch images",
	Long: `List the built-in palettes and those declared under "palettes" in the
config file. With --swatches, write one PNG strip per palette.`,
	RunE: runPalettes,
}

func init() {
	rootCmd.AddCommand(palettesCmd)

	palettesCmd.Flags().String("swatches", "", "Directory to write palette swatch PNGs into")
	palettesCmd.Flags().Int("size", 64, "Swatch cell size in pixels")
	palettesCmd.Flags().Bool("force", false, "Overwrite swatches that already exist")

	bindFlags(palettesCmd, []flagBinding{
		{"palettes_cmd.swatches", "swatches"},
		{"palettes_cmd.size", "size"},
		{"palettes_cmd.force", "force"},
	})
}

func runPalettes(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}
	if err := registerConfigPalettes(); err != nil {
		return err
	}

	dir := viper.GetString("palettes_cmd.swatches")
	size := viper.GetInt("palettes_cmd.size")
	force := viper.GetBool("palettes_cmd.force")

	if size <= 0 {
		return fmt.Errorf("size must be positive")
	}

	out := cmd.OutOrStdout()
	for _, name := range palette.Names() {
		p, err := palette.Get(name)
		if err != nil {
			return err
		}
		hexes := make([]string, len(p.Colors))
		for i, c := range p.Colors {
			hexes[i] = surface.Hex(c)
		}
		fmt.Fprintf(out, "%-12s %s\n", name, strings.Join(hexes, " "))
	}

	if dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create swatch dir: %w", err)
	}
	var written, skipped int
	for _, name := range palette.Names() {
		path := filepath.Join(dir, name+".png")
		if !force {
			if _, err := os.Stat(path); err == nil {
				skipped++
				continue
			}
		}
		p, err := palette.Get(name)
		if err != nil {
			return err
		}
		if err := writeSwatch(path, p, size); err != nil {
			return err
		}
		written++
	}

	logger.Info("Swatch generation complete", "dir", dir, "written", written, "skipped", skipped)
	return nil
}

// writeSwatch draws one cell per colour on the palette background, framed
// by the stroke colour.
func writeSwatch(path string, p palette.Palette, cell int) error {
	n := max(len(p.Colors), 1)
	margin := float64(cell) / 4
	w := int(float64(n*cell) + 2*margin)
	h := int(float64(cell) + 2*margin)

	r := surface.NewRaster(w, h)
	r.Clear(p.BackgroundColor())
	r.SetStrokeColor(p.StrokeColor())
	r.SetStrokeWeight(2)

	for i, c := range p.Colors {
		x0 := margin + float64(i*cell)
		x1 := x0 + float64(cell)
		y0, y1 := margin, margin+float64(cell)
		r.SetFillColor(c)
		r.Polygon([]orb.Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}})
		r.Line(orb.Point{x0, y1}, orb.Point{x1, y1})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create swatch: %w", err)
	}
	defer f.Close() // nolint:errcheck

	if err := png.Encode(f, r.Image()); err != nil {
		return fmt.Errorf("failed to encode swatch %s: %w", path, err)
	}
	return nil
}
