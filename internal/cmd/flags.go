package cmd

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/topollock/internal/noise"
	"github.com/MeKo-Tech/topollock/internal/pipeline"
	"github.com/MeKo-Tech/topollock/internal/sketch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type flagBinding struct {
	key  string
	flag string
}

func bindFlags(cmd *cobra.Command, bindings []flagBinding) {
	for _, bf := range bindings {
		if err := viper.BindPFlag(bf.key, cmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

// addSketchFlags declares the flags overriding the "sketch" config section.
func addSketchFlags(cmd *cobra.Command, prefix string) []flagBinding {
	cmd.Flags().StringP("recipe", "r", "", "Recipe: "+strings.Join(sketch.Names(), ", ")+" (default from config, else lines)")
	cmd.Flags().String("palette", "", "Palette name (default: the recipe's own palette)")
	cmd.Flags().String("noise-backend", "", "Noise primitive: simplex or perlin")
	cmd.Flags().String("background", "", "Background colour override (#rrggbb)")
	cmd.Flags().Int("grid", 0, "Overlay an NxN reference grid (0 = off)")
	cmd.Flags().String("image", "", "Source picture for the image recipe")

	return []flagBinding{
		{prefix + ".recipe", "recipe"},
		{prefix + ".palette", "palette"},
		{prefix + ".noise_backend", "noise-backend"},
		{prefix + ".background", "background"},
		{prefix + ".grid", "grid"},
		{prefix + ".image", "image"},
	}
}

// addOutputFlags declares the encoding flags shared by every rendering command.
func addOutputFlags(cmd *cobra.Command, prefix string) []flagBinding {
	cmd.Flags().String("format", "png", "Image format: png or jpeg")
	cmd.Flags().String("png-compression", "default", "PNG compression (default, speed, best, none)")
	cmd.Flags().Int("jpeg-quality", pipeline.DefaultJPEGQuality, "JPEG quality (1-100)")
	cmd.Flags().String("backend", "raster", "Drawing backend: raster (x/image/vector) or gg")
	cmd.Flags().Bool("geojson", false, "Also write the traced geometry as GeoJSON")

	return []flagBinding{
		{prefix + ".format", "format"},
		{prefix + ".png_compression", "png-compression"},
		{prefix + ".jpeg_quality", "jpeg-quality"},
		{prefix + ".backend", "backend"},
		{prefix + ".geojson", "geojson"},
	}
}

// sketchOptions loads the "sketch" config section and applies the flag
// overrides bound under prefix. Flags only win when given explicitly.
func sketchOptions(prefix string) (sketch.Options, error) {
	opts, err := loadSketchOptions()
	if err != nil {
		return opts, err
	}

	if viper.IsSet(prefix + ".recipe") {
		opts.Recipe = viper.GetString(prefix + ".recipe")
	}
	if viper.IsSet(prefix + ".palette") {
		opts.Palette = viper.GetString(prefix + ".palette")
	}
	if viper.IsSet(prefix + ".noise_backend") {
		opts.Backend = noise.Backend(strings.ToLower(viper.GetString(prefix + ".noise_backend")))
	}
	if viper.IsSet(prefix + ".background") {
		opts.Background = viper.GetString(prefix + ".background")
	}
	if viper.IsSet(prefix + ".grid") {
		opts.Grid = viper.GetInt(prefix + ".grid")
	}
	if viper.IsSet(prefix + ".image") {
		opts.Image.Path = viper.GetString(prefix + ".image")
	}

	return opts, nil
}

func generatorOptions(prefix string) pipeline.GeneratorOptions {
	return pipeline.GeneratorOptions{
		Format:         viper.GetString(prefix + ".format"),
		PNGCompression: viper.GetString(prefix + ".png_compression"),
		JPEGQuality:    viper.GetInt(prefix + ".jpeg_quality"),
		Backend:        viper.GetString(prefix + ".backend"),
		GeoJSON:        viper.GetBool(prefix + ".geojson"),
	}
}
