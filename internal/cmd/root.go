package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/topollock/internal/palette"
	"github.com/MeKo-Tech/topollock/internal/sketch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "topollock",
	Short: "Procedural contour art from layered noise",
	Long: `Topollock draws generative art by sampling layered coherent noise on a grid
and tracing its iso-contours with marching squares.

Several recipes are built in: filled topographic bands, contour lines over an
"ocean" level, image-derived contours, stacked noise layers and Poisson-scattered
stamps. Every render is deterministic for a given recipe, options and seed.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("output-dir", "./sketches", "Output directory for rendered sketches")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")

	if err := viper.BindPFlag("output-dir", rootCmd.PersistentFlags().Lookup("output-dir")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("TOPOLLOCK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// initLogging builds the process logger: text on stderr, debug with --verbose.
func initLogging() {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// registerConfigPalettes adds the palettes declared under "palettes" in the
// config file. A config palette may shadow a built-in one.
func registerConfigPalettes() error {
	var cfgs map[string]palette.Config
	if err := viper.UnmarshalKey("palettes", &cfgs); err != nil {
		return fmt.Errorf("failed to read palettes: %w", err)
	}
	for name, c := range cfgs {
		p, err := palette.FromConfig(name, c)
		if err != nil {
			return fmt.Errorf("palette %q: %w", name, err)
		}
		palette.Register(p)
		logger.Debug("Registered palette from config", "name", name, "colors", len(p.Colors))
	}
	return nil
}

// loadSketchOptions decodes the "sketch" config section over the defaults.
func loadSketchOptions() (sketch.Options, error) {
	opts := sketch.DefaultOptions()
	if err := viper.UnmarshalKey("sketch", &opts); err != nil {
		return opts, fmt.Errorf("failed to read sketch options: %w", err)
	}
	return opts, nil
}
