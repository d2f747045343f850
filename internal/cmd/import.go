package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/MeKo-Tech/topollock/internal/archive"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import rendered sketch files into an archive",
	Long:  `Store existing sketch_<recipe>_<seed>.<ext> files from a folder in a SQLite archive.`,
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("input-dir", "./sketches", "Input directory containing sketches")
	importCmd.Flags().StringP("output", "o", "", "Output archive file path (required)")
	importCmd.Flags().String("name", "Topollock", "Archive name")
	importCmd.Flags().String("description", "Procedural contour sketches", "Archive description")

	bindFlags(importCmd, []flagBinding{
		{"import.input_dir", "input-dir"},
		{"import.output", "output"},
		{"import.name", "name"},
		{"import.description", "description"},
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	inputDir := viper.GetString("import.input_dir")
	outputFile := viper.GetString("import.output")
	name := viper.GetString("import.name")
	description := viper.GetString("import.description")

	if logger == nil {
		initLogging()
	}

	if outputFile == "" {
		return fmt.Errorf("--output is required")
	}

	if _, err := os.Stat(inputDir); os.IsNotExist(err) {
		return fmt.Errorf("input directory does not exist: %s", inputDir)
	}

	logger.Info("Importing sketches into archive",
		"input_dir", inputDir,
		"output", outputFile,
		"name", name,
	)

	files, err := scanSketchDirectory(inputDir)
	if err != nil {
		return fmt.Errorf("failed to scan sketch directory: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no sketches found in %s", inputDir)
	}

	recipes := recipesOf(files)
	logger.Info("Found sketches", "count", len(files), "recipes", recipes)

	writer, err := archive.New(outputFile, archive.Metadata{
		Name:        name,
		Description: description,
		Version:     "1.0",
		Recipes:     recipes,
	})
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer writer.Close()

	var imported int
	for i, f := range files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			logger.Error("Failed to read sketch", "path", f.path, "error", err)
			continue
		}

		if err := writer.WriteSketch(f.recipe, f.seed, f.format, data); err != nil {
			logger.Error("Failed to write sketch", "recipe", f.recipe, "seed", f.seed, "error", err)
			continue
		}
		imported++

		if (i+1)%100 == 0 {
			logger.Info("Progress", "imported", i+1, "total", len(files))
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush sketches: %w", err)
	}

	logger.Info("Import complete", "output", outputFile, "sketches", imported)
	return nil
}

type sketchFile struct {
	recipe string
	format string
	path   string
	seed   int64
}

// sketchFilePattern matches sketch_<recipe>_<seed>.<ext>; the recipe may
// itself contain underscores.
var sketchFilePattern = regexp.MustCompile(`^sketch_(.+)_(-?\d+)\.(png|jpe?g)$`)

// scanSketchDirectory finds rendered sketches below dir.
func scanSketchDirectory(dir string) ([]sketchFile, error) {
	var files []sketchFile

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		matches := sketchFilePattern.FindStringSubmatch(filepath.Base(path))
		if matches == nil {
			return nil
		}

		seed, err := strconv.ParseInt(matches[2], 10, 64)
		if err != nil {
			return nil
		}
		format := "png"
		if matches[3] != "png" {
			format = "jpeg"
		}

		files = append(files, sketchFile{
			recipe: matches[1],
			seed:   seed,
			format: format,
			path:   path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func recipesOf(files []sketchFile) []string {
	seen := make(map[string]bool)
	var recipes []string
	for _, f := range files {
		if !seen[f.recipe] {
			seen[f.recipe] = true
			recipes = append(recipes, f.recipe)
		}
	}
	sort.Strings(recipes)
	return recipes
}
