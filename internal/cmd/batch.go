package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/MeKo-Tech/topollock/internal/archive"
	"github.com/MeKo-Tech/topollock/internal/pipeline"
	"github.com/MeKo-Tech/topollock/internal/sketch"
	"github.com/MeKo-Tech/topollock/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Render a range of seeds in parallel",
	Long: `Render --count consecutive seeds starting at --seed-start for one or more
recipes, using a pool of workers. Every render can also be stored in a SQLite
archive with --archive.`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Int64("seed-start", 1, "First seed of the range")
	batchCmd.Flags().Int("count", 10, "Number of seeds per recipe")
	batchCmd.Flags().StringSlice("recipes", nil, "Render several recipes (default: --recipe)")
	batchCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	batchCmd.Flags().Bool("progress", true, "Show progress bar during batch rendering")
	batchCmd.Flags().Bool("allow-failures", false, "Exit successfully even if some sketches fail")
	batchCmd.Flags().Bool("force", false, "Force re-rendering even if files exist")
	batchCmd.Flags().String("archive", "", "Also store every sketch in this SQLite archive")

	bindings := []flagBinding{
		{"batch.seed_start", "seed-start"},
		{"batch.count", "count"},
		{"batch.recipes", "recipes"},
		{"batch.workers", "workers"},
		{"batch.progress", "progress"},
		{"batch.allow_failures", "allow-failures"},
		{"batch.force", "force"},
		{"batch.archive", "archive"},
	}
	bindings = append(bindings, addSketchFlags(batchCmd, "batch")...)
	bindings = append(bindings, addOutputFlags(batchCmd, "batch")...)
	bindFlags(batchCmd, bindings)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}
	if err := registerConfigPalettes(); err != nil {
		return err
	}

	seedStart := viper.GetInt64("batch.seed_start")
	count := viper.GetInt("batch.count")
	recipes := viper.GetStringSlice("batch.recipes")
	workers := viper.GetInt("batch.workers")
	showProgress := viper.GetBool("batch.progress")
	allowFailures := viper.GetBool("batch.allow_failures")
	force := viper.GetBool("batch.force")
	archivePath := viper.GetString("batch.archive")
	outputDir := viper.GetString("output-dir")

	if count <= 0 {
		return fmt.Errorf("--count must be positive, got %d", count)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	opts, err := sketchOptions("batch")
	if err != nil {
		return err
	}
	if len(recipes) == 0 {
		recipes = []string{opts.Recipe}
	}
	for _, r := range recipes {
		if _, err := sketch.Lookup(r); err != nil {
			return err
		}
	}

	gopts := generatorOptions("batch")
	var store *archive.Writer
	if archivePath != "" {
		store, err = archive.New(archivePath, archive.Metadata{
			Name:        "Topollock",
			Description: "Procedural contour sketches",
			Version:     "1.0",
			Palette:     opts.Palette,
			Recipes:     recipes,
		})
		if err != nil {
			return fmt.Errorf("failed to create archive: %w", err)
		}
		defer store.Close()
		gopts.SketchWriter = store
		logger.Info("Archive created", "path", archivePath)
	}

	gen, err := pipeline.NewGenerator(opts, outputDir, logger, gopts)
	if err != nil {
		return fmt.Errorf("failed to init generator: %w", err)
	}

	var tasks []worker.Task
	for _, r := range recipes {
		tasks = append(tasks, worker.SeedRange(r, seedStart, count, force)...)
	}

	logger.Info("Starting batch render",
		"recipes", recipes,
		"seeds", fmt.Sprintf("%d-%d", seedStart, seedStart+int64(count)-1),
		"sketches", len(tasks),
		"workers", workers,
		"output_dir", outputDir,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	progress := worker.NewProgress(len(tasks), showProgress)
	pool := worker.New(worker.Config{
		Workers:    workers,
		Generator:  gen,
		OnProgress: progress.Record,
	})

	results := pool.Run(ctx, tasks)
	progress.Done()

	var failedCount int
	for _, r := range results {
		if r.Err != nil {
			failedCount++
			logger.Error("Sketch render failed", "task", r.Task.String(), "error", r.Err)
		}
	}
	if missing := len(tasks) - len(results); missing > 0 {
		failedCount += missing
		logger.Warn("Batch interrupted before all sketches were started", "not_started", missing)
	}

	logger.Info(progress.Summary())

	if store != nil {
		logger.Info("Flushing archive...")
		if err := store.Flush(); err != nil {
			return fmt.Errorf("failed to flush archive: %w", err)
		}
		logger.Info("Archive complete", "path", archivePath)
	}

	if failedCount > 0 {
		if allowFailures {
			logger.Warn("Some sketches failed to render, but continuing due to --allow-failures flag", "failed_count", failedCount)
			return nil
		}
		return fmt.Errorf("%d sketches failed to render", failedCount)
	}

	return nil
}
