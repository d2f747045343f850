package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/MeKo-Tech/topollock/internal/palette"
	"github.com/MeKo-Tech/topollock/internal/pipeline"
	"github.com/MeKo-Tech/topollock/internal/server"
	"github.com/MeKo-Tech/topollock/internal/sketch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve sketches over HTTP, rendering missing ones on demand",
	Long: `Serve GET /sketches/{recipe}/{seed}.{ext}. Missing sketches are rendered
on demand and cached in --output-dir. With --archive, GET /archive/{recipe}/{seed}
serves sketches stored by "topollock batch --archive".`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().Bool("generate-missing", true, "Render missing sketches on-demand and cache them to disk")
	serveCmd.Flags().Bool("disable-cache", false, "Always re-render sketches (still writes to disk)")
	serveCmd.Flags().Int("max-concurrent-renders", runtime.NumCPU(), "Max concurrent renders (default: number of CPUs)")
	serveCmd.Flags().Duration("render-timeout", time.Minute, "Timeout per render")
	serveCmd.Flags().String("cache-control", "no-store", "Cache-Control header for rendered sketches")
	serveCmd.Flags().String("archive", "", "Serve sketches from this SQLite archive under /archive/")

	bindings := []flagBinding{
		{"serve.addr", "addr"},
		{"serve.generate_missing", "generate-missing"},
		{"serve.disable_cache", "disable-cache"},
		{"serve.max_concurrent_renders", "max-concurrent-renders"},
		{"serve.render_timeout", "render-timeout"},
		{"serve.cache_control", "cache-control"},
		{"serve.archive", "archive"},
	}
	bindings = append(bindings, addSketchFlags(serveCmd, "serve")...)
	bindings = append(bindings, addOutputFlags(serveCmd, "serve")...)
	bindFlags(serveCmd, bindings)
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}
	if err := registerConfigPalettes(); err != nil {
		return err
	}

	addr := viper.GetString("serve.addr")
	generateMissing := viper.GetBool("serve.generate_missing")
	disableCache := viper.GetBool("serve.disable_cache")
	maxConc := viper.GetInt("serve.max_concurrent_renders")
	renderTimeout := viper.GetDuration("serve.render_timeout")
	cacheControl := viper.GetString("serve.cache_control")
	archivePath := viper.GetString("serve.archive")
	outputDir := viper.GetString("output-dir")

	opts, err := sketchOptions("serve")
	if err != nil {
		return err
	}

	gen, err := pipeline.NewGenerator(opts, outputDir, logger, generatorOptions("serve"))
	if err != nil {
		return fmt.Errorf("failed to init generator: %w", err)
	}

	od, err := server.NewOnDemand(gen, server.OnDemandConfig{
		CacheControl:         cacheControl,
		MaxConcurrentRenders: maxConc,
		RenderTimeout:        renderTimeout,
		GenerateMissing:      generateMissing,
		DisableCache:         disableCache,
	}, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", server.Health)
	mux.Handle("/status", od.StatusHandler())
	mux.Handle("/status/stream", od.StatusStreamHandler(250*time.Millisecond))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"recipes":  sketch.Names(),
			"palettes": palette.Names(),
			"format":   gen.Format(),
		})
	})
	mux.Handle("/sketches/", server.WithCORS(od.Handler()))

	if archivePath != "" {
		ah, err := server.NewArchiveHandler(server.ArchiveConfig{ArchivePath: archivePath}, logger)
		if err != nil {
			return err
		}
		defer ah.Close()
		mux.Handle("/archive/", server.WithCORS(ah.Handler()))
	}

	logger.Info("sketch server listening",
		"addr", addr,
		"output_dir", outputDir,
		"recipe", opts.Recipe,
		"generate_missing", generateMissing,
		"max_concurrent_renders", maxConc,
		"archive", archivePath,
	)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
