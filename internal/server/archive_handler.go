package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MeKo-Tech/topollock/internal/archive"
)

// ArchiveHandler serves sketches from an archive database.
type ArchiveHandler struct {
	reader       *archive.Reader
	logger       *slog.Logger
	cacheControl string
}

// ArchiveConfig configures the archive handler.
type ArchiveConfig struct {
	ArchivePath  string
	CacheControl string
}

// NewArchiveHandler opens the archive read-only.
func NewArchiveHandler(cfg ArchiveConfig, logger *slog.Logger) (*ArchiveHandler, error) {
	reader, err := archive.OpenReader(cfg.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	cacheControl := cfg.CacheControl
	if cacheControl == "" {
		cacheControl = "public, max-age=86400"
	}

	return &ArchiveHandler{
		reader:       reader,
		logger:       logger,
		cacheControl: cacheControl,
	}, nil
}

// Handler serves /archive/{recipe}/{seed}[.ext] as an image and
// /archive/{recipe} as a JSON list of stored seeds.
func (h *ArchiveHandler) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/archive/"), "/")
		if rest != "" && !strings.Contains(rest, "/") {
			h.serveSeeds(w, rest)
			return
		}
		h.serveSketch(w, r)
	}
}

func (h *ArchiveHandler) serveSeeds(w http.ResponseWriter, recipe string) {
	seeds, err := h.reader.Seeds(recipe)
	if err != nil {
		h.log().Error("Failed to list seeds", "recipe", recipe, "error", err)
		http.Error(w, "failed to list seeds", http.StatusInternalServerError)
		return
	}
	if seeds == nil {
		seeds = []int64{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(map[string]any{"recipe": recipe, "seeds": seeds}); err != nil {
		h.log().Error("Failed to write response", "error", err)
	}
}

func (h *ArchiveHandler) serveSketch(w http.ResponseWriter, r *http.Request) {
	recipe, seed, _, ok := parseSketchPath("/archive/", r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data, format, err := h.reader.ReadSketch(recipe, seed)
	if errors.Is(err, archive.ErrNotFound) {
		http.Error(w, "Sketch not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log().Error("Failed to read sketch", "recipe", recipe, "seed", seed, "error", err)
		http.Error(w, "Failed to read sketch", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", h.cacheControl)
	w.Header().Set("Content-Type", contentType(format))
	if _, err := w.Write(data); err != nil {
		h.log().Error("Failed to write response", "error", err)
	}
}

// Close closes the archive reader.
func (h *ArchiveHandler) Close() error {
	return h.reader.Close()
}

func (h *ArchiveHandler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

func contentType(format string) string {
	if format == "jpeg" || format == "jpg" {
		return "image/jpeg"
	}
	return "image/png"
}
