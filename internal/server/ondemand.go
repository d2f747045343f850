// Package server serves sketches over HTTP, rendering missing ones on demand.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/topollock/internal/pipeline"
	"github.com/MeKo-Tech/topollock/internal/sketch"
)

type OnDemandConfig struct {
	CacheControl         string
	MaxConcurrentRenders int
	RenderTimeout        time.Duration
	GenerateMissing      bool
	DisableCache         bool
}

// OnDemand serves sketches from the generator's output directory and
// renders the ones that are missing.
type OnDemand struct {
	gen    *pipeline.Generator
	logger *slog.Logger
	sem    chan struct{}
	cfg    OnDemandConfig

	// Per-sketch locks, dropped once no request holds or waits on them.
	locksMu sync.Mutex
	locks   map[string]*keyLock

	activeRenders  atomic.Int32
	totalRendered  atomic.Int64
	totalFailed    atomic.Int64
	currentRenders sync.Map // sketch key -> start time

	// Requests waiting for the semaphore
	queuedRenders  atomic.Int32
	queuedSketches sync.Map // sketch key -> queue time
}

// Status represents the current state of on-demand rendering.
type Status struct {
	Render RenderStatus `json:"render"`
}

// RenderStatus contains current render operation status.
type RenderStatus struct {
	ActiveRenders  int      `json:"active_renders"`
	TotalRendered  int64    `json:"total_rendered"`
	TotalFailed    int64    `json:"total_failed"`
	CurrentRenders []string `json:"current_renders"`
	MaxConcurrent  int      `json:"max_concurrent"`
	QueuedRenders  int      `json:"queued_renders"`
	QueuedSketches []string `json:"queued_sketches"`
}

func NewOnDemand(gen *pipeline.Generator, cfg OnDemandConfig, logger *slog.Logger) (*OnDemand, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if cfg.MaxConcurrentRenders <= 0 {
		cfg.MaxConcurrentRenders = 1
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = time.Minute
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "no-store"
	}

	return &OnDemand{
		gen:    gen,
		cfg:    cfg,
		logger: logger,
		sem:    make(chan struct{}, cfg.MaxConcurrentRenders),
		locks:  make(map[string]*keyLock),
	}, nil
}

// Status returns the current render counters.
func (o *OnDemand) Status() Status {
	return Status{
		Render: RenderStatus{
			ActiveRenders:  int(o.activeRenders.Load()),
			TotalRendered:  o.totalRendered.Load(),
			TotalFailed:    o.totalFailed.Load(),
			CurrentRenders: sortedKeys(&o.currentRenders),
			MaxConcurrent:  o.cfg.MaxConcurrentRenders,
			QueuedRenders:  int(o.queuedRenders.Load()),
			QueuedSketches: sortedKeys(&o.queuedSketches),
		},
	}
}

func sortedKeys(m *sync.Map) []string {
	var keys []string
	m.Range(func(key, _ any) bool {
		keys = append(keys, key.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}

// StatusHandler returns an HTTP handler for the status endpoint (JSON).
func (o *OnDemand) StatusHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Cache-Control", "no-store")

		if err := json.NewEncoder(w).Encode(o.Status()); err != nil {
			o.log().Error("failed to encode status", "error", err)
			http.Error(w, "failed to encode status", http.StatusInternalServerError)
			return
		}
	})
}

// StatusStreamHandler pushes the status as Server-Sent Events every interval.
func (o *OnDemand) StatusStreamHandler(interval time.Duration) http.Handler {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		o.sendStatusEvent(w, flusher)
		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				o.sendStatusEvent(w, flusher)
			}
		}
	})
}

func (o *OnDemand) sendStatusEvent(w http.ResponseWriter, flusher http.Flusher) {
	data, err := json.Marshal(o.Status())
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

func (o *OnDemand) Handler() http.Handler {
	return http.HandlerFunc(o.serveSketch)
}

func (o *OnDemand) serveSketch(w http.ResponseWriter, r *http.Request) {
	recipe, seed, ext, ok := parseSketchPath("/sketches/", r.URL.Path)
	if !ok || ext != o.gen.Ext() {
		http.NotFound(w, r)
		return
	}
	if _, err := sketch.Lookup(recipe); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	fullPath := o.gen.Path(recipe, seed)
	key := fmt.Sprintf("%s/%d", recipe, seed)

	w.Header().Set("Cache-Control", o.cfg.CacheControl)

	if !o.cfg.DisableCache && fileExists(fullPath) {
		http.ServeFile(w, r, fullPath)
		return
	}

	if !o.cfg.GenerateMissing {
		http.Error(w, fmt.Sprintf("sketch not found: %s", key), http.StatusNotFound)
		return
	}

	unlock := o.lock(key)
	defer unlock()

	// Another request may have rendered it while we waited.
	if !o.cfg.DisableCache && fileExists(fullPath) {
		http.ServeFile(w, r, fullPath)
		return
	}

	o.queuedRenders.Add(1)
	o.queuedSketches.Store(key, time.Now())

	select {
	case o.sem <- struct{}{}:
		o.queuedRenders.Add(-1)
		o.queuedSketches.Delete(key)
		defer func() { <-o.sem }()
	case <-r.Context().Done():
		o.queuedRenders.Add(-1)
		o.queuedSketches.Delete(key)
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), o.cfg.RenderTimeout)
	defer cancel()

	start := time.Now()
	o.activeRenders.Add(1)
	o.currentRenders.Store(key, start)

	_, err := o.gen.Generate(ctx, recipe, seed, o.cfg.DisableCache)

	o.activeRenders.Add(-1)
	o.currentRenders.Delete(key)

	if err != nil {
		o.totalFailed.Add(1)
		o.log().Error("failed to render sketch", "recipe", recipe, "seed", seed, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		http.Error(w, fmt.Sprintf("failed to render sketch %s: %v", key, err), status)
		return
	}
	o.totalRendered.Add(1)
	o.log().Info("sketch rendered on-demand", "recipe", recipe, "seed", seed, "ms", time.Since(start).Milliseconds())

	if !fileExists(fullPath) {
		http.Error(w, "render completed but file missing on disk", http.StatusInternalServerError)
		return
	}

	http.ServeFile(w, r, fullPath)
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// lock serialises renders of one sketch key and returns the matching unlock.
func (o *OnDemand) lock(key string) func() {
	o.locksMu.Lock()
	kl, ok := o.locks[key]
	if !ok {
		kl = &keyLock{}
		o.locks[key] = kl
	}
	kl.refs++
	o.locksMu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		o.locksMu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(o.locks, key)
		}
		o.locksMu.Unlock()
	}
}

func (o *OnDemand) lockCount() int {
	o.locksMu.Lock()
	defer o.locksMu.Unlock()
	return len(o.locks)
}

func (o *OnDemand) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.Default()
}

// parseSketchPath parses prefix + "{recipe}/{seed}[.ext]". ext is returned
// without the dot and is empty when absent.
func parseSketchPath(prefix, requestPath string) (string, int64, string, bool) {
	if !strings.HasPrefix(requestPath, prefix) {
		return "", 0, "", false
	}
	rest := strings.TrimPrefix(requestPath, prefix)
	recipe, name, found := strings.Cut(rest, "/")
	if !found || recipe == "" || strings.Contains(name, "/") {
		return "", 0, "", false
	}

	ext := strings.TrimPrefix(path.Ext(name), ".")
	if ext != "" {
		name = strings.TrimSuffix(name, "."+ext)
	}
	seed, err := strconv.ParseInt(name, 10, 64)
	if err != nil {
		return "", 0, "", false
	}
	return recipe, seed, ext, true
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	if err != nil {
		return false
	}
	return !st.IsDir()
}
