package worker

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// RecipeTally counts the finished renders of one recipe.
type RecipeTally struct {
	Recipe string
	Done   int
	Failed int
	// Busy is the summed render time of successful sketches.
	Busy time.Duration
}

// Avg is the mean render time of the successful sketches.
func (t RecipeTally) Avg() time.Duration {
	if ok := t.Done - t.Failed; ok > 0 {
		return t.Busy / time.Duration(ok)
	}
	return 0
}

// Progress tallies batch results per recipe and draws a one-line status.
type Progress struct {
	out     io.Writer
	start   time.Time
	tallies map[string]*RecipeTally
	total   int
	done    int
	mu      sync.Mutex
	enabled bool
}

// NewProgress tracks total tasks. When enabled, every result redraws the
// status line on stderr.
func NewProgress(total int, enabled bool) *Progress {
	return &Progress{
		out:     os.Stderr,
		start:   time.Now(),
		tallies: make(map[string]*RecipeTally),
		total:   total,
		enabled: enabled,
	}
}

// Record adds one finished task. It has the ProgressFunc signature.
func (p *Progress) Record(r Result, completed, total int) {
	p.mu.Lock()
	t, ok := p.tallies[r.Task.Recipe]
	if !ok {
		t = &RecipeTally{Recipe: r.Task.Recipe}
		p.tallies[r.Task.Recipe] = t
	}
	t.Done++
	if r.Err != nil {
		t.Failed++
	} else {
		t.Busy += r.Elapsed
	}
	p.done, p.total = completed, total
	line := p.lineLocked()
	p.mu.Unlock()

	if p.enabled {
		fmt.Fprint(p.out, "\r"+line+"   ")
	}
}

// Recipes returns a snapshot of the tallies sorted by recipe name.
func (p *Progress) Recipes() []RecipeTally {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Progress) snapshotLocked() []RecipeTally {
	out := make([]RecipeTally, 0, len(p.tallies))
	for _, t := range p.tallies {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Recipe < out[j].Recipe })
	return out
}

func (p *Progress) failedLocked() int {
	n := 0
	for _, t := range p.tallies {
		n += t.Failed
	}
	return n
}

// lineLocked renders e.g. "[#####-----] 5/10  bands 3  lines 2  (1 failed)  ETA 4s".
func (p *Progress) lineLocked() string {
	const width = 20
	filled := 0
	if p.total > 0 {
		filled = p.done * width / p.total
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s%s] %d/%d", strings.Repeat("#", filled), strings.Repeat("-", width-filled), p.done, p.total)
	for _, t := range p.snapshotLocked() {
		fmt.Fprintf(&b, "  %s %d", t.Recipe, t.Done)
	}
	if f := p.failedLocked(); f > 0 {
		fmt.Fprintf(&b, "  (%d failed)", f)
	}

	elapsed := time.Since(p.start)
	switch {
	case p.done >= p.total:
		fmt.Fprintf(&b, "  done in %s", elapsed.Round(time.Second))
	case p.done > 0:
		eta := elapsed / time.Duration(p.done) * time.Duration(p.total-p.done)
		fmt.Fprintf(&b, "  ETA %s", eta.Round(time.Second))
	}
	return b.String()
}

// Done ends the status line.
func (p *Progress) Done() {
	if p.enabled {
		fmt.Fprintln(p.out)
	}
}

// Summary describes the finished batch, including the mean render time per recipe.
func (p *Progress) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	failed := p.failedLocked()
	var b strings.Builder
	fmt.Fprintf(&b, "Rendered %d/%d sketches (%d failed) in %s",
		p.done-failed, p.total, failed, time.Since(p.start).Round(time.Second))
	for _, t := range p.snapshotLocked() {
		fmt.Fprintf(&b, "; %s %d/%d avg %s", t.Recipe, t.Done-t.Failed, t.Done, t.Avg().Round(time.Millisecond))
	}
	return b.String()
}
