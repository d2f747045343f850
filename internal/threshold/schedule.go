// Package threshold builds ordered iso-level schedules and prunes them per cell.
package threshold

import (
	"image/color"
	"math/rand"
)

// Entry is one iso level and the colour it is drawn with.
type Entry struct {
	Value float64
	Color color.Color
}

// ColorSource supplies palette colours.
type ColorSource interface {
	ColorAt(index, total int) color.Color
	RandomColor(rng *rand.Rand) color.Color
}

// Colorer picks the colour of entry i out of n.
type Colorer func(i, n int) color.Color

// Fixed gives every entry the same colour (line mode).
func Fixed(c color.Color) Colorer {
	return func(int, int) color.Color { return c }
}

// Spread distributes entries evenly across the source.
func Spread(src ColorSource) Colorer {
	return src.ColorAt
}

// Random draws one colour per entry from rng, in entry order.
func Random(src ColorSource, rng *rand.Rand) Colorer {
	return func(int, int) color.Color { return src.RandomColor(rng) }
}

// Schedule is an ordered list of levels spaced Delta apart. Later entries paint on top.
type Schedule struct {
	Entries []Entry
	Delta   float64
}

// Build returns count+1 entries with Value = init + i*delta for i in 0..count.
// A nil colorer leaves colours nil.
func Build(init float64, count int, delta float64, colorer Colorer) Schedule {
	if count < 0 {
		count = -1
	}
	n := count + 1
	entries := make([]Entry, n)
	for i := range entries {
		entries[i].Value = init + float64(i)*delta
		if colorer != nil {
			entries[i].Color = colorer(i, n)
		}
	}
	return Schedule{Entries: entries, Delta: delta}
}

// Single is a one-level schedule.
func Single(value float64, c color.Color) Schedule {
	return Schedule{Entries: []Entry{{Value: value, Color: c}}}
}

// Relevant appends to dst the entries that can intersect a cell whose corner
// values span [lo, hi], using the schedule's Delta as safety margin.
func (s Schedule) Relevant(dst []Entry, lo, hi float64) []Entry {
	return AppendRelevant(dst, s.Entries, lo, hi, s.Delta)
}

// AppendRelevant appends entries with lo-delta <= Value <= hi, preserving order.
//
// Entries above hi classify as id 0 and draw nothing. Entries below lo-delta
// classify as id 15; in boundary mode they draw nothing either, in region mode
// their squares are covered by the next kept entry. A cell whose lo lies more
// than delta above the last entry keeps nothing and stays unpainted.
func AppendRelevant(dst []Entry, entries []Entry, lo, hi, delta float64) []Entry {
	for _, e := range entries {
		if e.Value >= lo-delta && e.Value <= hi {
			dst = append(dst, e)
		}
	}
	return dst
}
