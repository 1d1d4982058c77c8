// Package patterns summarizes recent journal activity.
package patterns

import "github.com/mikecbrant/glowcycle/internal/records"

const (
	// WindowSize caps the entries considered. The window is the most recent
	// entries regardless of how many calendar days they span.
	WindowSize = 7
	// DefaultEnergy is reported when the window is empty.
	DefaultEnergy = 70.0
	TopTagCount   = 3
)

// TagCount is a tag and its frequency within the window.
type TagCount struct {
	Tag   string
	Count int
}

// Summary holds the rolling statistics of a journal window.
type Summary struct {
	AvgEnergy    float64
	DominantMood records.Mood
	TopTags      []TagCount
	Entries      int
}

// Aggregate summarizes the first WindowSize entries of journals, which must be
// ordered most recent first. Ties in mood and tag counts go to the value seen
// first.
func Aggregate(journals []records.JournalEntry) Summary {
	window := journals
	if len(window) > WindowSize {
		window = window[:WindowSize]
	}
	s := Summary{AvgEnergy: DefaultEnergy, Entries: len(window)}
	if len(window) == 0 {
		return s
	}

	total := 0
	moods := newCounter[records.Mood]()
	tags := newCounter[string]()
	for _, j := range window {
		total += j.Energy
		moods.add(j.Mood)
		for _, tag := range j.Tags {
			if tag != "" {
				tags.add(tag)
			}
		}
	}
	s.AvgEnergy = float64(total) / float64(len(window))
	if top := moods.top(1); len(top) > 0 {
		s.DominantMood = top[0].key
	}
	for _, e := range tags.top(TopTagCount) {
		s.TopTags = append(s.TopTags, TagCount{Tag: e.key, Count: e.n})
	}
	return s
}

type entry[K comparable] struct {
	key K
	n   int
}

// counter tallies keys while remembering first-seen order.
type counter[K comparable] struct {
	index   map[K]int
	entries []entry[K]
}

func newCounter[K comparable]() *counter[K] { return &counter[K]{index: map[K]int{}} }

func (c *counter[K]) add(k K) {
	i, ok := c.index[k]
	if !ok {
		i = len(c.entries)
		c.index[k] = i
		c.entries = append(c.entries, entry[K]{key: k})
	}
	c.entries[i].n++
}

// top returns up to n entries by descending count, first-seen first on ties.
func (c *counter[K]) top(n int) []entry[K] {
	out := make([]entry[K], 0, n)
	used := make([]bool, len(c.entries))
	for len(out) < n {
		best := -1
		for i, e := range c.entries {
			if !used[i] && (best < 0 || e.n > c.entries[best].n) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		out = append(out, c.entries[best])
	}
	return out
}
