// Package kasiski mines repeated n-grams and derives candidate key lengths
// from the divisors of their recurrence distances.
package kasiski

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/vigsolve/internal/freq"
)

const (
	defaultMinLen      = 3
	defaultMaxLen      = 5
	defaultShortText   = 100
	defaultShortMinLen = 2
	defaultLimit       = 20
)

// Config tunes the n-gram range and candidate truncation.
type Config struct {
	MinLen      int
	MaxLen      int
	ShortText   int
	ShortMinLen int
	Limit       int
}

// DefaultConfig returns a 3-5 n-gram scan (2-5 under 100 characters) keeping 20 candidates.
func DefaultConfig() Config {
	return Config{
		MinLen:      defaultMinLen,
		MaxLen:      defaultMaxLen,
		ShortText:   defaultShortText,
		ShortMinLen: defaultShortMinLen,
		Limit:       defaultLimit,
	}
}

// Histogram maps a recurrence distance to its occurrence count.
type Histogram map[int]int

// DistanceCount is one histogram entry.
type DistanceCount struct {
	Distance int
	Count    int
}

// Result holds the mined histogram and the derived candidates.
type Result struct {
	Histogram  Histogram
	Distances  []DistanceCount
	Candidates []int
}

// Examine runs the full examination over text.
func Examine(text string, cfg Config) Result {
	folded := freq.Fold(text)
	hist := Distances(folded, cfg)
	sorted := SortDistances(hist)
	return Result{
		Histogram:  hist,
		Distances:  sorted,
		Candidates: Candidates(sorted, cfg.Limit),
	}
}

// Distances builds the recurrence histogram of folded text. Each n-gram length
// is scanned concurrently into a private histogram; results are merged at the end.
func Distances(folded []byte, cfg Config) Histogram {
	minLen, maxLen := lengthRange(len(folded), cfg)
	if minLen > maxLen {
		return Histogram{}
	}
	partials := make([]Histogram, maxLen-minLen+1)
	var g errgroup.Group
	for l := minLen; l <= maxLen; l++ {
		g.Go(func() error {
			partials[l-minLen] = scanLength(folded, l)
			return nil
		})
	}
	_ = g.Wait()

	merged := Histogram{}
	for _, h := range partials {
		for d, c := range h {
			merged[d] += c
		}
	}
	return merged
}

func lengthRange(textLen int, cfg Config) (int, int) {
	minLen, maxLen := cfg.MinLen, cfg.MaxLen
	if minLen <= 0 {
		minLen = defaultMinLen
	}
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}
	if cfg.ShortText > 0 && textLen < cfg.ShortText && cfg.ShortMinLen > 0 && cfg.ShortMinLen < minLen {
		minLen = cfg.ShortMinLen
	}
	if minLen < 1 {
		minLen = 1
	}
	return minLen, maxLen
}

// scanLength indexes every all-letter n-gram of length l once, then replays the
// per-offset search: for each start s with s+l < len(text), every leftmost
// non-overlapping match o > s contributes o-s.
func scanLength(folded []byte, l int) Histogram {
	hist := Histogram{}
	n := len(folded)
	if l <= 0 || n <= l {
		return hist
	}
	positions := map[string][]int{}
	for s := 0; s+l <= n; s++ {
		gram := folded[s : s+l]
		if !allLetters(gram) {
			continue
		}
		key := string(gram)
		positions[key] = append(positions[key], s)
	}
	for _, pos := range positions {
		if len(pos) < 2 {
			continue
		}
		matches := nonOverlapping(pos, l)
		for _, s := range pos {
			if s+l >= n {
				continue
			}
			i := sort.SearchInts(matches, s+1)
			for _, o := range matches[i:] {
				hist[o-s]++
			}
		}
	}
	return hist
}

// nonOverlapping selects matches greedily from the left, as a streaming
// matcher reporting non-overlapping occurrences would.
func nonOverlapping(sorted []int, l int) []int {
	out := make([]int, 0, len(sorted))
	next := -1
	for _, p := range sorted {
		if p < next {
			continue
		}
		out = append(out, p)
		next = p + l
	}
	return out
}

func allLetters(b []byte) bool {
	for _, ch := range b {
		if ch < 'A' || ch > 'Z' {
			return false
		}
	}
	return true
}

// SortDistances orders histogram entries by count descending, then distance ascending.
func SortDistances(hist Histogram) []DistanceCount {
	out := make([]DistanceCount, 0, len(hist))
	for d, c := range hist {
		out = append(out, DistanceCount{Distance: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// Candidates emits the divisors >1 of each distance in order, keeping
// duplicates, and truncates the list to limit entries (limit <= 0 keeps all).
func Candidates(sorted []DistanceCount, limit int) []int {
	var out []int
	for _, dc := range sorted {
		out = append(out, Divisors(dc.Distance)...)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Divisors returns the divisors of n greater than 1 in ascending order.
func Divisors(n int) []int {
	if n < 2 {
		return nil
	}
	var small, large []int
	for i := 1; i*i <= n; i++ {
		if n%i != 0 {
			continue
		}
		if i > 1 {
			small = append(small, i)
		}
		if j := n / i; j != i {
			large = append(large, j)
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}
