// Package keylen scores candidate key lengths and picks the most likely one.
package keylen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/vigsolve/internal/freq"
)

// Input is the shared view of the text handed to every strategy.
type Input struct {
	Text    []byte // folded text, see freq.Fold
	Letters int
	Pool    []int
}

// Strategy scores one candidate length. Higher is better.
type Strategy interface {
	Name() string
	Score(in Input, length int) float64
}

// PoolAdjuster is implemented by strategies that rewrite the candidate pool
// before scoring.
type PoolAdjuster interface {
	AdjustPool(pool []int) []int
}

// Registered strategy names.
const (
	NameAutocorrelation    = "autocorrelation"
	NameIndexOfCoincidence = "ic"
	NameFriedman           = "friedman"
	NameGCD                = "gcd"
)

// Autocorrelation counts equal letters at lag = length, rescaled to [1, 2].
type Autocorrelation struct{}

// Name implements Strategy.
func (Autocorrelation) Name() string { return NameAutocorrelation }

// Score implements Strategy.
func (Autocorrelation) Score(in Input, length int) float64 {
	pairs := len(in.Text) - length
	if length <= 0 || pairs <= 0 {
		return 1
	}
	matches := 0
	for i := 0; i < pairs; i++ {
		a := in.Text[i]
		if a == in.Text[i+length] && freq.IsLetter(a) {
			matches++
		}
	}
	return 1 + float64(matches)/float64(pairs)
}

// IndexOfCoincidence averages the IC of the columns obtained by striding the text.
type IndexOfCoincidence struct{}

// Name implements Strategy.
func (IndexOfCoincidence) Name() string { return NameIndexOfCoincidence }

// Score implements Strategy.
func (IndexOfCoincidence) Score(in Input, length int) float64 {
	ic, ok := freq.AverageColumnIC(in.Text, length)
	if !ok {
		return 0
	}
	return ic
}

// Friedman rewards lengths whose best trial column IC lies close to Baseline.
type Friedman struct {
	Baseline float64
}

// Name implements Strategy.
func (Friedman) Name() string { return NameFriedman }

// Score implements Strategy. The score is 1 - diff so that closer fits rank higher.
func (f Friedman) Score(in Input, length int) float64 {
	diff, best := FriedmanTest(in.Text, length, f.baseline())
	if best == 0 {
		return 0
	}
	return 1 - diff
}

func (f Friedman) baseline() float64 {
	if f.Baseline > 0 {
		return f.Baseline
	}
	return freq.EnglishIC
}

// FriedmanTest scans trial lengths 1..max and returns the smallest distance
// between the average column IC and baseline, with the trial length that
// produced it. best is 0 when no trial length has a defined IC.
func FriedmanTest(folded []byte, max int, baseline float64) (diff float64, best int) {
	diff = -1
	for l := 1; l <= max; l++ {
		avg, ok := freq.AverageColumnIC(folded, l)
		if !ok {
			continue
		}
		d := baseline - avg
		if d < 0 {
			d = -d
		}
		if diff < 0 || d < diff {
			diff = d
			best = l
		}
	}
	if best == 0 {
		return 0, 0
	}
	return diff, best
}

const defaultGCDThreshold = 5

// GCD injects the greatest common divisor of the larger candidates back into
// the pool, and scores that length 1.
type GCD struct {
	Threshold int
}

// Name implements Strategy.
func (GCD) Name() string { return NameGCD }

// AdjustPool implements PoolAdjuster.
func (s GCD) AdjustPool(pool []int) []int {
	g := s.divisor(pool)
	if g == 0 {
		return pool
	}
	return append(pool, g)
}

// Score implements Strategy.
func (s GCD) Score(in Input, length int) float64 {
	if g := s.divisor(in.Pool); g != 0 && g == length {
		return 1
	}
	return 0
}

// divisor returns the GCD of the pool entries above the threshold, or 0 when
// that GCD does not itself exceed the threshold.
func (s GCD) divisor(pool []int) int {
	threshold := s.Threshold
	if threshold <= 0 {
		threshold = defaultGCDThreshold
	}
	g := 0
	for _, v := range pool {
		if v > threshold {
			g = gcd(g, v)
		}
	}
	if g <= threshold {
		return 0
	}
	return g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

var registry = map[string]func() Strategy{
	NameAutocorrelation:    func() Strategy { return Autocorrelation{} },
	NameIndexOfCoincidence: func() Strategy { return IndexOfCoincidence{} },
	NameFriedman:           func() Strategy { return Friedman{} },
	NameGCD:                func() Strategy { return GCD{} },
}

// Names lists the registered strategy names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the strategy registered under name.
func Lookup(name string) (Strategy, error) {
	ctor, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown key length strategy %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Parse resolves a list of names, accepting comma-separated entries.
func Parse(names []string) ([]Strategy, error) {
	var out []Strategy
	for _, entry := range names {
		for _, part := range strings.Split(entry, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			s, err := Lookup(part)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}
