// Package recovery recovers a Vigenère key column by column.
package recovery

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/verte-zerg/vigsolve/internal/cipher"
	"github.com/verte-zerg/vigsolve/internal/freq"
	"github.com/verte-zerg/vigsolve/internal/model"
)

// Registered strategy names.
const (
	NameChiSquared = "chi-squared"
	NameMutualIC   = "mutual-ic"
	NameGenetic    = "genetic"
)

// Strategy recovers a key of the given length from ciphertext.
type Strategy interface {
	Name() string
	Recover(ctx context.Context, text string, length int) (Key, error)
}

// Key is a recovered key with per-column diagnostics.
type Key struct {
	Key     string
	Shifts  []int
	Columns []ColumnFit
}

// ColumnFit describes how well the chosen shift fits one column.
// PValue is only set by the chi-squared strategy.
type ColumnFit struct {
	Column    int
	Shift     int
	Letters   int
	Statistic float64
	PValue    float64
}

// DegenerateColumnError reports a column without letters.
type DegenerateColumnError struct {
	Column int
	Length int
}

func (e *DegenerateColumnError) Error() string {
	return fmt.Sprintf("column %d of %d has no letters", e.Column, e.Length)
}

// Is matches model.ErrDegenerateColumn.
func (e *DegenerateColumnError) Is(target error) bool {
	return target == model.ErrDegenerateColumn
}

// ChiSquared picks, per column, the shift minimizing the chi-squared
// statistic against the reference distribution.
type ChiSquared struct {
	Reference freq.Table
}

// Name implements Strategy.
func (ChiSquared) Name() string { return NameChiSquared }

// Recover implements Strategy.
func (s ChiSquared) Recover(ctx context.Context, text string, length int) (Key, error) {
	dist := distuv.ChiSquared{K: freq.AlphabetSize - 1}
	return recoverColumns(ctx, text, length, func(col int, counts freq.Counts, n int) ColumnFit {
		best := ColumnFit{Column: col, Letters: n, Statistic: math.Inf(1)}
		for shift := 0; shift < freq.AlphabetSize; shift++ {
			chi := ChiSquaredStatistic(counts, n, s.Reference, shift)
			if chi < best.Statistic {
				best.Statistic = chi
				best.Shift = shift
			}
		}
		best.PValue = dist.Survival(best.Statistic)
		return best
	})
}

// ChiSquaredStatistic compares column counts, read through a trial shift,
// against the expected reference counts.
func ChiSquaredStatistic(counts freq.Counts, n int, ref freq.Table, shift int) float64 {
	chi := 0.0
	for i := 0; i < freq.AlphabetSize; i++ {
		expected := ref[i] * float64(n)
		if expected == 0 {
			continue
		}
		observed := float64(counts[(i+shift)%freq.AlphabetSize])
		d := observed - expected
		chi += d * d / expected
	}
	return chi
}

// MutualIC picks, per column, the shift maximizing the mutual index of
// coincidence with the reference distribution.
type MutualIC struct {
	Reference freq.Table
}

// Name implements Strategy.
func (MutualIC) Name() string { return NameMutualIC }

// Recover implements Strategy.
func (s MutualIC) Recover(ctx context.Context, text string, length int) (Key, error) {
	return recoverColumns(ctx, text, length, func(col int, counts freq.Counts, n int) ColumnFit {
		best := ColumnFit{Column: col, Letters: n, Statistic: -1}
		for shift := 0; shift < freq.AlphabetSize; shift++ {
			mic := 0.0
			for i := 0; i < freq.AlphabetSize; i++ {
				mic += float64(counts[(i+shift)%freq.AlphabetSize]) / float64(n) * s.Reference[i]
			}
			if mic > best.Statistic {
				best.Statistic = mic
				best.Shift = shift
			}
		}
		return best
	})
}

type columnScorer func(col int, counts freq.Counts, n int) ColumnFit

// recoverColumns scores every column concurrently; each goroutine writes only
// its own slot.
func recoverColumns(ctx context.Context, text string, length int, score columnScorer) (Key, error) {
	folded := freq.Fold(text)
	_, letters := freq.CountBytes(folded)
	if length <= 0 || length > letters {
		return Key{}, fmt.Errorf("recover key of length %d from %d letters: %w", length, letters, model.ErrInvalidKeyLength)
	}
	counts, perColumn := freq.ColumnCounts(folded, length)
	for col, n := range perColumn {
		if n == 0 {
			return Key{}, &DegenerateColumnError{Column: col, Length: length}
		}
	}

	fits := make([]ColumnFit, length)
	g, gctx := errgroup.WithContext(ctx)
	for col := 0; col < length; col++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fits[col] = score(col, counts[col], perColumn[col])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Key{}, err
	}

	shifts := make([]int, length)
	for i, fit := range fits {
		shifts[i] = fit.Shift
	}
	return Key{Key: cipher.KeyString(shifts), Shifts: shifts, Columns: fits}, nil
}
