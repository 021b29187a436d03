package keylen

import "github.com/verte-zerg/vigsolve/internal/freq"

// PeriodConfig tunes the search for a shorter period behind a chosen length.
type PeriodConfig struct {
	// MinIC is the mean column IC a length needs to count as periodic.
	MinIC float64
	// MinColumnLetters is the smallest column a trial length may produce.
	MinColumnLetters int
}

// DefaultPeriodConfig accepts lengths within about 7% of the English IC,
// measured on columns of at least 20 letters.
func DefaultPeriodConfig() PeriodConfig {
	return PeriodConfig{
		MinIC:            0.93 * freq.EnglishIC,
		MinColumnLetters: 20,
	}
}

// ShortestPeriod returns the smallest length below length whose columns look
// monoalphabetic, or length itself when none does. Multiples of the key period
// score as well as the period, and long ones win on noise from thin columns.
// The scan stops at the first trial length whose columns get too thin.
func ShortestPeriod(text string, length int, cfg PeriodConfig) int {
	if cfg.MinIC <= 0 || length <= 2 {
		return length
	}
	folded := freq.Fold(text)
	for d := 2; d < length; d++ {
		_, perColumn := freq.ColumnCounts(folded, d)
		thin := false
		for _, n := range perColumn {
			if n < cfg.MinColumnLetters {
				thin = true
				break
			}
		}
		if thin {
			break
		}
		if ic, ok := freq.AverageColumnIC(folded, d); ok && ic >= cfg.MinIC {
			return d
		}
	}
	return length
}
