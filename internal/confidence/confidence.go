// Package confidence rates how English-like a decryption looks.
package confidence

import (
	"fmt"

	"github.com/verte-zerg/vigsolve/internal/freq"
	"github.com/verte-zerg/vigsolve/internal/model"
)

// EnglishMutualIC is the average mutual IC of English text against the reference table.
const EnglishMutualIC = 0.066

// MinLetters is the fewest letters for which a confidence is reported.
const MinLetters = 2

// MutualIC returns sum(p(letter) * ref(letter)) over the letters of text,
// and the number of letters considered.
func MutualIC(text string, ref freq.Table) (float64, int) {
	counts, n := freq.Count(text)
	if n == 0 {
		return 0, 0
	}
	mic := 0.0
	for i, c := range counts {
		mic += float64(c) / float64(n) * ref[i]
	}
	return mic, n
}

// Score converts the mutual IC into a percentage of the English average.
// Values above 100 are kept as is.
func Score(text string, ref freq.Table) (model.Confidence, error) {
	mic, n := MutualIC(text, ref)
	if n < MinLetters {
		return model.Confidence{}, fmt.Errorf("confidence needs at least %d letters, got %d: %w", MinLetters, n, model.ErrUndeterminedConfidence)
	}
	return model.Confidence{Percent: mic / EnglishMutualIC * 100, Determined: true}, nil
}
