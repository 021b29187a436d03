package keylen

import (
	"fmt"

	"github.com/verte-zerg/vigsolve/internal/freq"
	"github.com/verte-zerg/vigsolve/internal/model"
)

// Lengths up to this value receive no frequency bonus.
const bonusMinLength = 3

// Request describes one estimation.
type Request struct {
	Strategies      []Strategy
	Candidates      []int
	Text            string
	Explicit        *int
	FrequencyWeight float64
}

// Estimation is the chosen length with the scores that led to it.
type Estimation struct {
	Length   int
	Explicit bool
	Scores   []model.Candidate
	Pool     []int
}

// Estimate picks a key length. An explicit length is returned without scoring.
func Estimate(req Request) (Estimation, error) {
	_, letters := freq.Count(req.Text)
	if req.Explicit != nil {
		explicit := *req.Explicit
		if explicit < 1 || explicit > letters {
			return Estimation{}, fmt.Errorf("explicit key length %d with %d letters: %w", explicit, letters, model.ErrInvalidKeyLength)
		}
		return Estimation{Length: explicit, Explicit: true}, nil
	}
	if len(req.Strategies) == 0 {
		return Estimation{}, fmt.Errorf("no key length strategies selected")
	}

	pool := make([]int, 0, len(req.Candidates)+len(req.Strategies))
	pool = append(pool, req.Candidates...)
	for _, s := range req.Strategies {
		if adj, ok := s.(PoolAdjuster); ok {
			pool = adj.AdjustPool(pool)
		}
	}
	folded := freq.Fold(req.Text)
	pool = usable(pool, folded, letters)
	if len(pool) == 0 {
		return Estimation{}, fmt.Errorf("estimate key length: %w", model.ErrNoCandidates)
	}

	in := Input{Text: folded, Letters: letters, Pool: pool}
	occurrences := map[int]int{}
	for _, l := range pool {
		occurrences[l]++
	}

	est := Estimation{Pool: pool}
	bestIdx := -1
	for _, length := range distinct(pool) {
		sum := 0.0
		for _, s := range req.Strategies {
			sum += s.Score(in, length)
		}
		score := sum / float64(len(req.Strategies))
		if length > bonusMinLength {
			score += float64(occurrences[length]) * req.FrequencyWeight
		}
		est.Scores = append(est.Scores, model.Candidate{Length: length, Score: score})
		if bestIdx < 0 || score > est.Scores[bestIdx].Score {
			bestIdx = len(est.Scores) - 1
		}
	}
	est.Length = est.Scores[bestIdx].Length
	return est, nil
}

// usable keeps lengths whose every column receives at least one letter;
// the others cannot be recovered column by column.
func usable(pool []int, folded []byte, letters int) []int {
	out := pool[:0]
	filled := map[int]bool{}
	for _, l := range pool {
		if l < 2 || l > letters {
			continue
		}
		ok, seen := filled[l]
		if !seen {
			ok = everyColumnFilled(folded, l)
			filled[l] = ok
		}
		if ok {
			out = append(out, l)
		}
	}
	return out
}

func everyColumnFilled(folded []byte, length int) bool {
	_, perColumn := freq.ColumnCounts(folded, length)
	for _, n := range perColumn {
		if n == 0 {
			return false
		}
	}
	return true
}

func distinct(pool []int) []int {
	seen := make(map[int]struct{}, len(pool))
	out := make([]int, 0, len(pool))
	for _, l := range pool {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
