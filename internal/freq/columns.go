package freq

import "github.com/montanaflynn/stats"

// Columns splits folded text into n streams; position i goes to column i mod n.
func Columns(folded []byte, n int) [][]byte {
	if n <= 0 {
		return nil
	}
	cols := make([][]byte, n)
	size := len(folded)/n + 1
	for i := range cols {
		cols[i] = make([]byte, 0, size)
	}
	for i, b := range folded {
		cols[i%n] = append(cols[i%n], b)
	}
	return cols
}

// ColumnCounts tallies letters per column without materializing the columns.
func ColumnCounts(folded []byte, n int) ([]Counts, []int) {
	if n <= 0 {
		return nil, nil
	}
	counts := make([]Counts, n)
	letters := make([]int, n)
	for i, b := range folded {
		if idx, ok := LetterIndex(b); ok {
			counts[i%n][idx]++
			letters[i%n]++
		}
	}
	return counts, letters
}

// AverageColumnIC is the mean IC over the columns of folded text split into n.
// Columns with fewer than two letters are skipped; false means none qualified.
func AverageColumnIC(folded []byte, n int) (float64, bool) {
	counts, letters := ColumnCounts(folded, n)
	ics := make([]float64, 0, n)
	for i := range counts {
		if ic, ok := ICFromCounts(counts[i], letters[i]); ok {
			ics = append(ics, ic)
		}
	}
	if len(ics) == 0 {
		return 0, false
	}
	mean, err := stats.Mean(ics)
	if err != nil {
		return 0, false
	}
	return mean, true
}
