package report

import (
	"math"
	"strings"

	"github.com/verte-zerg/vigsolve/internal/freq"
)

const sparkChars = " .:-=+*#%@"

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// ColumnICSeries returns the mean column IC for key lengths 1..maxLen.
// Lengths whose columns hold fewer than two letters are reported as 0.
func ColumnICSeries(text string, maxLen int) []float64 {
	folded := freq.Fold(text)
	out := make([]float64, 0, maxLen)
	for n := 1; n <= maxLen; n++ {
		ic, ok := freq.AverageColumnIC(folded, n)
		if !ok {
			ic = 0
		}
		out = append(out, ic)
	}
	return out
}
