package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/vigsolve/internal/freq"
)

const (
	terminalWidthBackup = 80
	minBarWidth         = 10
	// "A  12.34%  12.34%  " precedes each bar.
	barLabelWidth = 20
	barFill       = '#'
	refMarker     = '|'
)

// BarWidthFor computes the bar width that fits a frequency line into totalWidth.
func BarWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		totalWidth = terminalWidthBackup
	}
	w := totalWidth - barLabelWidth
	if w < minBarWidth {
		w = minBarWidth
	}
	return w
}

// FrequencyBars renders the observed letter frequencies against the reference.
// Bars are scaled to the largest frequency; the marker shows the reference value.
// width <= 0 uses the terminal width.
func FrequencyBars(w io.Writer, p freq.Profile, ref freq.Table, width int) error {
	if width <= 0 {
		width = terminalWidth()
	}
	barWidth := BarWidthFor(width)

	maxFreq := 0.0
	for i := 0; i < freq.AlphabetSize; i++ {
		maxFreq = math.Max(maxFreq, math.Max(p.Freq[i], ref[i]))
	}
	if maxFreq == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "%-3s%7s  %7s\n", "", "text", "english"); err != nil {
		return err
	}
	for i := 0; i < freq.AlphabetSize; i++ {
		line := fmt.Sprintf("%c  %6.2f%%  %6.2f%%  %s", 'A'+i, p.Freq[i]*100, ref[i]*100,
			bar(p.Freq[i]/maxFreq, ref[i]/maxFreq, barWidth))
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func bar(value, marker float64, width int) string {
	filled := int(math.Round(value * float64(width)))
	mark := int(math.Round(marker * float64(width)))
	if mark >= width {
		mark = width - 1
	}
	cells := make([]rune, width)
	for i := range cells {
		cells[i] = ' '
		if i < filled {
			cells[i] = barFill
		}
	}
	cells[mark] = refMarker
	return string(cells)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
