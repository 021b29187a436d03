// Package report renders analyses, crack results, and history for the terminal.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/vigsolve/internal/engine"
	"github.com/verte-zerg/vigsolve/internal/freq"
	"github.com/verte-zerg/vigsolve/internal/model"
)

const (
	maxSparkLength = 20
	maxDistances   = 10
)

type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	key    lipgloss.Style
	muted  lipgloss.Style
	banner lipgloss.Style
}

// newStyles binds styles to w so that non-terminal writers get plain text.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A")),
		label: r.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
		value: r.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true),
		key:   r.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true),
		muted: r.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
		banner: r.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 1),
	}
}

// RenderCrack prints the outcome of a crack run. Candidate scores are
// included when verbose is set.
func RenderCrack(w io.Writer, rep engine.Report, verbose bool) error {
	st := newStyles(w)
	summary := fmt.Sprintf("%s %s\n%s %s\n%s %s\n%s %s",
		st.label.Render("Key length:"), st.value.Render(strconv.Itoa(rep.KeyLength)),
		st.label.Render("Key:       "), st.key.Render(rep.Result.Key),
		st.label.Render("Confidence:"), st.value.Render(rep.Result.Confidence.String()),
		st.label.Render("Elapsed:   "), st.muted.Render(rep.Duration.Round(time.Microsecond).String()),
	)
	if _, err := fmt.Fprintln(w, st.banner.Render(summary)); err != nil {
		return err
	}
	if verbose && len(rep.Estimation.Scores) > 0 {
		if err := RenderCandidates(w, rep.Estimation.Scores, rep.KeyLength); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, st.title.Render("Plaintext")); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, rep.Result.Plaintext)
	return err
}

// RenderCandidates prints scored key lengths, best first.
func RenderCandidates(w io.Writer, scores []model.Candidate, chosen int) error {
	st := newStyles(w)
	sorted := append([]model.Candidate(nil), scores...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	rows := make([][]string, 0, len(sorted))
	for _, c := range sorted {
		mark := ""
		if c.Length == chosen {
			mark = "*"
		}
		rows = append(rows, []string{strconv.Itoa(c.Length), fmt.Sprintf("%.4f", c.Score), mark})
	}
	if _, err := fmt.Fprintln(w, st.title.Render("Key length candidates")); err != nil {
		return err
	}
	for _, line := range formatTable([]string{"Length", "Score", ""}, rows, map[int]bool{0: true, 1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderAnalysis prints statistics of text without attempting a crack.
func RenderAnalysis(w io.Writer, a engine.Analysis, text string, ref freq.Table, width int) error {
	st := newStyles(w)
	if _, err := fmt.Fprintf(w, "%s %s  %s %s\n",
		st.label.Render("Letters:"), st.value.Render(strconv.Itoa(a.Letters)),
		st.label.Render("IC:"), st.value.Render(fmt.Sprintf("%.4f", a.IC)),
	); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, st.muted.Render(fmt.Sprintf("English IC %.4f, random %.4f", freq.EnglishIC, 1.0/freq.AlphabetSize))); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, st.title.Render("Letter frequencies")); err != nil {
		return err
	}
	if err := FrequencyBars(w, a.Profile, ref, width); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, st.title.Render("Repeated n-gram distances")); err != nil {
		return err
	}
	if len(a.Distances) == 0 {
		if _, err := fmt.Fprintln(w, "No repeated n-grams found."); err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, maxDistances)
		for i, dc := range a.Distances {
			if i == maxDistances {
				break
			}
			rows = append(rows, []string{strconv.Itoa(dc.Distance), strconv.Itoa(dc.Count)})
		}
		for _, line := range formatTable([]string{"Distance", "Count"}, rows, map[int]bool{0: true, 1: true}) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s %v\n", st.label.Render("Candidates:"), a.Candidates); err != nil {
			return err
		}
	}

	maxLen := maxSparkLength
	if a.Letters/2 < maxLen {
		maxLen = a.Letters / 2
	}
	if maxLen < 1 {
		return nil
	}
	series := ColumnICSeries(text, maxLen)
	_, err := fmt.Fprintf(w, "%s 1 [%s] %d\n", st.label.Render("Column IC by length:"), Sparkline(series), maxLen)
	return err
}

// RenderHistory prints stored attempts as a table.
func RenderHistory(w io.Writer, records []model.AnalysisRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No attempts recorded.")
		return err
	}
	headers := []string{"When", "Run", "Letters", "IC", "Len", "Key", "Recovery", "Confidence", "Time"}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			shortID(rec.RunID),
			strconv.Itoa(rec.Letters),
			fmt.Sprintf("%.4f", rec.IC),
			strconv.Itoa(rec.KeyLength),
			rec.Key,
			rec.Recovery,
			rec.Confidence.String(),
			(time.Duration(rec.DurationMs) * time.Millisecond).String(),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true, 7: true, 8: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
