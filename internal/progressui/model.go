// Package progressui provides the Bubble Tea view of a running genetic search.
package progressui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/vigsolve/internal/genetic"
)

const (
	maxBarWidth = 60
	padding     = 2
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// ProgressMsg carries one generation report into the program.
type ProgressMsg genetic.Progress

// DoneMsg ends the program once the search has returned.
type DoneMsg struct {
	Err error
}

// Model implements the progress view.
type Model struct {
	bar    progress.Model
	cancel context.CancelFunc

	generations int
	startedAt   time.Time

	last      genetic.Progress
	stopping  bool
	done      bool
	err       error
	interrupt bool
}

// NewModel constructs a progress view. cancel stops the search on user request.
func NewModel(generations int, cancel context.CancelFunc) *Model {
	return &Model{
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
		cancel:      cancel,
		generations: generations,
		startedAt:   time.Now(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - padding*2
		if m.bar.Width > maxBarWidth {
			m.bar.Width = maxBarWidth
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if m.stopping {
				m.interrupt = true
				return m, tea.Quit
			}
			m.stopping = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	case ProgressMsg:
		m.last = genetic.Progress(msg)
		if m.last.Generations > 0 {
			m.generations = m.last.Generations
		}
		return m, nil
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done {
		return ""
	}
	pad := strings.Repeat(" ", padding)
	var b strings.Builder
	title := "Genetic key search"
	if n := len(m.last.BestKey); n > 0 {
		title = fmt.Sprintf("%s, key length %d", title, n)
	}
	b.WriteString(pad + titleStyle.Render(title) + "\n")
	b.WriteString(pad + m.bar.ViewAs(m.Percent()) + "\n")
	b.WriteString(pad + m.statusLine() + "\n")
	footer := "q to stop and keep the best key"
	if m.stopping {
		footer = "stopping, press again to abort"
	}
	b.WriteString(pad + footerStyle.Render(footer) + "\n")
	return b.String()
}

// Percent returns the completed share of the generation budget.
func (m *Model) Percent() float64 {
	if m.generations <= 0 {
		return 0
	}
	p := float64(m.last.Generation) / float64(m.generations)
	if p > 1 {
		p = 1
	}
	return p
}

// Interrupted reports whether the user aborted before the search returned.
func (m *Model) Interrupted() bool {
	return m.interrupt
}

// Err returns the error the search finished with.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) statusLine() string {
	elapsed := time.Since(m.startedAt).Round(100 * time.Millisecond)
	if m.last.Generation == 0 {
		return fmt.Sprintf("Generation 0/%d  %s", m.generations, elapsed)
	}
	return fmt.Sprintf("Generation %d/%d  Best %s  Fitness %.4f  %s",
		m.last.Generation, m.generations, keyStyle.Render(m.last.BestKey), m.last.BestFitness, elapsed)
}
