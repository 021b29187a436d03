package progressui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestProgressUpdatesView(t *testing.T) {
	m := NewModel(300, nil)
	if m.Percent() != 0 {
		t.Fatalf("expected 0%%, got %f", m.Percent())
	}
	m.Update(ProgressMsg{Generation: 150, Generations: 300, BestKey: "LEMON", BestFitness: 0.1234})
	if m.Percent() != 0.5 {
		t.Fatalf("expected 50%%, got %f", m.Percent())
	}
	out := m.View()
	for _, want := range []string{"key length 5", "150/300", "LEMON", "0.1234"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestStopRequestCancelsThenAborts(t *testing.T) {
	cancelled := 0
	m := NewModel(10, func() { cancelled++ })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd != nil || cancelled != 1 {
		t.Fatalf("expected cancel without quit, cancelled=%d", cancelled)
	}
	if !strings.Contains(m.View(), "stopping") {
		t.Fatalf("expected stopping footer:\n%s", m.View())
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !m.Interrupted() {
		t.Fatalf("expected quit on second stop request")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
}

func TestDoneQuitsWithError(t *testing.T) {
	m := NewModel(10, nil)
	want := errors.New("boom")
	_, cmd := m.Update(DoneMsg{Err: want})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if !errors.Is(m.Err(), want) || m.View() != "" || m.Interrupted() {
		t.Fatalf("unexpected final state: err=%v view=%q", m.Err(), m.View())
	}
}

func TestWindowSizeCapsBar(t *testing.T) {
	m := NewModel(10, nil)
	m.Update(tea.WindowSizeMsg{Width: 200, Height: 40})
	if m.bar.Width != maxBarWidth {
		t.Fatalf("expected capped width, got %d", m.bar.Width)
	}
	m.Update(tea.WindowSizeMsg{Width: 30, Height: 40})
	if m.bar.Width != 30-padding*2 {
		t.Fatalf("unexpected width %d", m.bar.Width)
	}
}
