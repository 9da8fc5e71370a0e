package tui

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/unformat/shredder/internal/engine"
	"github.com/unformat/shredder/internal/session"
)

// ErrNotTerminal is returned when stdout is not interactive.
var ErrNotTerminal = errors.New("tui: stdout is not a terminal")

// Run starts the interactive UI. When path is non-empty the file is loaded
// immediately.
func Run(eng *engine.Engine, path string, opts ...Option) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotTerminal
	}

	var prog atomic.Pointer[tea.Program]
	sess := session.New(eng, session.WithListener(func(e session.LogEntry) {
		if p := prog.Load(); p != nil {
			p.Send(logMsg(e))
		}
	}))

	m := NewModel(sess, append([]Option{WithPrefs(LoadPrefs())}, opts...)...)
	var start tea.Cmd
	if path != "" {
		start = m.Load(path)
	}
	p := tea.NewProgram(startModel{Model: m, start: start}, tea.WithAltScreen())
	prog.Store(p)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// startModel runs an extra command alongside Init.
type startModel struct {
	Model
	start tea.Cmd
}

func (s startModel) Init() tea.Cmd {
	return tea.Batch(s.Model.Init(), s.start)
}
