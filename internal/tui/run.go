package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"kraken-console/internal/assistant"
)

// Result carries what the caller needs after the program exits.
type Result struct {
	History []assistant.Message
}

// Run wraps the Bubble Tea entry point.
func Run(opts Options) (Result, error) {
	program := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithMouseAllMotion())
	m, err := program.Run()
	if err != nil {
		return Result{}, err
	}
	tuiModel, ok := m.(*Model)
	if !ok {
		return Result{}, errors.New("unexpected tui model")
	}
	return Result{History: tuiModel.History()}, nil
}
