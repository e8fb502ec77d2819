package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyaoi/arcview/internal/ui"
)

// Run executes the Bubble Tea program for the browser.
func Run(nav *Navigator, target string) error {
	state, err := LoadInitialState(nav, target)
	if err != nil {
		return err
	}
	return runProgram(state)
}

func runProgram(state ui.State) error {
	model := ui.NewModel(state)
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
