package app

import "github.com/kyaoi/arcview/internal/ui"

// LoadInitialState analyses the target path and prepares the UI state. A
// plain file target opens its directory with the file selected.
func LoadInitialState(nav *Navigator, target string) (ui.State, error) {
	item, err := nav.Open(target)
	if err != nil {
		return ui.State{}, err
	}

	state := ui.State{
		Current:     item,
		PanelWidth:  nav.cfg.PanelWidth,
		ShowDetails: true,
		Descend:     nav.Descend,
		Logger:      nav.logger,
	}
	if !item.IsDirectory() {
		if parent := item.Parent(); parent != nil {
			state.Current = parent
			state.SelectionName = item.Name()
		}
	}
	return state, nil
}
