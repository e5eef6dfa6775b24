// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/patchctl/patchctl/internal/series"
)

// SelectPatch runs a minimal picker over the series entries and returns the
// chosen one, or nil if the user bailed out.
func SelectPatch(items []series.Entry) *series.Entry {
	p := tea.NewProgram(model{items: items})
	m, _ := p.Run()
	return m.(model).selected
}

type model struct {
	items    []series.Entry
	cursor   int
	selected *series.Entry
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "w":
			return m, tea.WindowSize()
		case "q", "esc":
			m.selected = nil
			return m, tea.Quit
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter", " ":
			if len(m.items) > 0 {
				e := m.items[m.cursor]
				m.selected = &e
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	s := "Select a patch:\n\n"
	for i, e := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %3d %s %s\n", cursor, i+1, e.Name, humanize.Bytes(uint64(e.Size)))
	}
	return s + "\nENTER: view, Q/ESCAPE: quit\n"
}
