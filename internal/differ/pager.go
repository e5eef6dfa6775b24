// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	pagerTitleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	pagerInfoStyle  = lipgloss.NewStyle().Faint(true).Padding(0, 1)
)

// Page scrolls content in a full-screen viewport titled with name. It blocks
// until the user quits.
func Page(name, content string) error {
	p := tea.NewProgram(
		pagerModel{name: name, content: content},
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

type pagerModel struct {
	name    string
	content string
	ready   bool
	vp      viewport.Model
}

func (m pagerModel) Init() tea.Cmd { return nil }

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.vp.SetContent(m.content)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - headerHeight - footerHeight
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m pagerModel) View() string {
	if !m.ready {
		return "loading"
	}
	return fmt.Sprintf("%s\n%s\n%s", m.headerView(), m.vp.View(), m.footerView())
}

func (m pagerModel) headerView() string {
	return pagerTitleStyle.Render(m.name)
}

func (m pagerModel) footerView() string {
	scroll := fmt.Sprintf("%3.f%%", m.vp.ScrollPercent()*100)
	help := "Q/ESCAPE: quit"
	return pagerInfoStyle.Render(strings.Join([]string{scroll, help}, "  "))
}
