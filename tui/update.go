package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexcodex/crumb/breadcrumbs"
)

// Init fulfills the Bubble Tea Model interface.
func (m Model) Init() tea.Cmd {
	m.control.Update()
	return textinput.Blink
}

// Update applies incoming Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil
	case RefreshMsg:
		m.control.Update()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, tea.Quit
		}
		if m.overlayPicker() != nil {
			return m.handleOverlayKey(msg)
		}
		return m.handleBarKey(msg)
	}
	return m, nil
}

// handleBarKey drives focus along the bar and opens selections.
func (m Model) handleBarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	focused := m.control.Focused()
	switch msg.String() {
	case "left", "h":
		m.control.Focus(focused - 1)
	case "right", "l":
		m.control.Focus(focused + 1)
	case "enter":
		if focused >= 0 {
			gesture := breadcrumbs.Gesture{Reveal: msg.Alt}
			_ = m.control.Select(focused, gesture)
			m.filter.SetValue("")
			m.cursor = 0
		}
	case "r":
		m.control.Update()
	}
	return m, nil
}

// handleOverlayKey drives the open picker: filter text, row movement, pick,
// dismiss.
func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.overlayPicker()
	switch msg.String() {
	case "esc":
		p.Blur()
		return m, nil
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down":
		if m.cursor < len(p.Rows())-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		index := m.cursor
		if m.filter.Value() != "" {
			index = p.BestMatch()
		}
		p.Pick(context.Background(), index)
		m.filter.SetValue("")
		m.cursor = 0
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	p.SetFilter(m.filter.Value())
	if rows := len(p.Rows()); m.cursor >= rows {
		m.cursor = 0
	}
	return m, cmd
}
