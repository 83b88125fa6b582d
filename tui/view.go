package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/crumb/picker"
)

const separator = " › "

// View renders the bar, the overlay when a picker is open, and the status
// line.
func (m Model) View() string {
	if !m.ready {
		return ""
	}
	sections := []string{m.renderBar()}
	if p := m.overlayPicker(); p != nil {
		sections = append(sections, m.renderOverlay(p))
	}
	sections = append(sections, m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderBar() string {
	items := m.control.Items()
	if !m.control.Visible() || len(items) == 0 {
		return emptyStyle.Render("no active editor")
	}
	focused := m.control.Focused()
	parts := make([]string, 0, len(items))
	for i, el := range items {
		style := crumbStyle
		if i == focused {
			style = crumbFocusedStyle
		}
		parts = append(parts, style.Render(el.Label()))
	}
	return strings.Join(parts, separatorStyle.Render(separator))
}

func (m Model) renderOverlay(p *picker.Picker) string {
	var b strings.Builder
	b.WriteString(m.filter.View())
	b.WriteString("\n")
	rows := p.Rows()
	if len(rows) == 0 {
		b.WriteString(emptyStyle.Render("no matches"))
		return overlayBoxStyle.Render(b.String())
	}
	for i, row := range rows {
		style := rowStyle
		if i == m.cursor {
			style = rowSelectedStyle
		}
		indent := strings.Repeat("  ", row.Item.Depth)
		label := highlightMatches(row.Item.Label, row.Matched, style)
		line := indent + label
		if row.Item.Expandable {
			line += separatorStyle.Render(" ▸")
		}
		if row.Item.Detail != "" {
			line += " " + rowDetailStyle.Render(row.Item.Detail)
		}
		b.WriteString(line)
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return overlayBoxStyle.Render(b.String())
}

// highlightMatches underlines the filter-matched runes of a label.
func highlightMatches(label string, matched []int, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(label)
	}
	hits := make(map[int]bool, len(matched))
	for _, i := range matched {
		hits[i] = true
	}
	var b strings.Builder
	for i, r := range label {
		if hits[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

func (m Model) renderStatus() string {
	if m.sink == nil || m.resource == nil {
		return statusStyle.Render("ready")
	}
	res, ok := m.resource()
	if !ok {
		return statusStyle.Render("ready")
	}
	diags := m.sink.Get(res)
	var errs, warns int
	for _, d := range diags {
		switch d.Severity {
		case protocol.DiagnosticSeverity(1):
			errs++
		case protocol.DiagnosticSeverity(2):
			warns++
		}
	}
	parts := []string{statusStyle.Render(res.Filename())}
	if errs > 0 {
		parts = append(parts, statusErrorStyle.Render(fmt.Sprintf("✖ %d", errs)))
	}
	if warns > 0 {
		parts = append(parts, statusWarningStyle.Render(fmt.Sprintf("⚠ %d", warns)))
	}
	if errs == 0 && warns == 0 {
		parts = append(parts, statusStyle.Render("✓ clean"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
