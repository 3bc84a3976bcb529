package term

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dalemusser/barangayhub/internal/app/system/listquery"
	"github.com/dalemusser/barangayhub/internal/app/system/screens"
)

// maxColumnWidth caps a table column; longer cells are truncated.
const maxColumnWidth = 32

// Theme is the color palette of the browser.
type Theme struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Header    lipgloss.Style
	Cell      lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Flash     lipgloss.Style
}

// DefaultTheme suits dark terminals.
var DefaultTheme = Theme{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
	Tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245")),
	ActiveTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("25")),
	Header:    lipgloss.NewStyle().Bold(true).Underline(true),
	Cell:      lipgloss.NewStyle(),
	Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	Flash:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
}

// View implements tea.Model.
func (m Model) View() string {
	v := m.view
	var b strings.Builder

	title := m.theme.Title.Render(v.Title)
	if v.IsLoading {
		title += " " + m.spinner.View()
	}
	b.WriteString(title + "\n\n")

	b.WriteString(m.renderTabs(v) + "\n")
	b.WriteString(m.input.View() + "\n\n")

	switch {
	case v.Empty:
		b.WriteString(m.theme.Muted.Render(v.EmptyMessage) + "\n")
	case len(v.Rows) > 0:
		b.WriteString(renderTable(m.theme, v))
	case v.IsLoading:
		b.WriteString(m.theme.Muted.Render("Loading…") + "\n")
	}

	if v.IsError {
		b.WriteString("\n" + m.theme.Error.Render(v.Message+" Press r to retry.") + "\n")
	}

	b.WriteString("\n" + m.statusLine(v) + "\n")
	if m.flash != "" {
		b.WriteString(m.theme.Flash.Render(m.flash) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderTabs(v screens.View) string {
	parts := make([]string, 0, len(v.Tabs))
	for _, t := range v.Tabs {
		style := m.theme.Tab
		if t.Key == v.Filter {
			style = m.theme.ActiveTab
		}
		parts = append(parts, style.Render(t.Label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) statusLine(v screens.View) string {
	if v.TotalPages == 0 {
		return m.theme.Muted.Render("no records")
	}
	s := fmt.Sprintf("%d–%d of %d · page %d/%d", v.Range.Start, v.Range.End, v.TotalCount, v.Page, v.TotalPages)
	if !v.Sort.IsZero() {
		s += fmt.Sprintf(" · sorted by %s %s", v.Sort.By, arrow(v.Sort.Order))
	}
	return m.theme.Muted.Render(s)
}

func arrow(o listquery.SortOrder) string {
	if o == listquery.Descending {
		return "↓"
	}
	return "↑"
}

func renderTable(theme Theme, v screens.View) string {
	widths := make([]int, len(v.Columns))
	for i, c := range v.Columns {
		widths[i] = lipgloss.Width(c.Title)
	}
	for _, r := range v.Rows {
		for i, cell := range r.Cells {
			if i < len(widths) {
				widths[i] = max(widths[i], min(lipgloss.Width(cell), maxColumnWidth))
			}
		}
	}

	var b strings.Builder
	header := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		header[i] = theme.Header.Render(pad(c.Title, widths[i]))
	}
	b.WriteString(strings.Join(header, "  ") + "\n")

	for _, r := range v.Rows {
		cells := make([]string, len(widths))
		for i := range widths {
			var cell string
			if i < len(r.Cells) {
				cell = r.Cells[i]
			}
			cells[i] = theme.Cell.Render(pad(truncate(cell, widths[i]), widths[i]))
		}
		b.WriteString(strings.Join(cells, "  ") + "\n")
	}
	return b.String()
}

// truncate shortens s to width columns, ending in an ellipsis.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
