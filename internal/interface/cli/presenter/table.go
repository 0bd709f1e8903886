package presenter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders rows under a header with padded columns.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given title and headers.
func NewTable(title string, headers ...string) *Table {
	return &Table{Title: title, Headers: headers}
}

// AddRow appends a row. Missing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// View renders the table. An empty table renders the empty text instead.
func (t *Table) View(s Styles, empty string) string {
	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(s.Heading.Render(t.Title))
		sb.WriteString("\n")
	}
	if len(t.Rows) == 0 {
		sb.WriteString(s.Muted.Render(empty))
		sb.WriteString("\n")
		return sb.String()
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	cell := func(style lipgloss.Style, text string, i int) string {
		pad := widths[i] - lipgloss.Width(text)
		return style.Render(text) + strings.Repeat(" ", pad)
	}

	parts := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		parts[i] = cell(s.Bold, h, i)
	}
	sb.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		for i := range parts {
			text := ""
			if i < len(row) {
				text = row[i]
			}
			parts[i] = cell(s.Body, text, i)
		}
		sb.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		sb.WriteString("\n")
	}
	return sb.String()
}
