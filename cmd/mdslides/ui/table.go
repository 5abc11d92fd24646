package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders static rows with aligned columns.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given title and headers.
func NewTable(title string, headers ...string) *Table {
	return &Table{Title: title, Headers: headers}
}

// AddRow appends a row. Cells beyond the header count are dropped.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// View renders the table. An empty table renders as "".
func (t *Table) View(styles Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	total := len(widths) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	header := styles.Bold.Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	sep := styles.Muted.Render("│")

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title) + "\n")
	}

	cols := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		cols[i] = header.Width(widths[i]).Render(h)
	}
	sb.WriteString(strings.Join(cols, sep) + "\n")
	sb.WriteString(styles.RenderDivider(total) + "\n")

	for _, row := range t.Rows {
		cols = cols[:0]
		for i := range t.Headers {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			cols = append(cols, cell.Width(widths[i]).Render(v))
		}
		sb.WriteString(strings.Join(cols, sep) + "\n")
	}
	return sb.String()
}
