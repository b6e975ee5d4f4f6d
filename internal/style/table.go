package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// tableIndent prefixes every rendered table line.
const tableIndent = "  "

// Alignment of a table column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Column describes one table column. Width is in terminal cells.
type Column struct {
	Name  string
	Width int
	Align Alignment
}

// Table renders the fixed-width list of processes that survived
// termination in the headless summary.
type Table struct {
	columns []Column
	rows    [][]string
}

// NewTable creates a table with the given columns.
func NewTable(columns ...Column) *Table {
	return &Table{columns: columns}
}

// AddRow appends a row, padding missing cells with "".
func (t *Table) AddRow(values ...string) *Table {
	row := make([]string, len(t.columns))
	copy(row, values)
	t.rows = append(t.rows, row)
	return t
}

// Render returns a bold header, a dim rule and one line per row, each
// ending in a newline. Cells wider than their column end in "...".
func (t *Table) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	var b strings.Builder
	cells := make([]string, len(t.columns))

	for i, c := range t.columns {
		plain := truncate(c.Name, c.Width)
		cells[i] = pad(Bold.Render(plain), plain, c.Width, c.Align)
	}
	writeLine(&b, cells)

	for i, c := range t.columns {
		cells[i] = Dim.Render(strings.Repeat("─", c.Width))
	}
	writeLine(&b, cells)

	for _, row := range t.rows {
		for i, c := range t.columns {
			plain := truncate(row[i], c.Width)
			cells[i] = pad(plain, plain, c.Width, c.Align)
		}
		writeLine(&b, cells)
	}
	return b.String()
}

func writeLine(b *strings.Builder, cells []string) {
	b.WriteString(tableIndent)
	b.WriteString(strings.TrimRight(strings.Join(cells, " "), " "))
	b.WriteByte('\n')
}

// pad aligns styled text within width, measuring the unstyled text.
func pad(styled, plain string, width int, align Alignment) string {
	gap := width - lipgloss.Width(plain)
	if gap <= 0 {
		return styled
	}
	if align == AlignRight {
		return strings.Repeat(" ", gap) + styled
	}
	return styled + strings.Repeat(" ", gap)
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 3 {
		return string(runes[:width])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
