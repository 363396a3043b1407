package style

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Align controls cell alignment within a column.
type Align int

// Column alignments.
const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Column describes one table column.
type Column struct {
	Name  string
	Width int
	Align Align
}

// Table renders fixed-width rows with a bold header.
type Table struct {
	cols      []Column
	rows      [][]string
	indent    string
	separator bool
}

// NewTable returns a table with the given columns.
func NewTable(cols ...Column) *Table {
	return &Table{cols: cols, indent: "  ", separator: true}
}

// SetIndent sets the prefix written before every line.
func (t *Table) SetIndent(s string) { t.indent = s }

// SetHeaderSeparator toggles the rule under the header.
func (t *Table) SetHeaderSeparator(on bool) { t.separator = on }

// AddRow appends a row; missing trailing cells render blank.
func (t *Table) AddRow(vals ...string) {
	row := make([]string, len(t.cols))
	copy(row, vals)
	t.rows = append(t.rows, row)
}

// Render returns the table, or "" when it has no columns.
func (t *Table) Render() string {
	if len(t.cols) == 0 {
		return ""
	}
	var b strings.Builder

	header := make([]string, len(t.cols))
	total := 0
	for i, c := range t.cols {
		name := fit(c.Name, c.Width)
		header[i] = t.pad(name, Bold.Render(name), c.Width, c.Align)
		total += c.Width
	}
	total += 2 * (len(t.cols) - 1)
	b.WriteString(t.indent + strings.Join(header, "  ") + "\n")

	if t.separator {
		b.WriteString(t.indent + Dim.Render(strings.Repeat("─", total)) + "\n")
	}

	for _, row := range t.rows {
		cells := make([]string, len(t.cols))
		for i, c := range t.cols {
			plain := fit(stripAnsi(row[i]), c.Width)
			styled := plain
			if plain == stripAnsi(row[i]) {
				styled = row[i] // keep caller styling when nothing was cut
			}
			cells[i] = t.pad(plain, styled, c.Width, c.Align)
		}
		b.WriteString(t.indent + strings.Join(cells, "  ") + "\n")
	}
	return b.String()
}

// pad aligns styled within width, measuring by its plain text.
func (t *Table) pad(plain, styled string, width int, align Align) string {
	gap := width - utf8.RuneCountInString(plain)
	if gap <= 0 {
		return styled
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + styled
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + styled + strings.Repeat(" ", gap-left)
	default:
		return styled + strings.Repeat(" ", gap)
	}
}

// fit truncates s to width runes, ending in "..." when cut.
func fit(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}
