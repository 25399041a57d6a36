// Package formatter renders catalog listings for the terminal: a columnar
// table and a category tree.
package formatter

import (
	"image/color"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

const (
	sepWidth      = 2
	minColWidth   = 3
	maxColWidth   = 48
	fallbackWidth = 120
)

// TableColors controls the rendered colors. Nil fields use the defaults.
type TableColors struct {
	Header    color.Color
	Key       color.Color
	Value     color.Color
	Separator color.Color
}

// TableOptions configures RenderTable.
type TableOptions struct {
	// Width is the total width available. Zero means 120 columns.
	Width int
	// RowNumbers prefixes every row with its 1-based position.
	RowNumbers bool
	NoColor    bool
	Colors     TableColors
}

type tableStyles struct {
	header, key, value, separator lipgloss.Style
}

func newTableStyles(tc TableColors) tableStyles {
	pick := func(c color.Color, def string) color.Color {
		if c != nil {
			return c
		}
		return lipgloss.Color(def)
	}
	return tableStyles{
		header:    lipgloss.NewStyle().Bold(true).Foreground(pick(tc.Header, "12")),
		key:       lipgloss.NewStyle().Foreground(pick(tc.Key, "14")),
		value:     lipgloss.NewStyle().Foreground(pick(tc.Value, "248")),
		separator: lipgloss.NewStyle().Foreground(pick(tc.Separator, "240")),
	}
}

// RenderTable renders rows under the given column headers. The first column
// is styled as the key column. Columns shrink proportionally when the table
// is wider than opts.Width, and overflowing cells end in an ellipsis.
func RenderTable(columns []string, rows [][]string, opts TableOptions) string {
	if len(columns) == 0 {
		return ""
	}
	total := opts.Width
	if total <= 0 {
		total = fallbackWidth
	}
	st := newTableStyles(opts.Colors)

	numWidth := 0
	if opts.RowNumbers {
		numWidth = len(strconv.Itoa(len(rows)))
		if numWidth < 1 {
			numWidth = 1
		}
		total -= numWidth + sepWidth
	}
	widths := columnWidths(columns, rows, total)

	render := func(s lipgloss.Style, text string) string {
		if opts.NoColor {
			return text
		}
		return s.Render(text)
	}
	sep := strings.Repeat(" ", sepWidth)

	var b strings.Builder
	var parts []string
	if opts.RowNumbers {
		parts = append(parts, render(st.header, padRight("#", numWidth)))
	}
	for i, col := range columns {
		parts = append(parts, render(st.header, padRight(truncate(col, widths[i]), widths[i])))
	}
	b.WriteString(strings.TrimRight(strings.Join(parts, sep), " ") + "\n")

	lineWidth := sumWidths(widths) + sepWidth*(len(widths)-1)
	if opts.RowNumbers {
		lineWidth += numWidth + sepWidth
	}
	b.WriteString(render(st.separator, strings.Repeat("─", lineWidth)) + "\n")

	for r, row := range rows {
		parts = parts[:0]
		if opts.RowNumbers {
			parts = append(parts, render(st.key, padLeft(strconv.Itoa(r+1), numWidth)))
		}
		for i := range columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cell = padRight(truncate(flatten(cell), widths[i]), widths[i])
			if i == 0 {
				parts = append(parts, render(st.key, cell))
			} else {
				parts = append(parts, render(st.value, cell))
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, sep), " ") + "\n")
	}
	return b.String()
}

// columnWidths sizes every column to its widest cell, caps long columns, and
// shrinks proportionally when the total still exceeds available.
func columnWidths(columns []string, rows [][]string, available int) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = runewidth.StringWidth(col)
	}
	for _, row := range rows {
		for i := range columns {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(flatten(row[i])))
			}
		}
	}

	usable := available - sepWidth*(len(columns)-1)
	if usable <= 0 || sumWidths(widths) <= usable {
		return widths
	}
	for i := range widths {
		widths[i] = min(widths[i], maxColWidth)
	}
	if sumWidths(widths) <= usable {
		return widths
	}

	orig := sumWidths(widths)
	for i := range widths {
		widths[i] = max(minColWidth, widths[i]*usable/orig)
	}
	for sumWidths(widths) > usable {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColWidth {
			break
		}
		widths[widest]--
	}
	return widths
}

func sumWidths(ws []int) int {
	n := 0
	for _, w := range ws {
		n += w
	}
	return n
}

// flatten keeps multi-line cells on one row.
func flatten(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(s)
}

func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width < 2 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "…")
}

func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func padLeft(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}
