package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tplx/internal/completion"
)

func (m *Model) renderHeader() string {
	name := m.path
	if name == "" {
		name = "[scratch]"
	}
	if m.dirty {
		name += " *"
	}
	var catalog string
	switch m.session.CatalogStatus() {
	case completion.CatalogPending:
		catalog = "loading custom fields…"
	case completion.CatalogFailed:
		catalog = fmt.Sprintf("%d placeholders (static)", m.session.Catalog().Len())
	default:
		catalog = fmt.Sprintf("%d placeholders", m.session.Catalog().Len())
	}
	left := m.theme.Accent.Render("tplx") + " " + m.theme.Text.Render(name)
	right := m.theme.Muted.Render(catalog)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// displayLine replaces tabs so that every rune has a stable cell width.
func displayLine(s string) string {
	return strings.ReplaceAll(s, "\t", " ")
}

func (m *Model) renderBody() []string {
	h := m.bodyHeight()
	lines := strings.Split(m.buffer, "\n")
	curLine := cursorLine(m.buffer, m.cursor)
	curCol := m.cursor - lineStart(m.buffer, m.cursor)

	// raw keeps the unstyled text so the dropdown can be cut into it.
	raw := make([]string, h)
	out := make([]string, h)
	for row := 0; row < h; row++ {
		idx := m.top + row
		if idx >= len(lines) {
			raw[row] = "~"
			out[row] = m.theme.Muted.Render(raw[row])
			continue
		}
		raw[row] = runewidth.Truncate(displayLine(lines[idx]), m.width, "")
		out[row] = m.theme.Text.Render(raw[row])
		if idx == curLine && m.pendingCursor < 0 {
			out[row] = m.renderCursorLine(lines[idx], curCol)
		}
	}

	m.overlayDropdown(out, raw)
	return out
}

func (m *Model) renderCursorLine(line string, col int) string {
	before := displayLine(line[:col])
	rest := displayLine(line[col:])
	under := " "
	after := ""
	if rest != "" {
		r := []rune(rest)
		under = string(r[0])
		after = string(r[1:])
	}
	beforeW := runewidth.StringWidth(before)
	if beforeW >= m.width {
		// Keep the cursor on screen by showing the tail of the line.
		before = runewidth.TruncateLeft(before, beforeW-m.width+1, "")
		beforeW = runewidth.StringWidth(before)
	}
	after = runewidth.Truncate(after, max(m.width-beforeW-runewidth.StringWidth(under), 0), "")
	return m.theme.Text.Render(before) + m.theme.Cursor.Render(under) + m.theme.Text.Render(after)
}

// overlayDropdown draws the candidate box below the trigger line, or above it
// when there is no room below.
func (m *Model) overlayDropdown(out, raw []string) {
	d := m.session.Dropdown()
	if !d.Visible {
		return
	}
	box := strings.Split(m.theme.Dropdown.Render(strings.Join(m.dropdownRows(d), "\n")), "\n")
	boxW := 0
	for _, l := range box {
		boxW = max(boxW, lipgloss.Width(l))
	}

	anchorRow := d.Anchor.Line - m.top
	start := anchorRow + 1
	if start+len(box) > len(out) && anchorRow-len(box) >= 0 {
		start = anchorRow - len(box)
	}
	lineText := strings.Split(m.buffer, "\n")
	col := d.Anchor.DisplayColumn
	if d.Anchor.Line < len(lineText) {
		prefix := lineText[d.Anchor.Line][:min(d.Anchor.Column, len(lineText[d.Anchor.Line]))]
		col = runewidth.StringWidth(displayLine(prefix))
	}
	if col+boxW > m.width {
		col = max(m.width-boxW, 0)
	}

	for i, l := range box {
		row := start + i
		if row < 0 || row >= len(out) {
			continue
		}
		base := runewidth.FillRight(runewidth.Truncate(raw[row], col, ""), col)
		out[row] = base + l
	}
}

// dropdownRows lists category headers and candidates, windowed to at most
// maxVisible candidates around the selection.
func (m *Model) dropdownRows(d completion.Dropdown) []string {
	total := 0
	valueW := 0
	for _, g := range d.Groups {
		total += len(g.Items)
		for _, t := range g.Items {
			valueW = max(valueW, runewidth.StringWidth(t.Value))
		}
	}
	start := 0
	if d.Selected >= m.maxVisible {
		start = d.Selected - m.maxVisible + 1
	}
	end := min(total, start+m.maxVisible)

	var rows []string
	for _, g := range d.Groups {
		header := false
		for i, tok := range g.Items {
			idx := g.Indices[i]
			if idx < start || idx >= end {
				continue
			}
			if !header {
				rows = append(rows, m.theme.Category.Render(g.Category))
				header = true
			}
			value := runewidth.FillRight(tok.Value, valueW)
			if idx == d.Selected {
				rows = append(rows, m.theme.Selected.Render("› "+value+"  "+tok.Description))
				continue
			}
			rows = append(rows, "  "+m.theme.Text.Render(value)+"  "+m.theme.Muted.Render(tok.Description))
		}
	}
	rows = append(rows, m.theme.Muted.Render(fmt.Sprintf("%d/%d  tab insert · esc dismiss", d.Selected+1, total)))
	return rows
}

func (m *Model) renderFooter() string {
	status := m.status
	if status == "" {
		if trig := m.session.State(); trig.Active {
			status = fmt.Sprintf("matching %q", trig.Trigger.Term)
		}
	}
	style := m.theme.StatusSuccess
	if m.statusErr {
		style = m.theme.StatusError
	}
	statusLine := style.Render(runewidth.Truncate(status, m.width, "…"))
	if m.showHelp {
		return statusLine + "\n" + m.help.FullHelpView(m.keys.FullHelp())
	}
	return statusLine + "\n" + m.help.ShortHelpView(m.keys.ShortHelp())
}
