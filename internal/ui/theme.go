package ui

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/tplx/internal/config"
)

// Theme holds the styles the editor renders with.
type Theme struct {
	Text          lipgloss.Style
	Muted         lipgloss.Style
	Accent        lipgloss.Style
	Category      lipgloss.Style
	Selected      lipgloss.Style
	Cursor        lipgloss.Style
	Dropdown      lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
}

// ThemeFromConfig builds styles from configured colors. With noColor only
// text attributes (reverse, bold) are kept.
func ThemeFromConfig(tc config.ThemeConfig, noColor bool) Theme {
	fg := func(c config.ColorValue) lipgloss.Style {
		s := lipgloss.NewStyle()
		if v := strings.TrimSpace(string(c)); v != "" && !noColor {
			s = s.Foreground(lipgloss.Color(v))
		}
		return s
	}

	selected := lipgloss.NewStyle().Bold(true)
	if noColor || tc.SelectedBG == "" {
		selected = selected.Reverse(true)
	} else {
		selected = selected.Background(lipgloss.Color(string(tc.SelectedBG)))
		if tc.SelectedFG != "" {
			selected = selected.Foreground(lipgloss.Color(string(tc.SelectedFG)))
		}
	}

	dropdown := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	if !noColor && tc.Border != "" {
		dropdown = dropdown.BorderForeground(lipgloss.Color(string(tc.Border)))
	}

	return Theme{
		Text:          fg(tc.Text),
		Muted:         fg(tc.Muted),
		Accent:        fg(tc.Accent).Bold(true),
		Category:      fg(tc.Category).Bold(true),
		Selected:      selected,
		Cursor:        lipgloss.NewStyle().Reverse(true),
		Dropdown:      dropdown,
		StatusError:   fg(tc.StatusError),
		StatusSuccess: fg(tc.StatusSuccess),
	}
}

// PlainTheme renders without colors; used for snapshots and tests.
func PlainTheme() Theme {
	return ThemeFromConfig(config.ThemeConfig{}, true)
}
