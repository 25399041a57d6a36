package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// ApplyStartupKeys feeds keypresses to m before the program starts. Tokens
// are literal text or Vim-like keys ("<Tab>", "<Esc>", "<C-s>"); a leading
// backslash forces the whole token to be literal. Cursor restores scheduled
// by commits are settled after every key.
func ApplyStartupKeys(m *Model, keys []string) {
	if m == nil {
		return
	}
	for _, raw := range keys {
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, `\`) {
			pressText(m, strings.TrimPrefix(raw, `\`))
			continue
		}
		for _, seg := range parseTokenSegments(raw) {
			if !seg.isKey {
				pressText(m, seg.text)
				continue
			}
			msgs, ok := keyMsgsFromToken(seg.text)
			if !ok {
				pressText(m, seg.text)
				continue
			}
			for _, msg := range msgs {
				press(m, msg)
			}
		}
	}
}

func pressText(m *Model, text string) {
	for _, r := range text {
		if r == '\n' {
			press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
			continue
		}
		press(m, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func press(m *Model, msg tea.KeyPressMsg) {
	_, cmd := m.Update(msg)
	if cmd == nil {
		return
	}
	if restore, ok := runIfRestore(cmd); ok {
		m.Update(restore)
	}
}

// runIfRestore runs cmd and reports whether it produced a cursor restore.
// Anything else is dropped: startup keys run before the program exists.
func runIfRestore(cmd tea.Cmd) (cursorRestoreMsg, bool) {
	msg := cmd()
	restore, ok := msg.(cursorRestoreMsg)
	return restore, ok
}

type tokenSegment struct {
	text  string
	isKey bool
}

// parseTokenSegments splits "<Tab>abc<Esc>" into key and text segments.
func parseTokenSegments(token string) []tokenSegment {
	var segments []tokenSegment
	remaining := token
	for remaining != "" {
		open := strings.Index(remaining, "<")
		if open == -1 {
			segments = append(segments, tokenSegment{text: remaining})
			break
		}
		if open > 0 {
			segments = append(segments, tokenSegment{text: remaining[:open]})
		}
		closeIdx := strings.Index(remaining[open:], ">")
		if closeIdx == -1 {
			segments = append(segments, tokenSegment{text: remaining[open:]})
			break
		}
		segments = append(segments, tokenSegment{text: remaining[open : open+closeIdx+1], isKey: true})
		remaining = remaining[open+closeIdx+1:]
	}
	return segments
}

// keyMsgsFromToken maps "<Esc>", "<CR>", "<Tab>", "<BS>", "<Del>", arrows,
// "<Home>", "<End>", "<Space>", "<F1>" and "<C-x>" to key presses.
func keyMsgsFromToken(token string) ([]tea.KeyPressMsg, bool) {
	if !strings.HasPrefix(token, "<") || !strings.HasSuffix(token, ">") {
		return nil, false
	}
	inner := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">"))
	switch inner {
	case "esc", "escape", "c-[":
		return []tea.KeyPressMsg{{Code: tea.KeyEscape}}, true
	case "cr", "enter", "return":
		return []tea.KeyPressMsg{{Code: tea.KeyEnter}}, true
	case "tab":
		return []tea.KeyPressMsg{{Code: tea.KeyTab}}, true
	case "space":
		return []tea.KeyPressMsg{{Code: ' ', Text: " "}}, true
	case "bs", "backspace":
		return []tea.KeyPressMsg{{Code: tea.KeyBackspace}}, true
	case "del", "delete":
		return []tea.KeyPressMsg{{Code: tea.KeyDelete}}, true
	case "left":
		return []tea.KeyPressMsg{{Code: tea.KeyLeft}}, true
	case "right":
		return []tea.KeyPressMsg{{Code: tea.KeyRight}}, true
	case "up":
		return []tea.KeyPressMsg{{Code: tea.KeyUp}}, true
	case "down":
		return []tea.KeyPressMsg{{Code: tea.KeyDown}}, true
	case "home":
		return []tea.KeyPressMsg{{Code: tea.KeyHome}}, true
	case "end":
		return []tea.KeyPressMsg{{Code: tea.KeyEnd}}, true
	case "f1":
		return []tea.KeyPressMsg{{Code: tea.KeyF1}}, true
	case "lt":
		return []tea.KeyPressMsg{{Code: '<', Text: "<"}}, true
	}
	if strings.HasPrefix(inner, "c-") && len(inner) == 3 {
		return []tea.KeyPressMsg{{Code: rune(inner[2]), Mod: tea.ModCtrl}}, true
	}
	return nil, false
}
