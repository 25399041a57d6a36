package completion

import (
	"strings"

	runewidth "github.com/mattn/go-runewidth"
)

// Anchor is the logical position of a trigger, handed to the rendering layer.
// Pixel or cell placement is the host's job.
type Anchor struct {
	Line   int `json:"lineIndex"`    // Zero-based line of the trigger
	Column int `json:"columnOffset"` // Byte offset of the trigger from the start of its line
	// DisplayColumn is the terminal cell width of the line text before the
	// trigger, for hosts that draw on a character grid.
	DisplayColumn int `json:"displayColumn"`
}

// AnchorFor computes the anchor of the trigger starting at triggerStart.
func AnchorFor(buffer string, triggerStart int) Anchor {
	prefix := buffer[:clampOffset(buffer, triggerStart)]
	lineStart := strings.LastIndexByte(prefix, '\n') + 1
	return Anchor{
		Line:          strings.Count(prefix, "\n"),
		Column:        len(prefix) - lineStart,
		DisplayColumn: runewidth.StringWidth(prefix[lineStart:]),
	}
}
