package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnchorFor(t *testing.T) {
	tests := []struct {
		name   string
		buffer string
		start  int
		want   Anchor
	}{
		{name: "first line", buffer: "Dear {{cli", start: 5, want: Anchor{Line: 0, Column: 5, DisplayColumn: 5}},
		{name: "third line", buffer: "Hello\n\nPay {{am", start: 11, want: Anchor{Line: 2, Column: 4, DisplayColumn: 4}},
		{name: "start of line", buffer: "a\n{{", start: 2, want: Anchor{Line: 1, Column: 0, DisplayColumn: 0}},
		{name: "wide runes", buffer: "日本 {{x", start: 7, want: Anchor{Line: 0, Column: 7, DisplayColumn: 5}},
		{name: "clamped", buffer: "ab", start: 9, want: Anchor{Line: 0, Column: 2, DisplayColumn: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnchorFor(tt.buffer, tt.start))
		})
	}
}
