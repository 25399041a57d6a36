package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectTrigger(t *testing.T) {
	tests := []struct {
		name   string
		buffer string
		cursor int
		want   Trigger
		ok     bool
	}{
		{name: "no trigger", buffer: "Hello world", cursor: 11},
		{name: "single brace", buffer: "Hello {name", cursor: 11},
		{name: "closed placeholder before cursor", buffer: "Hello {{name}} wor", cursor: 18},
		{name: "search extraction", buffer: "Dear {{cli", cursor: 10, want: Trigger{Start: 5, Term: "cli"}, ok: true},
		{name: "rightmost trigger", buffer: "{{a}} and {{b", cursor: 13, want: Trigger{Start: 10, Term: "b"}, ok: true},
		{name: "empty term", buffer: "Hi {{", cursor: 5, want: Trigger{Start: 3, Term: ""}, ok: true},
		{name: "cursor inside closed placeholder", buffer: "Hi {{name}}", cursor: 7, want: Trigger{Start: 3, Term: "na"}, ok: true},
		{name: "text after cursor ignored", buffer: "Dear {{cl}} more", cursor: 9, want: Trigger{Start: 5, Term: "cl"}, ok: true},
		{name: "trigger after cursor ignored", buffer: "abc {{x", cursor: 3},
		{name: "triple brace uses rightmost pair", buffer: "{{{", cursor: 3, want: Trigger{Start: 1, Term: ""}, ok: true},
		{name: "term spans newline", buffer: "{{a\nb", cursor: 5, want: Trigger{Start: 0, Term: "a\nb"}, ok: true},
		{name: "cursor past end clamps", buffer: "{{ab", cursor: 99, want: Trigger{Start: 0, Term: "ab"}, ok: true},
		{name: "negative cursor clamps", buffer: "{{ab", cursor: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectTrigger(tt.buffer, tt.cursor)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectTriggerNoSpuriousTrigger(t *testing.T) {
	buffers := []string{"", "plain text", "a } b }} c", "{ { spaced", "ends with {"}
	for _, b := range buffers {
		for cursor := 0; cursor <= len(b); cursor++ {
			_, ok := DetectTrigger(b, cursor)
			assert.False(t, ok, "buffer %q cursor %d", b, cursor)
		}
	}
}

func TestDetectTriggerIsPure(t *testing.T) {
	buffer := "Dear {{client_na"
	first, ok1 := DetectTrigger(buffer, len(buffer))
	second, ok2 := DetectTrigger(buffer, len(buffer))
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}
