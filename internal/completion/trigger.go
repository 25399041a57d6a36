package completion

import "strings"

// Trigger is an open, unterminated placeholder before the cursor.
type Trigger struct {
	Start int    `json:"triggerStart"` // Offset of the opening "{{"
	Term  string `json:"searchTerm"`   // Text typed since the trigger, up to the cursor
}

// DetectTrigger reports whether an open "{{" precedes cursor. Only the rightmost
// "{{" in buffer[:cursor] is considered; if a "}}" follows it before the cursor
// the placeholder is complete and there is no trigger.
//
// The result is a pure function of (buffer, cursor). A cursor outside the buffer
// is clamped.
func DetectTrigger(buffer string, cursor int) (Trigger, bool) {
	prefix := buffer[:clampOffset(buffer, cursor)]
	start := strings.LastIndex(prefix, TriggerOpen)
	if start < 0 {
		return Trigger{}, false
	}
	tail := prefix[start+len(TriggerOpen):]
	if strings.Contains(tail, TriggerClose) {
		return Trigger{}, false
	}
	return Trigger{Start: start, Term: tail}, true
}
