package completion

// Insertion is the buffer and cursor after a token was committed.
type Insertion struct {
	Buffer string `json:"buffer"`
	Cursor int    `json:"cursor"`
}

// Insert replaces buffer[triggerStart:cursor] with the token value and places
// the cursor right after it. Text before triggerStart and after cursor is kept
// byte for byte. Offsets outside the buffer are clamped, and a triggerStart past
// the cursor is treated as the cursor.
func Insert(buffer string, cursor, triggerStart int, tok Token) Insertion {
	cursor = clampOffset(buffer, cursor)
	triggerStart = clampOffset(buffer, triggerStart)
	if triggerStart > cursor {
		triggerStart = cursor
	}
	before := buffer[:triggerStart]
	after := buffer[cursor:]
	return Insertion{
		Buffer: before + tok.Value + after,
		Cursor: len(before) + len(tok.Value),
	}
}
