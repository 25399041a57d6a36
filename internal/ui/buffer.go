package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Editing helpers over a UTF-8 buffer with a byte-offset cursor. Every helper
// keeps the cursor on a rune boundary.

func insertAt(buffer string, cursor int, text string) (string, int) {
	return buffer[:cursor] + text + buffer[cursor:], cursor + len(text)
}

func deleteBefore(buffer string, cursor int) (string, int) {
	if cursor == 0 {
		return buffer, cursor
	}
	_, size := utf8.DecodeLastRuneInString(buffer[:cursor])
	return buffer[:cursor-size] + buffer[cursor:], cursor - size
}

func deleteAfter(buffer string, cursor int) string {
	if cursor >= len(buffer) {
		return buffer
	}
	_, size := utf8.DecodeRuneInString(buffer[cursor:])
	return buffer[:cursor] + buffer[cursor+size:]
}

func moveLeft(buffer string, cursor int) int {
	if cursor == 0 {
		return 0
	}
	_, size := utf8.DecodeLastRuneInString(buffer[:cursor])
	return cursor - size
}

func moveRight(buffer string, cursor int) int {
	if cursor >= len(buffer) {
		return len(buffer)
	}
	_, size := utf8.DecodeRuneInString(buffer[cursor:])
	return cursor + size
}

func lineStart(buffer string, cursor int) int {
	return strings.LastIndexByte(buffer[:cursor], '\n') + 1
}

func lineEnd(buffer string, cursor int) int {
	if i := strings.IndexByte(buffer[cursor:], '\n'); i >= 0 {
		return cursor + i
	}
	return len(buffer)
}

// offsetAtColumn returns the offset on the line starting at start whose
// display column is closest to col without passing it.
func offsetAtColumn(buffer string, start, col int) int {
	end := lineEnd(buffer, start)
	width := 0
	for i, r := range buffer[start:end] {
		w := runewidth.RuneWidth(r)
		if width+w > col {
			return start + i
		}
		width += w
	}
	return end
}

func moveUp(buffer string, cursor int) int {
	start := lineStart(buffer, cursor)
	if start == 0 {
		return cursor
	}
	col := runewidth.StringWidth(buffer[start:cursor])
	return offsetAtColumn(buffer, lineStart(buffer, start-1), col)
}

func moveDown(buffer string, cursor int) int {
	end := lineEnd(buffer, cursor)
	if end == len(buffer) {
		return cursor
	}
	col := runewidth.StringWidth(buffer[lineStart(buffer, cursor):cursor])
	return offsetAtColumn(buffer, end+1, col)
}

// cursorLine returns the zero-based line index of cursor.
func cursorLine(buffer string, cursor int) int {
	return strings.Count(buffer[:cursor], "\n")
}
