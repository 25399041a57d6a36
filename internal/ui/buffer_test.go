package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeleteBeforeMultibyte(t *testing.T) {
	buf, cur := deleteBefore("Grüß", len("Grüß"))
	assert.Equal(t, "Grü", buf)
	assert.Equal(t, len("Grü"), cur)

	buf, cur = deleteBefore("abc", 0)
	assert.Equal(t, "abc", buf)
	assert.Equal(t, 0, cur)
}

func TestDeleteAfter(t *testing.T) {
	assert.Equal(t, "bc", deleteAfter("äbc", 0))
	assert.Equal(t, "abc", deleteAfter("abc", 3))
}

func TestMoveLeftRight(t *testing.T) {
	s := "aé"
	assert.Equal(t, 1, moveLeft(s, len(s)))
	assert.Equal(t, len(s), moveRight(s, 1))
	assert.Equal(t, 0, moveLeft(s, 0))
	assert.Equal(t, len(s), moveRight(s, len(s)))
}

func TestMoveUpDownKeepsColumn(t *testing.T) {
	s := "first line\nab\nthird line"
	// From column 5 on line 0 down to the short line clamps to its end.
	assert.Equal(t, 13, moveDown(s, 5))
	// From column 2 on line 1 down to line 2 keeps column 2.
	assert.Equal(t, 16, moveDown(s, 13))
	assert.Equal(t, 2, moveUp(s, 13))
	assert.Equal(t, 3, moveUp(s, 3), "first line stays")
	assert.Equal(t, 20, moveDown(s, 20), "last line stays")
}

func TestLineBounds(t *testing.T) {
	s := "ab\ncd\nef"
	assert.Equal(t, 3, lineStart(s, 4))
	assert.Equal(t, 5, lineEnd(s, 4))
	assert.Equal(t, 8, lineEnd(s, 7))
	assert.Equal(t, 2, cursorLine(s, 7))
}
