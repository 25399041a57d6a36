package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionMoveDownClamps(t *testing.T) {
	for n := 1; n <= 5; n++ {
		var s Selection
		s.Reset(n)
		for i := 0; i < n*3; i++ {
			s.MoveDown()
			assert.LessOrEqual(t, s.Index(), n-1)
		}
		assert.Equal(t, n-1, s.Index())
	}
}

func TestSelectionMoveUpClamps(t *testing.T) {
	var s Selection
	s.Reset(4)
	s.Hover(3)
	for i := 0; i < 10; i++ {
		s.MoveUp()
		assert.GreaterOrEqual(t, s.Index(), 0)
	}
	assert.Equal(t, 0, s.Index())
}

func TestSelectionResetAndHover(t *testing.T) {
	var s Selection
	s.Reset(3)
	s.MoveDown()
	s.MoveDown()
	assert.Equal(t, 2, s.Index())

	s.Reset(3)
	assert.Equal(t, 0, s.Index())

	assert.True(t, s.Hover(1))
	assert.Equal(t, 1, s.Index())
	assert.False(t, s.Hover(3))
	assert.False(t, s.Hover(-1))
	assert.Equal(t, 1, s.Index())
}

func TestSelectionEmptyList(t *testing.T) {
	var s Selection
	s.Reset(0)
	s.MoveDown()
	s.MoveUp()
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, 0, s.Size())
	assert.False(t, s.Hover(0))

	s.Reset(-2)
	assert.Equal(t, 0, s.Size())
}
