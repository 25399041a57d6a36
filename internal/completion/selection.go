package completion

// Selection is a bounded index into a filtered list. Moves clamp at both ends
// and never wrap.
type Selection struct {
	index int
	size  int
}

// Reset points the selection at the first of size items.
func (s *Selection) Reset(size int) {
	if size < 0 {
		size = 0
	}
	s.size = size
	s.index = 0
}

// MoveDown advances the selection, stopping at the last item.
func (s *Selection) MoveDown() {
	if s.index < s.size-1 {
		s.index++
	}
}

// MoveUp retreats the selection, stopping at the first item.
func (s *Selection) MoveUp() {
	if s.index > 0 {
		s.index--
	}
}

// Hover selects index i directly. Out-of-range indexes are ignored.
func (s *Selection) Hover(i int) bool {
	if i < 0 || i >= s.size {
		return false
	}
	s.index = i
	return true
}

// Index returns the selected position. It is meaningless when Size is 0.
func (s Selection) Index() int { return s.index }

// Size returns the length of the list the selection ranges over.
func (s Selection) Size() int { return s.size }
