// Package limiter pages long catalog listings with --limit, --offset and
// --tail.
package limiter

import (
	"fmt"
)

// Config holds the paging parameters.
type Config struct {
	Limit  int // Show only this many entries (0 = unlimited)
	Offset int // Skip the first N entries
	Tail   int // Show only the last N entries; mutually exclusive with Limit
}

// Validate rejects negative values and a Limit combined with a Tail.
// Offset is ignored when Tail is set.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive reports whether any paging is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Bounds returns the half-open range [start, end) of a list of length n.
func (c Config) Bounds(n int) (start, end int) {
	if c.Tail > 0 {
		return max(n-c.Tail, 0), n
	}
	start = min(c.Offset, n)
	end = n
	if c.Limit > 0 {
		end = min(start+c.Limit, n)
	}
	return start, end
}

// Apply returns the configured window of items. The result shares the
// backing array of items.
func Apply[T any](c Config, items []T) []T {
	if !c.IsActive() {
		return items
	}
	start, end := c.Bounds(len(items))
	return items[start:end]
}

// Summary describes the window for a listing footer, e.g. "showing 3-5 of 29".
// It returns "" when paging is off or the window covers everything.
func (c Config) Summary(total int) string {
	if !c.IsActive() {
		return ""
	}
	start, end := c.Bounds(total)
	if start == 0 && end == total {
		return ""
	}
	if start == end {
		return fmt.Sprintf("showing 0 of %d", total)
	}
	return fmt.Sprintf("showing %d-%d of %d", start+1, end, total)
}
