package completion

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Catalog is an immutable, deduplicated token set with lookup helpers.
// Token order is the order BuildCatalog produced; it is never re-sorted.
type Catalog struct {
	tokens        []Token
	byValue       map[string]int // value -> index into tokens
	categoryOrder []string
	version       string
}

// NewCatalog wraps tokens in a Catalog. Duplicate values keep the first entry.
func NewCatalog(tokens []Token) *Catalog {
	c := &Catalog{
		tokens:        make([]Token, 0, len(tokens)),
		byValue:       make(map[string]int, len(tokens)),
		categoryOrder: defaultCategoryOrder,
	}
	for _, t := range tokens {
		if _, exists := c.byValue[t.Value]; exists {
			continue
		}
		c.byValue[t.Value] = len(c.tokens)
		c.tokens = append(c.tokens, t)
	}
	c.version = CatalogVersion(c.tokens)
	return c
}

// NewMergedCatalog builds a catalog from the static list and custom fields.
func NewMergedCatalog(static []Token, fields []CustomField) *Catalog {
	return NewCatalog(BuildCatalog(static, fields))
}

// CatalogVersion returns a stable fingerprint of the token set, used as an
// HTTP ETag and as a log field.
func CatalogVersion(tokens []Token) string {
	h := xxhash.New()
	for _, t := range tokens {
		_, _ = h.WriteString(t.Value)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(t.Description)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(t.Category)
		_, _ = h.WriteString("\x1e")
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// Tokens returns a copy of all tokens in catalog order.
func (c *Catalog) Tokens() []Token {
	if c == nil {
		return nil
	}
	return append([]Token(nil), c.tokens...)
}

// Len returns the number of tokens.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tokens)
}

// Version returns the catalog fingerprint.
func (c *Catalog) Version() string {
	if c == nil {
		return CatalogVersion(nil)
	}
	return c.version
}

// Lookup returns the token with the given value. Bare identifiers are accepted.
func (c *Catalog) Lookup(value string) (Token, bool) {
	if c == nil {
		return Token{}, false
	}
	if !strings.HasPrefix(value, TriggerOpen) {
		value = Wrap(Identifier(value))
	}
	idx, ok := c.byValue[value]
	if !ok {
		return Token{}, false
	}
	return c.tokens[idx], true
}

// Search returns tokens matching term (see Filter).
func (c *Catalog) Search(term string) []Token {
	if c == nil {
		return nil
	}
	return Filter(c.tokens, term)
}

// Categories returns the categories that contain tokens: known categories in
// display order first, then any others in first-seen order.
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	present := make(map[string]bool)
	var discovered []string
	for _, t := range c.tokens {
		if !present[t.Category] {
			present[t.Category] = true
			discovered = append(discovered, t.Category)
		}
	}
	result := make([]string, 0, len(discovered))
	known := make(map[string]bool, len(c.categoryOrder))
	for _, cat := range c.categoryOrder {
		known[cat] = true
		if present[cat] {
			result = append(result, cat)
		}
	}
	for _, cat := range discovered {
		if !known[cat] {
			result = append(result, cat)
		}
	}
	return result
}

// CategoryCount returns the number of tokens in a category.
func (c *Catalog) CategoryCount(category string) int {
	n := 0
	if c == nil {
		return n
	}
	for _, t := range c.tokens {
		if t.Category == category {
			n++
		}
	}
	return n
}
