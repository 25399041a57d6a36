package completion

import "strings"

// Filter returns the tokens whose value or description contains term,
// case-insensitively, in catalog order. An empty term matches everything.
func Filter(catalog []Token, term string) []Token {
	result := make([]Token, 0, len(catalog))
	if term == "" {
		return append(result, catalog...)
	}
	query := strings.ToLower(term)
	for _, t := range catalog {
		if strings.Contains(strings.ToLower(t.Value), query) ||
			strings.Contains(strings.ToLower(t.Description), query) {
			result = append(result, t)
		}
	}
	return result
}

// Group is one category section of a filtered list.
type Group struct {
	Category string  `json:"category"`
	Items    []Token `json:"items"`
	// Indices holds the position of each item in the flat list, so a click on
	// a rendered row maps back to a selection index.
	Indices []int `json:"indices"`
}

// GroupByCategory partitions tokens by category, keeping first-seen category
// order and the original order inside each category.
func GroupByCategory(tokens []Token) []Group {
	var groups []Group
	pos := make(map[string]int)
	for i, t := range tokens {
		gi, ok := pos[t.Category]
		if !ok {
			gi = len(groups)
			pos[t.Category] = gi
			groups = append(groups, Group{Category: t.Category})
		}
		groups[gi].Items = append(groups[gi].Items, t)
		groups[gi].Indices = append(groups[gi].Indices, i)
	}
	return groups
}
