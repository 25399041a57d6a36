// Package completion implements placeholder completion for template text:
// trigger detection, catalog filtering, selection, and splice insertion.
//
// All offsets are byte offsets into the UTF-8 buffer. Hosts that count in
// runes or UTF-16 units convert at their own boundary.
package completion

import "strings"

const (
	// TriggerOpen opens a placeholder and starts a completion session.
	TriggerOpen = "{{"
	// TriggerClose terminates a placeholder.
	TriggerClose = "}}"
)

// Catalog categories shipped with the static list, plus the category assigned
// to every custom-field token.
const (
	CategoryClient       = "Client"
	CategoryCompany      = "Company"
	CategoryInvoice      = "Invoice"
	CategoryPayment      = "Payment"
	CategoryBank         = "Bank"
	CategoryCustomFields = "Custom Fields"
)

// Token is a placeholder offered for completion.
type Token struct {
	// Value is the literal text to insert, always of the form "{{identifier}}".
	Value       string `json:"value" yaml:"value" toml:"value"`
	Description string `json:"description" yaml:"description" toml:"description"`
	Category    string `json:"category" yaml:"category" toml:"category"`
	// Expr is the CEL expression preview rendering evaluates for this token.
	Expr string `json:"expr,omitempty" yaml:"expr,omitempty" toml:"expr,omitempty"`
}

// Identifier returns the token value without its braces.
func (t Token) Identifier() string {
	return Identifier(t.Value)
}

// CustomField is a user-defined field as served by the custom-fields backend.
type CustomField struct {
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty" toml:"placeholder,omitempty"`
	FieldName   string `json:"fieldName" yaml:"fieldName" toml:"fieldName"`
	FieldLabel  string `json:"fieldLabel,omitempty" yaml:"fieldLabel,omitempty" toml:"fieldLabel,omitempty"`
	IsActive    bool   `json:"isActive" yaml:"isActive" toml:"isActive"`
}

// Identifier strips surrounding whitespace and one pair of placeholder braces.
func Identifier(value string) string {
	id := strings.TrimSpace(value)
	if strings.HasPrefix(id, TriggerOpen) && strings.HasSuffix(id, TriggerClose) && len(id) >= len(TriggerOpen)+len(TriggerClose) {
		id = id[len(TriggerOpen) : len(id)-len(TriggerClose)]
	}
	return strings.TrimSpace(id)
}

// Wrap turns an identifier into a placeholder value.
func Wrap(identifier string) string {
	return TriggerOpen + identifier + TriggerClose
}

// validIdentifier rejects identifiers that would produce a value with an
// embedded trigger or terminator.
func validIdentifier(id string) bool {
	return id != "" && !strings.Contains(id, TriggerOpen) && !strings.Contains(id, TriggerClose)
}

func clampOffset(buffer string, offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(buffer) {
		return len(buffer)
	}
	return offset
}
