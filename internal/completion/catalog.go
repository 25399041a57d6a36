package completion

import "fmt"

// StaticCatalogVersion identifies the shipped placeholder list. Bump it whenever
// a token is added, renamed, or removed.
const StaticCatalogVersion = "2024.2"

// defaultCategoryOrder is the display order for catalog categories.
var defaultCategoryOrder = []string{
	CategoryClient,
	CategoryCompany,
	CategoryInvoice,
	CategoryPayment,
	CategoryBank,
	CategoryCustomFields,
}

var staticCatalog = []Token{
	{Value: "{{client_name}}", Description: "Client full name", Category: CategoryClient, Expr: "_.client.name"},
	{Value: "{{client_email}}", Description: "Client email address", Category: CategoryClient, Expr: "_.client.email"},
	{Value: "{{client_phone}}", Description: "Client phone number", Category: CategoryClient, Expr: "_.client.phone"},
	{Value: "{{client_address}}", Description: "Client billing address", Category: CategoryClient, Expr: "_.client.address"},
	{Value: "{{client_company}}", Description: "Client company name", Category: CategoryClient, Expr: "_.client.company"},

	{Value: "{{company_name}}", Description: "Your company name", Category: CategoryCompany, Expr: "_.company.name"},
	{Value: "{{company_email}}", Description: "Your company email", Category: CategoryCompany, Expr: "_.company.email"},
	{Value: "{{company_phone}}", Description: "Your company phone", Category: CategoryCompany, Expr: "_.company.phone"},
	{Value: "{{company_address}}", Description: "Your company address", Category: CategoryCompany, Expr: "_.company.address"},
	{Value: "{{company_website}}", Description: "Your company website", Category: CategoryCompany, Expr: "_.company.website"},

	{Value: "{{invoice_number}}", Description: "Invoice number", Category: CategoryInvoice, Expr: "_.invoice.number"},
	{Value: "{{invoice_date}}", Description: "Invoice issue date", Category: CategoryInvoice, Expr: "_.invoice.date"},
	{Value: "{{due_date}}", Description: "Invoice due date", Category: CategoryInvoice, Expr: "_.invoice.dueDate"},
	{Value: "{{invoice_total}}", Description: "Invoice total amount", Category: CategoryInvoice, Expr: "_.invoice.total"},
	{Value: "{{invoice_subtotal}}", Description: "Invoice subtotal before tax", Category: CategoryInvoice, Expr: "_.invoice.subtotal"},
	{Value: "{{invoice_tax}}", Description: "Invoice tax amount", Category: CategoryInvoice, Expr: "_.invoice.tax"},
	{Value: "{{invoice_currency}}", Description: "Invoice currency code", Category: CategoryInvoice, Expr: "_.invoice.currency"},
	{Value: "{{invoice_link}}", Description: "Link to view the invoice online", Category: CategoryInvoice, Expr: "_.invoice.link"},

	{Value: "{{payment_amount}}", Description: "Amount of the last payment", Category: CategoryPayment, Expr: "_.payment.amount"},
	{Value: "{{payment_date}}", Description: "Date of the last payment", Category: CategoryPayment, Expr: "_.payment.date"},
	{Value: "{{payment_method}}", Description: "Payment method used", Category: CategoryPayment, Expr: "_.payment.method"},
	{Value: "{{amount_due}}", Description: "Outstanding balance", Category: CategoryPayment, Expr: "_.payment.amountDue"},
	{Value: "{{payment_link}}", Description: "Link to pay online", Category: CategoryPayment, Expr: "_.payment.link"},

	{Value: "{{bank_name}}", Description: "Bank name", Category: CategoryBank, Expr: "_.bank.name"},
	{Value: "{{account_name}}", Description: "Bank account holder", Category: CategoryBank, Expr: "_.bank.accountName"},
	{Value: "{{account_number}}", Description: "Bank account number", Category: CategoryBank, Expr: "_.bank.accountNumber"},
	{Value: "{{routing_number}}", Description: "Bank routing number", Category: CategoryBank, Expr: "_.bank.routingNumber"},
	{Value: "{{iban}}", Description: "IBAN", Category: CategoryBank, Expr: "_.bank.iban"},
	{Value: "{{swift_code}}", Description: "SWIFT / BIC code", Category: CategoryBank, Expr: "_.bank.swift"},
}

// StaticCatalog returns a copy of the shipped placeholder list.
func StaticCatalog() []Token {
	return append([]Token(nil), staticCatalog...)
}

// CustomFieldToken maps a custom field to a catalog token. It reports false for
// malformed fields: neither placeholder nor field name set, or an identifier
// that would embed a trigger or terminator.
func CustomFieldToken(f CustomField) (Token, bool) {
	id := Identifier(f.Placeholder)
	if id == "" {
		id = Identifier(f.FieldName)
	}
	if !validIdentifier(id) {
		return Token{}, false
	}
	desc := f.FieldLabel
	if desc == "" {
		desc = f.FieldName
	}
	if desc == "" {
		desc = id
	}
	key := f.FieldName
	if key == "" {
		key = id
	}
	return Token{
		Value:       Wrap(id),
		Description: desc,
		Category:    CategoryCustomFields,
		Expr:        fmt.Sprintf("_.custom[%q]", key),
	}, true
}

// BuildCatalog merges the static list with custom-field tokens. Static tokens
// come first in their given order, followed by custom tokens in field order.
// A custom token whose value is already present is dropped, so a user-defined
// field can never shadow a reserved placeholder. Malformed fields are skipped.
func BuildCatalog(static []Token, fields []CustomField) []Token {
	out := make([]Token, 0, len(static)+len(fields))
	seen := make(map[string]bool, len(static)+len(fields))
	for _, t := range static {
		if seen[t.Value] {
			continue
		}
		seen[t.Value] = true
		out = append(out, t)
	}
	for _, f := range fields {
		t, ok := CustomFieldToken(f)
		if !ok || seen[t.Value] {
			continue
		}
		seen[t.Value] = true
		out = append(out, t)
	}
	return out
}
