package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogDeduplication(t *testing.T) {
	catalog := NewCatalog([]Token{
		{Value: "{{a}}", Description: "first", Category: CategoryClient},
		{Value: "{{a}}", Description: "second", Category: CategoryClient},
		{Value: "{{b}}", Description: "b", Category: CategoryBank},
	})

	assert.Equal(t, 2, catalog.Len())
	tok, ok := catalog.Lookup("{{a}}")
	require.True(t, ok)
	assert.Equal(t, "first", tok.Description)
}

func TestCatalogLookupAcceptsBareIdentifier(t *testing.T) {
	catalog := NewCatalog(StaticCatalog())

	tok, ok := catalog.Lookup("client_name")
	require.True(t, ok)
	assert.Equal(t, "{{client_name}}", tok.Value)

	_, ok = catalog.Lookup("nope")
	assert.False(t, ok)
}

func TestCatalogCategoriesOrder(t *testing.T) {
	catalog := NewCatalog([]Token{
		{Value: "{{x}}", Category: "Zeta"},
		{Value: "{{bank}}", Category: CategoryBank},
		{Value: "{{client}}", Category: CategoryClient},
	})

	// Known categories come first in display order, unknown ones after.
	assert.Equal(t, []string{CategoryClient, CategoryBank, "Zeta"}, catalog.Categories())
	assert.Equal(t, 1, catalog.CategoryCount(CategoryBank))
	assert.Equal(t, 0, catalog.CategoryCount(CategoryPayment))
}

func TestCatalogVersionTracksContent(t *testing.T) {
	a := NewCatalog(StaticCatalog())
	b := NewCatalog(StaticCatalog())
	assert.Equal(t, a.Version(), b.Version())

	c := NewMergedCatalog(StaticCatalog(), []CustomField{{FieldName: "po_number"}})
	assert.NotEqual(t, a.Version(), c.Version())
}

func TestCatalogSearch(t *testing.T) {
	catalog := NewCatalog(StaticCatalog())

	results := catalog.Search("iban")
	require.Len(t, results, 1)
	assert.Equal(t, "{{iban}}", results[0].Value)

	assert.Len(t, catalog.Search(""), catalog.Len())
}

func TestNilCatalogIsEmpty(t *testing.T) {
	var c *Catalog
	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Tokens())
	assert.Nil(t, c.Categories())
	_, ok := c.Lookup("{{a}}")
	assert.False(t, ok)
}
