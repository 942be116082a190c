package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"total_amount":      "Total Sales",
		"Total Amount":      "Total Sales",
		"unit_price":        "Unit Price",
		"monthly_revenue":   "Revenue",
		"stock_quantity":    "Stock Level",
		"discount_rate":     "Discount Rate",
		"customer lifetime": "Customer Lifetime",
	}
	for in, want := range cases {
		assert.Equal(t, want, DisplayName(in), in)
	}
}

func TestConceptOf(t *testing.T) {
	assert.Equal(t, ConceptRevenue, ConceptOf("total_amount"))
	assert.Equal(t, ConceptStock, ConceptOf("current_stock"))
	assert.Equal(t, ConceptQuantity, ConceptOf("quantity"))
	assert.Equal(t, ConceptGeneric, ConceptOf("discount"))
}
