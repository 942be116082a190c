// Package semantic turns technical column names into the business names
// used in interpretations and insight statements.
package semantic

import (
	"strings"
	"unicode"
)

// Concept groups columns that call for the same kind of recommendation.
type Concept string

const (
	ConceptRevenue  Concept = "revenue"
	ConceptSpend    Concept = "spend"
	ConceptPrice    Concept = "price"
	ConceptCost     Concept = "cost"
	ConceptQuantity Concept = "quantity"
	ConceptStock    Concept = "stock"
	ConceptOrders   Concept = "orders"
	ConceptGeneric  Concept = "generic"
)

type entry struct {
	key     string
	display string
	concept Concept
}

// known is matched exactly first, then by substring in this order, so more
// specific keys precede the generic ones they contain.
var known = []entry{
	{"total_amount", "Total Sales", ConceptRevenue},
	{"total_spent", "Customer Spending", ConceptSpend},
	{"total_value", "Total Value", ConceptRevenue},
	{"grand_total", "Grand Total", ConceptRevenue},
	{"unit_price", "Unit Price", ConceptPrice},
	{"stock_quantity", "Stock Level", ConceptStock},
	{"current_stock", "Current Stock", ConceptStock},
	{"quantity", "Quantity", ConceptQuantity},
	{"unit_cost", "Unit Cost", ConceptCost},
	{"total_cost", "Total Cost", ConceptCost},
	{"average_order_value", "Average Order Value", ConceptRevenue},
	{"total_orders", "Total Orders", ConceptOrders},
	{"price", "Price", ConceptPrice},
	{"cost", "Cost", ConceptCost},
	{"revenue", "Revenue", ConceptRevenue},
	{"sales", "Sales", ConceptRevenue},
	{"amount", "Amount", ConceptRevenue},
	{"value", "Value", ConceptGeneric},
	{"spent", "Amount Spent", ConceptSpend},
	{"orders", "Orders", ConceptOrders},
	{"customers", "Customers", ConceptGeneric},
	{"products", "Products", ConceptGeneric},
	{"inventory", "Inventory", ConceptStock},
	{"stock", "Stock", ConceptStock},
}

// normalize lowercases and maps spaces and dashes to underscores so that
// "Total Amount" and "total-amount" match total_amount.
func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, name)
}

func lookup(name string) (entry, bool) {
	n := normalize(name)
	for _, e := range known {
		if n == e.key {
			return e, true
		}
	}
	for _, e := range known {
		if strings.Contains(n, e.key) {
			return e, true
		}
	}
	return entry{}, false
}

// DisplayName returns the business name for a column; unknown columns are
// title-cased with underscores as spaces.
func DisplayName(column string) string {
	if e, ok := lookup(column); ok {
		return e.display
	}
	return titleCase(column)
}

// ConceptOf classifies a column for recommendation wording.
func ConceptOf(column string) Concept {
	if e, ok := lookup(column); ok {
		return e.concept
	}
	return ConceptGeneric
}

func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || unicode.IsSpace(r) })
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
