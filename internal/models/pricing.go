package models

import "github.com/shopspring/decimal"

// LineItem is one priced cart line: the catalog unit price at pricing time
// times a positive quantity.
type LineItem struct {
	MenuItemID int64
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int
}

// PricingResult holds the order totals, all rounded to 2 decimal places.
// Invariants: Discount <= Subtotal, Total = max(0, Subtotal-Discount).
type PricingResult struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}
