package domain

import "github.com/shopspring/decimal"

// TaxRate is fixed at 20%; it is not configurable per order.
var TaxRate = decimal.RequireFromString("0.20")

// PriceBreakdown holds the frozen money fields of an order.
// Total == Subtotal + Tax holds by construction and is never recomputed.
type PriceBreakdown struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// PriceItems computes subtotal, tax and total from line items. Tax is rounded
// half away from zero to 2 decimal places; decimal.Round is exactly that mode.
func PriceItems(items []OrderItem) PriceBreakdown {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return PriceBreakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
