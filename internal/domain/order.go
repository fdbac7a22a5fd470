package domain

import "github.com/shopspring/decimal"

// OrderItem is a single line of a food or grocery order.
type OrderItem struct {
	Name     string
	Price    decimal.Decimal
	Quantity int64
}

// NormalizedQuantity treats an unset quantity as one item, matching how
// order payloads arrive from the agent.
func (i OrderItem) NormalizedQuantity() int64 {
	if i.Quantity <= 0 {
		return 1
	}
	return i.Quantity
}

// LineTotal returns price multiplied by the normalized quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.NormalizedQuantity()))
}

// OrderSubtotal sums the line totals of items.
func OrderSubtotal(items []OrderItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}
