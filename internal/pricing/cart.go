package pricing

import "github.com/shopspring/decimal"

// LineItem is one cart line. Price is tax-inclusive.
type LineItem struct {
	Price        decimal.Decimal  `json:"price"`
	VariantPrice *decimal.Decimal `json:"variantPrice,omitempty"`
	Quantity     int              `json:"quantity"`
}

// UnitPrice returns the variant price when set, otherwise the base price.
func (i LineItem) UnitPrice() decimal.Decimal {
	if i.VariantPrice != nil {
		return *i.VariantPrice
	}
	return i.Price
}

// Subtotal is UnitPrice times Quantity. Non-positive quantities and negative prices count as zero.
func (i LineItem) Subtotal() decimal.Decimal {
	if i.Quantity <= 0 {
		return decimal.Zero
	}
	price := i.UnitPrice()
	if price.IsNegative() {
		return decimal.Zero
	}
	return price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotal sums the subtotals of all items.
func CartTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
