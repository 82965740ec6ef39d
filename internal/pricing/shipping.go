package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ShippingSettings is the admin-managed shipping policy.
type ShippingSettings struct {
	FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold"`
	ForcePaidShipping     bool            `json:"forcePaidShipping"`
	DefaultShippingCost   decimal.Decimal `json:"defaultShippingCost"`
}

// DefaultShippingSettings is used when the stored settings cannot be read.
var DefaultShippingSettings = ShippingSettings{
	FreeShippingThreshold: decimal.NewFromInt(999),
	ForcePaidShipping:     false,
	DefaultShippingCost:   decimal.Zero,
}

// ShippingDecision is the resolved charge for an order. Reason is for diagnostics only.
type ShippingDecision struct {
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	IsFreeShipping bool            `json:"isFreeShipping"`
	Reason         string          `json:"reason"`
}

// ComputeShipping resolves the shipping charge for a pre-shipping order total.
// Rules apply in order: missing settings, forced paid shipping, free-shipping threshold, default cost.
func ComputeShipping(orderTotal decimal.Decimal, settings *ShippingSettings) ShippingDecision {
	if settings == nil {
		return ShippingDecision{
			ShippingCost:   decimal.Zero,
			IsFreeShipping: true,
			Reason:         "no shipping settings configured",
		}
	}

	if settings.ForcePaidShipping {
		return ShippingDecision{
			ShippingCost:   settings.DefaultShippingCost,
			IsFreeShipping: false,
			Reason:         "paid shipping enforced",
		}
	}

	if orderTotal.GreaterThanOrEqual(settings.FreeShippingThreshold) {
		return ShippingDecision{
			ShippingCost:   decimal.Zero,
			IsFreeShipping: true,
			Reason: fmt.Sprintf("order total %s meets free shipping threshold %s",
				orderTotal.StringFixed(CurrencyPlaces), settings.FreeShippingThreshold.StringFixed(CurrencyPlaces)),
		}
	}

	return ShippingDecision{
		ShippingCost:   settings.DefaultShippingCost,
		IsFreeShipping: false,
		Reason: fmt.Sprintf("order total %s below free shipping threshold %s",
			orderTotal.StringFixed(CurrencyPlaces), settings.FreeShippingThreshold.StringFixed(CurrencyPlaces)),
	}
}

// ComputeCartShipping resolves shipping for the sum of the cart's line items.
func ComputeCartShipping(items []LineItem, settings *ShippingSettings) ShippingDecision {
	return ComputeShipping(CartTotal(items), settings)
}
