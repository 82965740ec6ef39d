package service

import (
	"context"

	"github.com/jafarshop/storefront/internal/pricing"
)

type QuoteService struct {
	settings *SettingsService
	gst      pricing.GSTPolicy
}

func NewQuoteService(settings *SettingsService, gst pricing.GSTPolicy) *QuoteService {
	return &QuoteService{settings: settings, gst: gst}
}

// Quote prices a cart the same way checkout does, without persisting anything
func (s *QuoteService) Quote(ctx context.Context, items []pricing.LineItem) QuoteResult {
	settings := s.settings.ForCheckout(ctx)

	shipping := pricing.ComputeCartShipping(items, &settings)
	gst := s.gst.CartBreakdown(items)
	subtotal := pricing.CartTotal(items).Round(pricing.CurrencyPlaces)

	return QuoteResult{
		Subtotal:     subtotal,
		GSTBreakdown: gst,
		Shipping:     shipping,
		GrandTotal:   subtotal.Add(shipping.ShippingCost),
	}
}
