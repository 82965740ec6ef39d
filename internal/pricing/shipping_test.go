package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func storeSettings() *ShippingSettings {
	return &ShippingSettings{
		FreeShippingThreshold: money("999"),
		ForcePaidShipping:     false,
		DefaultShippingCost:   money("50"),
	}
}

func TestComputeShipping_MissingSettingsIsFree(t *testing.T) {
	for _, total := range []string{"0", "10", "5000"} {
		got := ComputeShipping(money(total), nil)
		assert.True(t, got.IsFreeShipping)
		assert.True(t, got.ShippingCost.IsZero())
		assert.NotEmpty(t, got.Reason)
	}
}

func TestComputeShipping_ForcePaidOverridesThreshold(t *testing.T) {
	settings := storeSettings()
	settings.ForcePaidShipping = true

	got := ComputeShipping(money("5000"), settings)

	assert.False(t, got.IsFreeShipping)
	assertMoney(t, "50.00", got.ShippingCost)
}

func TestComputeShipping_ThresholdIsInclusive(t *testing.T) {
	got := ComputeShipping(money("999"), storeSettings())

	assert.True(t, got.IsFreeShipping)
	assert.True(t, got.ShippingCost.IsZero())
}

func TestComputeShipping_BelowThresholdPays(t *testing.T) {
	got := ComputeShipping(money("998.99"), storeSettings())

	assert.False(t, got.IsFreeShipping)
	assertMoney(t, "50.00", got.ShippingCost)
	assert.Contains(t, got.Reason, "below")
}

func TestComputeShipping_DoesNotMutateSettings(t *testing.T) {
	settings := storeSettings()
	before := *settings

	ComputeShipping(money("100"), settings)
	ComputeShipping(money("2000"), settings)

	assert.Equal(t, before, *settings)
}

func TestComputeCartShipping_EmptyCart(t *testing.T) {
	paid := ComputeCartShipping(nil, storeSettings())
	assert.False(t, paid.IsFreeShipping)
	assertMoney(t, "50.00", paid.ShippingCost)

	zeroThreshold := storeSettings()
	zeroThreshold.FreeShippingThreshold = decimal.Zero
	free := ComputeCartShipping(nil, zeroThreshold)
	assert.True(t, free.IsFreeShipping)
}

func TestComputeCartShipping_VariantPricePrecedence(t *testing.T) {
	settings := storeSettings()
	settings.FreeShippingThreshold = money("120")
	variant := money("120")

	withVariant := ComputeCartShipping([]LineItem{{Price: money("100"), VariantPrice: &variant, Quantity: 1}}, settings)
	withoutVariant := ComputeCartShipping([]LineItem{{Price: money("100"), Quantity: 1}}, settings)

	assert.True(t, withVariant.IsFreeShipping)
	assert.False(t, withoutVariant.IsFreeShipping)
}

func TestCheckoutScenarios(t *testing.T) {
	t.Run("low value cart", func(t *testing.T) {
		items := []LineItem{{Price: money("500"), Quantity: 1}}

		gst := ComputeCartGST(items)
		shipping := ComputeCartShipping(items, storeSettings())

		assertMoney(t, "500.00", gst.TotalAmount)
		assertMoney(t, "476.19", gst.BaseAmount)
		assertMoney(t, "23.81", gst.GSTAmount)
		assert.True(t, gst.GSTRate.Equal(money("0.05")))
		assert.Equal(t, 5, gst.GSTPercentage)
		assertMoney(t, "50.00", shipping.ShippingCost)
		assert.False(t, shipping.IsFreeShipping)
	})

	t.Run("high value cart", func(t *testing.T) {
		items := []LineItem{{Price: money("1200"), Quantity: 1}}

		gst := ComputeCartGST(items)
		shipping := ComputeCartShipping(items, storeSettings())

		assertMoney(t, "1071.43", gst.BaseAmount)
		assertMoney(t, "128.57", gst.GSTAmount)
		assert.True(t, gst.GSTRate.Equal(money("0.12")))
		assert.Equal(t, 12, gst.GSTPercentage)
		assert.True(t, shipping.ShippingCost.IsZero())
		assert.True(t, shipping.IsFreeShipping)
	})

	t.Run("missing settings", func(t *testing.T) {
		items := []LineItem{{Price: money("10"), Quantity: 3}}

		shipping := ComputeCartShipping(items, nil)

		assert.True(t, shipping.ShippingCost.IsZero())
		assert.True(t, shipping.IsFreeShipping)
	})
}

func TestLineItem_Subtotal(t *testing.T) {
	assertMoney(t, "300.00", LineItem{Price: money("100"), Quantity: 3}.Subtotal())
	assertMoney(t, "0.00", LineItem{Price: money("100"), Quantity: 0}.Subtotal())
	assertMoney(t, "0.00", LineItem{Price: money("100"), Quantity: -2}.Subtotal())
	assertMoney(t, "0.00", LineItem{Price: money("-5"), Quantity: 2}.Subtotal())
}
