// Package pricing holds the tax-inclusive GST split and the shipping charge rules used at checkout.
// Every function here is pure: no I/O, no shared state and no errors.
package pricing

import "github.com/shopspring/decimal"

// CurrencyPlaces is the precision money is rounded to.
const CurrencyPlaces = 2

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// GSTBreakdown splits a tax-inclusive amount into its base and tax parts.
type GSTBreakdown struct {
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	BaseAmount    decimal.Decimal `json:"baseAmount"`
	GSTAmount     decimal.Decimal `json:"gstAmount"`
	GSTRate       decimal.Decimal `json:"gstRate"`
	GSTPercentage int             `json:"gstPercentage"`
}

// IsZero reports whether b is the all-zero breakdown.
func (b GSTBreakdown) IsZero() bool {
	return b.TotalAmount.IsZero() && b.BaseAmount.IsZero() && b.GSTAmount.IsZero() &&
		b.GSTRate.IsZero() && b.GSTPercentage == 0
}

// GSTPolicy selects LowRate for totals up to and including Threshold and HighRate above it.
type GSTPolicy struct {
	Threshold decimal.Decimal
	LowRate   decimal.Decimal
	HighRate  decimal.Decimal
}

// DefaultGSTPolicy is 5% up to 999 and 12% above.
var DefaultGSTPolicy = GSTPolicy{
	Threshold: decimal.NewFromInt(999),
	LowRate:   decimal.RequireFromString("0.05"),
	HighRate:  decimal.RequireFromString("0.12"),
}

// RateFor returns the rate that applies to a tax-inclusive total.
func (p GSTPolicy) RateFor(total decimal.Decimal) decimal.Decimal {
	if total.LessThanOrEqual(p.Threshold) {
		return p.LowRate
	}
	return p.HighRate
}

// Breakdown backs the base amount out of a tax-inclusive total.
// The total is first rounded to CurrencyPlaces, and both the threshold check and the
// zero check see the rounded amount: 999.004 is taxed at the low rate and 0.004 yields
// the all-zero breakdown. Zero or negative totals yield the all-zero breakdown.
func (p GSTPolicy) Breakdown(total decimal.Decimal) GSTBreakdown {
	total = total.Round(CurrencyPlaces)
	if !total.IsPositive() {
		return zeroBreakdown()
	}

	rate := p.RateFor(total)
	base := total.Div(one.Add(rate)).Round(CurrencyPlaces)

	return GSTBreakdown{
		TotalAmount:   total,
		BaseAmount:    base,
		GSTAmount:     total.Sub(base),
		GSTRate:       rate,
		GSTPercentage: int(rate.Mul(hundred).Round(0).IntPart()),
	}
}

// CartBreakdown computes the breakdown of the cart total.
func (p GSTPolicy) CartBreakdown(items []LineItem) GSTBreakdown {
	if len(items) == 0 {
		return zeroBreakdown()
	}
	return p.Breakdown(CartTotal(items))
}

// ComputeGSTBreakdown applies DefaultGSTPolicy to a single total, rounded to CurrencyPlaces first.
func ComputeGSTBreakdown(total decimal.Decimal) GSTBreakdown {
	return DefaultGSTPolicy.Breakdown(total)
}

// ComputeCartGST applies DefaultGSTPolicy to the sum of the cart's line items.
func ComputeCartGST(items []LineItem) GSTBreakdown {
	return DefaultGSTPolicy.CartBreakdown(items)
}

func zeroBreakdown() GSTBreakdown {
	return GSTBreakdown{
		TotalAmount: decimal.Zero,
		BaseAmount:  decimal.Zero,
		GSTAmount:   decimal.Zero,
		GSTRate:     decimal.Zero,
	}
}
