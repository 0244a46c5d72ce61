// Package pricing resolves line and ticket discounts and projects base
// currency totals into the display currency.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/enum"
)

const (
	DefaultDecimals = 2
	maxDecimals     = 8
)

var one = decimal.NewFromInt(1)

// NormalizeDiscount converts a user-entered discount into its stored form.
// Percent input arrives as 0..100 and is stored as 0..1; fixed amounts are
// stored as entered. Negative and NaN input become zero.
func NormalizeDiscount(value float64, discountType enum.DiscountType) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	if discountType == enum.DiscountTypePercent {
		return math.Min(value/100, 1)
	}
	return value
}

// ApplyDiscount subtracts a normalized discount from amount. Display currency
// amounts (FIXED_VES) are converted to base with rate first. The result never
// drops below zero.
func ApplyDiscount(amount decimal.Decimal, discount float64, discountType enum.DiscountType, rate decimal.Decimal) decimal.Decimal {
	if discount <= 0 || math.IsNaN(discount) {
		return amount
	}
	d := decimal.NewFromFloat(discount)

	var result decimal.Decimal
	switch discountType {
	case enum.DiscountTypeFixed:
		result = amount.Sub(d)
	case enum.DiscountTypeFixedAlt:
		result = amount.Sub(d.Div(safeRate(rate)))
	default:
		if d.GreaterThan(one) {
			d = one
		}
		result = amount.Mul(one.Sub(d))
	}

	if result.IsNegative() {
		return decimal.Zero
	}
	return result
}

// EffectiveUnitPrice is the base currency unit price after the line discount
func EffectiveUnitPrice(line entity.LineItem, rate decimal.Decimal) decimal.Decimal {
	return ApplyDiscount(decimal.NewFromFloat(line.Price), line.Discount, line.DiscountType, rate)
}

// LineNet is units times the effective price, before tax
func LineNet(line entity.LineItem, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromFloat(line.Units).Mul(EffectiveUnitPrice(line, rate))
}

// LineSubtotal is the tax inclusive amount of a line
func LineSubtotal(line entity.LineItem, rate decimal.Decimal) decimal.Decimal {
	return LineNet(line, rate).Mul(one.Add(decimal.NewFromFloat(line.TaxRate)))
}

func safeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.Sign() <= 0 {
		return one
	}
	return rate
}

// Resolver computes ticket totals rounded to a fixed number of decimals
type Resolver struct {
	decimals int32
}

// NewResolver creates a resolver rounding final amounts to decimals places
func NewResolver(decimals int) *Resolver {
	if decimals < 0 {
		decimals = 0
	}
	if decimals > maxDecimals {
		decimals = maxDecimals
	}
	return &Resolver{decimals: int32(decimals)}
}

// Decimals returns the configured rounding precision
func (r *Resolver) Decimals() int32 {
	return r.decimals
}

// Round applies half-up rounding at the configured precision
func (r *Resolver) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(r.decimals)
}
