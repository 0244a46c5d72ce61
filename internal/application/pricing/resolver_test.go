package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/enum"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func assertAmountsEqual(t *testing.T, want, got Amounts) {
	t.Helper()
	assert.True(t, want.Subtotal.Equal(got.Subtotal), "subtotal")
	assert.True(t, want.Discount.Equal(got.Discount), "discount")
	assert.True(t, want.Total.Equal(got.Total), "total")
	assert.True(t, want.Net.Equal(got.Net), "net")
	assert.True(t, want.Tax.Equal(got.Tax), "tax")
}

func scenarioTicket() *entity.Ticket {
	ticket := entity.NewTicket()
	_, _ = ticket.AddLine(entity.LineItem{
		ProductID:    "p1",
		Units:        2,
		Price:        10,
		TaxRate:      0.16,
		Discount:     0.10,
		DiscountType: enum.DiscountTypePercent,
	})
	return ticket
}

func TestNormalizeDiscount(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		typ   enum.DiscountType
		want  float64
	}{
		{"percent is divided by 100", 10, enum.DiscountTypePercent, 0.10},
		{"percent is capped at 1", 150, enum.DiscountTypePercent, 1},
		{"fixed is stored as is", 5, enum.DiscountTypeFixed, 5},
		{"display fixed is stored as is", 50, enum.DiscountTypeFixedAlt, 50},
		{"negative becomes zero", -3, enum.DiscountTypeFixed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NormalizeDiscount(tt.value, tt.typ), 1e-12)
		})
	}
}

func TestApplyDiscount(t *testing.T) {
	rate := dec("36")
	tests := []struct {
		name     string
		discount float64
		typ      enum.DiscountType
		want     string
	}{
		{"percent", 0.25, enum.DiscountTypePercent, "7.5"},
		{"fixed", 4, enum.DiscountTypeFixed, "6"},
		{"fixed clamps at zero", 40, enum.DiscountTypeFixed, "0"},
		{"display fixed converts with rate", 72, enum.DiscountTypeFixedAlt, "8"},
		{"display fixed clamps at zero", 720, enum.DiscountTypeFixedAlt, "0"},
		{"no discount", 0, enum.DiscountTypeFixed, "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.want, ApplyDiscount(dec("10"), tt.discount, tt.typ, rate))
		})
	}
}

func TestApplyDiscount_NonPositiveRateTreatedAsOne(t *testing.T) {
	assertDecimal(t, "7", ApplyDiscount(dec("10"), 3, enum.DiscountTypeFixedAlt, decimal.Zero))
}

func TestCompute_ScenarioA(t *testing.T) {
	r := NewResolver(2)
	totals := r.Compute(scenarioTicket(), dec("1"))

	assertDecimal(t, "20.88", totals.Base.Subtotal)
	assertDecimal(t, "20.88", totals.Base.Total)
	assertDecimal(t, "0", totals.Base.Discount)
	assertDecimal(t, "18", totals.Base.Net)
	assertDecimal(t, "2.88", totals.Base.Tax)
	require.Len(t, totals.Lines, 1)
	assertDecimal(t, "9", totals.Lines[0].EffectivePrice)
}

func TestCompute_ScenarioB(t *testing.T) {
	ticket := scenarioTicket()
	ticket.SetGlobalDiscount(5, enum.DiscountTypeFixed)

	totals := NewResolver(2).Compute(ticket, dec("1"))

	assertDecimal(t, "15.88", totals.Base.Total)
	assertDecimal(t, "5", totals.Base.Discount)
	assert.True(t, totals.Base.Net.Add(totals.Base.Tax).Equal(totals.Base.Total))
}

func TestCompute_ScenarioC(t *testing.T) {
	ticket := scenarioTicket()
	ticket.SetGlobalDiscount(50, enum.DiscountTypeFixedAlt)

	totals := NewResolver(4).Compute(ticket, dec("36"))
	assertDecimal(t, "19.4911", totals.Base.Total)
	assertDecimal(t, "701.68", totals.Display.Total)
	assertDecimal(t, "50", totals.Display.Discount)

	totals = NewResolver(2).Compute(ticket, dec("36"))
	assertDecimal(t, "19.49", totals.Base.Total)
}

func TestCompute_FixedAltScalesNetAndTax(t *testing.T) {
	ticket := scenarioTicket()
	ticket.SetGlobalDiscount(50, enum.DiscountTypeFixedAlt)

	totals := NewResolver(2).Compute(ticket, dec("36"))

	factor := dec("19.4911111111111111").Div(dec("20.88"))
	assert.True(t, totals.ScalingFactor.Sub(factor).Abs().LessThan(dec("0.000001")))
	assertDecimal(t, "16.80", totals.Base.Net)
	assertDecimal(t, "2.69", totals.Base.Tax)
	for _, a := range []Amounts{totals.Base, totals.Display} {
		assert.True(t, a.Net.Add(a.Tax).Equal(a.Total))
		assert.True(t, a.Subtotal.Sub(a.Discount).Equal(a.Total))
	}
}

func TestCompute_ResettingGlobalDiscountRestoresSubtotal(t *testing.T) {
	r := NewResolver(2)
	for _, typ := range []enum.DiscountType{enum.DiscountTypePercent, enum.DiscountTypeFixed, enum.DiscountTypeFixedAlt} {
		ticket := scenarioTicket()
		ticket.SetGlobalDiscount(NormalizeDiscount(30, typ), typ)
		discounted := r.Compute(ticket, dec("36"))
		require.True(t, discounted.Base.Total.LessThan(discounted.Base.Subtotal), typ.String())

		ticket.SetGlobalDiscount(NormalizeDiscount(0, enum.DiscountTypePercent), enum.DiscountTypePercent)
		totals := r.Compute(ticket, dec("36"))
		assert.True(t, totals.Base.Total.Equal(totals.Base.Subtotal), typ.String())
		assertDecimal(t, "20.88", totals.Base.Total)
	}
}

func TestCompute_RoundingIsHalfUpOnFinalValue(t *testing.T) {
	ticket := entity.NewTicket()
	_, _ = ticket.AddLine(entity.LineItem{ProductID: "a", Units: 1, Price: 0.0025})
	_, _ = ticket.AddLine(entity.LineItem{ProductID: "b", Units: 1, Price: 0.0025})

	totals := NewResolver(2).Compute(ticket, dec("1"))

	// 0.005 rounds up once; rounding each line first would give zero
	assertDecimal(t, "0.01", totals.Base.Total)
	assert.Equal(t, int32(2), -totals.Base.Total.Exponent())
}

func TestCompute_ReprojectionIsIdempotent(t *testing.T) {
	r := NewResolver(2)
	ticket := scenarioTicket()
	ticket.SetGlobalDiscount(50, enum.DiscountTypeFixedAlt)

	fresh := r.Compute(ticket, dec("40"))
	_ = r.Compute(ticket, dec("36"))
	again := r.Compute(ticket, dec("40"))

	assertAmountsEqual(t, fresh.Display, again.Display)
	assertAmountsEqual(t, fresh.Base, again.Base)
}

func TestCompute_EmptyTicket(t *testing.T) {
	totals := NewResolver(2).Compute(entity.NewTicket(), dec("36"))
	assert.True(t, totals.Base.Total.IsZero())
	assert.True(t, totals.ScalingFactor.Equal(dec("1")))
	assert.Empty(t, totals.Lines)
}

func TestCompute_GlobalDiscountNeverNegative(t *testing.T) {
	ticket := scenarioTicket()
	ticket.SetGlobalDiscount(500, enum.DiscountTypeFixed)

	totals := NewResolver(2).Compute(ticket, dec("1"))
	assert.True(t, totals.Base.Total.IsZero())
	assert.True(t, totals.Base.Tax.IsZero())
	assertDecimal(t, "20.88", totals.Base.Discount)
}

func TestNewResolver_ClampsDecimals(t *testing.T) {
	assert.Equal(t, int32(0), NewResolver(-1).Decimals())
	assert.Equal(t, int32(8), NewResolver(20).Decimals())
}
