package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/sangkips/investify-pos/internal/domain/entity"
)

// Amounts is one currency view of a ticket. Subtotal-Discount and Net+Tax
// both equal Total exactly.
type Amounts struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
	Net      decimal.Decimal `json:"net"`
	Tax      decimal.Decimal `json:"tax"`
}

// LineTotals holds the resolved prices of one line in the base currency
type LineTotals struct {
	EffectivePrice decimal.Decimal `json:"effective_price"`
	Net            decimal.Decimal `json:"net"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// Totals are the derived figures of a ticket at a given exchange rate
type Totals struct {
	Base          Amounts         `json:"base"`
	Display       Amounts         `json:"display"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	ScalingFactor decimal.Decimal `json:"scaling_factor"`
	Lines         []LineTotals    `json:"lines"`
}

// breakdown holds the unrounded sums a ticket's totals derive from
type breakdown struct {
	gross  decimal.Decimal
	net    decimal.Decimal
	final  decimal.Decimal
	factor decimal.Decimal
}

// Compute derives ticket totals from base prices. It never reads previously
// projected amounts, so recomputing after a rate change gives the same
// figures as computing at that rate from the start.
func (r *Resolver) Compute(ticket *entity.Ticket, rate decimal.Decimal) Totals {
	rate = safeRate(rate)

	b := breakdown{gross: decimal.Zero, net: decimal.Zero}
	lines := make([]LineTotals, len(ticket.Lines))
	for i, line := range ticket.Lines {
		net := LineNet(line, rate)
		subtotal := net.Mul(one.Add(decimal.NewFromFloat(line.TaxRate)))
		b.net = b.net.Add(net)
		b.gross = b.gross.Add(subtotal)
		lines[i] = LineTotals{
			EffectivePrice: r.Round(EffectiveUnitPrice(line, rate)),
			Net:            r.Round(net),
			Subtotal:       r.Round(subtotal),
		}
	}

	b.final = ApplyDiscount(b.gross, ticket.GlobalDiscount, ticket.GlobalDiscountType, rate)
	b.factor = one
	if !b.gross.IsZero() {
		b.factor = b.final.Div(b.gross)
	}

	return Totals{
		Base:          r.project(b, one),
		Display:       r.project(b, rate),
		ExchangeRate:  rate,
		ScalingFactor: b.factor,
		Lines:         lines,
	}
}

// project converts the breakdown into a currency with multiplier rate. The
// global discount effect is spread over net and tax with the scaling factor;
// tax is taken as the remainder so the parts add up after rounding.
func (r *Resolver) project(b breakdown, rate decimal.Decimal) Amounts {
	subtotal := r.Round(b.gross.Mul(rate))
	total := r.Round(b.final.Mul(rate))
	net := r.Round(b.net.Mul(b.factor).Mul(rate))
	if net.GreaterThan(total) {
		net = total
	}
	return Amounts{
		Subtotal: subtotal,
		Discount: subtotal.Sub(total),
		Total:    total,
		Net:      net,
		Tax:      total.Sub(net),
	}
}

// Project converts a base currency amount into the display currency
func (r *Resolver) Project(amount, rate decimal.Decimal) decimal.Decimal {
	return r.Round(amount.Mul(safeRate(rate)))
}
