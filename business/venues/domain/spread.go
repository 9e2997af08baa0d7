package domain

import "github.com/shopspring/decimal"

var (
	hundred     = decimal.NewFromInt(100)
	tenThousand = decimal.NewFromInt(10000)
)

// Spread is the gap between a cheaper and a dearer unit price.
type Spread struct {
	BuyPrice    decimal.Decimal
	SellPrice   decimal.Decimal
	Absolute    decimal.Decimal // sell - buy
	Pct         decimal.Decimal // absolute / min(buy, sell) * 100
	BasisPoints decimal.Decimal
}

// CalculateSpread orders the two prices so the lower one is the buy side.
func CalculateSpread(a, b decimal.Decimal) Spread {
	buy, sell := a, b
	if b.LessThan(a) {
		buy, sell = b, a
	}

	absolute := sell.Sub(buy)
	pct := decimal.Zero
	if buy.IsPositive() {
		pct = absolute.Div(buy).Mul(hundred)
	}

	return Spread{
		BuyPrice:    buy,
		SellPrice:   sell,
		Absolute:    absolute,
		Pct:         pct,
		BasisPoints: pct.Mul(tenThousand).Div(hundred),
	}
}
