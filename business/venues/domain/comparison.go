package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ArbitrageThresholdPct is the smallest spread, in percent, reported as an
// opportunity.
var ArbitrageThresholdPct = decimal.RequireFromString("0.5")

// ArbitrageOpportunity is a cross-venue mispricing of the same pair.
type ArbitrageOpportunity struct {
	BuyVenue  string          `json:"buyVenue"`
	SellVenue string          `json:"sellVenue"`
	BuyPrice  decimal.Decimal `json:"buyPrice"`
	SellPrice decimal.Decimal `json:"sellPrice"`
	Spread    decimal.Decimal `json:"spread"`
	SpreadPct decimal.Decimal `json:"spreadPct"`
	// ProfitEstimate is spread times the requested input amount. Fees,
	// slippage and the round trip are not deducted.
	ProfitEstimate decimal.Decimal `json:"profitEstimate"`
}

// VenueComparison holds one quote per configured venue, tombstones
// included, plus the derived ranking.
type VenueComparison struct {
	InputMint     string                 `json:"inputMint"`
	OutputMint    string                 `json:"outputMint"`
	Amount        decimal.Decimal        `json:"amount"`
	Timestamp     time.Time              `json:"timestamp"`
	Quotes        []VenueQuote           `json:"quotes"`
	Best          *VenueQuote            `json:"best,omitempty"`
	Opportunities []ArbitrageOpportunity `json:"opportunities"`
}

// Healthy returns the non-tombstone quotes.
func (c *VenueComparison) Healthy() []VenueQuote {
	out := make([]VenueQuote, 0, len(c.Quotes))
	for _, q := range c.Quotes {
		if !q.IsTombstone() {
			out = append(out, q)
		}
	}
	return out
}

// NewVenueComparison ranks quotes: it picks the best, stamps efficiencies on
// every live quote and scans for arbitrage. quotes is modified in place.
func NewVenueComparison(inputMint, outputMint string, amount decimal.Decimal, quotes []VenueQuote, at time.Time) *VenueComparison {
	c := &VenueComparison{
		InputMint:     inputMint,
		OutputMint:    outputMint,
		Amount:        amount,
		Timestamp:     at,
		Quotes:        quotes,
		Opportunities: []ArbitrageOpportunity{},
	}

	best := SelectBest(quotes)
	if best < 0 {
		return c
	}

	ApplyEfficiency(quotes, quotes[best])
	b := quotes[best]
	c.Best = &b
	c.Opportunities = ScanArbitrage(quotes)
	return c
}

// SelectBest returns the index of the live quote with the greatest output,
// the first on ties. With no live quote it returns 0, and -1 for no quotes.
func SelectBest(quotes []VenueQuote) int {
	if len(quotes) == 0 {
		return -1
	}
	best := -1
	for i, q := range quotes {
		if q.IsTombstone() {
			continue
		}
		if best < 0 || q.OutAmount.GreaterThan(quotes[best].OutAmount) {
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// ApplyEfficiency sets EfficiencyPct = out / best.out * 100 on live quotes.
// Nothing is set when best has no output.
func ApplyEfficiency(quotes []VenueQuote, best VenueQuote) {
	if best.IsTombstone() || !best.OutAmount.IsPositive() {
		return
	}
	for i := range quotes {
		if quotes[i].IsTombstone() {
			continue
		}
		eff := quotes[i].OutAmount.Div(best.OutAmount).Mul(hundred)
		quotes[i].EfficiencyPct = &eff
	}
}

// ScanArbitrage compares unit prices across every unordered pair of live
// quotes and keeps spreads above ArbitrageThresholdPct, widest first.
func ScanArbitrage(quotes []VenueQuote) []ArbitrageOpportunity {
	live := make([]VenueQuote, 0, len(quotes))
	for _, q := range quotes {
		if !q.IsTombstone() && q.InAmount.IsPositive() {
			live = append(live, q)
		}
	}

	opps := []ArbitrageOpportunity{}
	if len(live) < 2 {
		return opps
	}
	size := live[0].InAmount

	for i := 0; i < len(live); i++ {
		for j := i + 1; j < len(live); j++ {
			pi, pj := live[i].UnitPrice(), live[j].UnitPrice()
			if pi.Equal(pj) {
				continue
			}

			s := CalculateSpread(pi, pj)
			if !s.Pct.GreaterThan(ArbitrageThresholdPct) {
				continue
			}

			buy, sell := live[i], live[j]
			if pj.LessThan(pi) {
				buy, sell = live[j], live[i]
			}
			opps = append(opps, ArbitrageOpportunity{
				BuyVenue:       buy.VenueID,
				SellVenue:      sell.VenueID,
				BuyPrice:       s.BuyPrice,
				SellPrice:      s.SellPrice,
				Spread:         s.Absolute,
				SpreadPct:      s.Pct,
				ProfitEstimate: s.Absolute.Mul(size),
			})
		}
	}

	sort.SliceStable(opps, func(a, b int) bool {
		return opps[a].SpreadPct.GreaterThan(opps[b].SpreadPct)
	})
	return opps
}
