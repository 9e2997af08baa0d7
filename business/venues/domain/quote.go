// Package domain contains the core domain types for the venues context.
package domain

import "github.com/shopspring/decimal"

// VenueQuote is one venue's answer, in human units. A non-empty ErrorReason
// marks a tombstone: amounts are zero and the quote is never ranked.
type VenueQuote struct {
	VenueID       string           `json:"venue"`
	InAmount      decimal.Decimal  `json:"inAmount"`
	OutAmount     decimal.Decimal  `json:"outAmount"`
	PriceImpact   decimal.Decimal  `json:"priceImpact"` // percent
	Fee           *decimal.Decimal `json:"fee,omitempty"`
	Route         []string         `json:"route,omitempty"`
	PoolID        string           `json:"poolId,omitempty"`
	EfficiencyPct *decimal.Decimal `json:"efficiencyPct,omitempty"`
	ErrorReason   string           `json:"error,omitempty"`
}

// Tombstone records a venue that produced no usable quote.
func Tombstone(venueID, reason string) VenueQuote {
	return VenueQuote{
		VenueID:     venueID,
		InAmount:    decimal.Zero,
		OutAmount:   decimal.Zero,
		PriceImpact: decimal.Zero,
		ErrorReason: reason,
	}
}

func (q VenueQuote) IsTombstone() bool {
	return q.ErrorReason != ""
}

// UnitPrice is output per unit of input, zero when the input is zero.
func (q VenueQuote) UnitPrice() decimal.Decimal {
	if q.InAmount.IsZero() {
		return decimal.Zero
	}
	return q.OutAmount.Div(q.InAmount)
}
