// Package app contains application services and port definitions for the
// venues context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	unitsdomain "github.com/fd1az/solquote/business/units/domain"
	"github.com/fd1az/solquote/business/venues/domain"
)

// QuoteRequest is what every adapter receives. Adapters pick the amount
// form their API expects.
type QuoteRequest struct {
	InputMint  string
	OutputMint string
	Amount     decimal.Decimal // human units
	AmountBase string          // base units of InputMint
	InScale    unitsdomain.Scale
	OutScale   unitsdomain.Scale
}

// VenueAdapter quotes one venue. Request and response shapes are private to
// the adapter; only the returned VenueQuote is shared.
type VenueAdapter interface {
	ID() string
	Quote(ctx context.Context, req QuoteRequest) (*domain.VenueQuote, error)
}

// ScaleResolver resolves a mint's decimal scale. It never fails.
type ScaleResolver interface {
	ResolveScale(ctx context.Context, mint string) unitsdomain.Scale
}

// Reporter renders comparisons.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report renders one comparison.
	Report(c *domain.VenueComparison)

	// Stop flushes and shuts down the reporter.
	Stop() error
}
