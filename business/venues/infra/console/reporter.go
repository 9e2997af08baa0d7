// Package console renders venue comparisons to a terminal or as JSON.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fd1az/solquote/business/venues/app"
	"github.com/fd1az/solquote/business/venues/domain"
	"github.com/fd1az/solquote/pkg/ui"
	"github.com/fd1az/solquote/pkg/ui/components"
)

// Labeler turns a mint into a display label. Unknown mints should come back
// unchanged.
type Labeler func(mint string) string

// Reporter writes styled comparison tables.
type Reporter struct {
	mu    sync.Mutex
	out   io.Writer
	label Labeler
	quiet bool
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithWriter sets the output writer.
func WithWriter(w io.Writer) Option {
	return func(r *Reporter) { r.out = w }
}

// WithLabeler sets the mint labeler.
func WithLabeler(l Labeler) Option {
	return func(r *Reporter) { r.label = l }
}

// WithQuiet suppresses the start and stop banners.
func WithQuiet() Option {
	return func(r *Reporter) { r.quiet = true }
}

// NewReporter creates a Reporter writing to stdout.
func NewReporter(opts ...Option) *Reporter {
	r := &Reporter{
		out:   os.Stdout,
		label: func(m string) string { return m },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start prints the banner.
func (r *Reporter) Start(ctx context.Context) error {
	if r.quiet {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, ui.TitleStyle.Render("solquote"))
	return nil
}

// Report renders one comparison.
func (r *Reporter) Report(c *domain.VenueComparison) {
	if c == nil {
		return
	}

	title := fmt.Sprintf("%s %s → %s   %s",
		c.Amount.String(), r.label(c.InputMint), r.label(c.OutputMint),
		c.Timestamp.Format(time.RFC3339))

	quotes := components.NewQuotesComponent(title)
	quotes.Update(quoteRows(c))

	opps := components.NewOpportunitiesComponent(5)
	opps.Update(opportunityRows(c))

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out)
	fmt.Fprint(r.out, quotes.View())
	fmt.Fprintln(r.out)
	fmt.Fprint(r.out, opps.View())
}

// Stop prints the closing line.
func (r *Reporter) Stop() error {
	if r.quiet {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, ui.MutedValue.Render("stopped"))
	return nil
}

func quoteRows(c *domain.VenueComparison) []components.QuoteRow {
	rows := make([]components.QuoteRow, 0, len(c.Quotes))
	for _, q := range c.Quotes {
		row := components.QuoteRow{
			Venue:       q.VenueID,
			OutAmount:   q.OutAmount,
			UnitPrice:   q.UnitPrice(),
			PriceImpact: q.PriceImpact,
			Efficiency:  q.EfficiencyPct,
			Route:       q.Route,
			Error:       q.ErrorReason,
		}
		if c.Best != nil && !c.Best.IsTombstone() && c.Best.VenueID == q.VenueID {
			row.Best = true
		}
		rows = append(rows, row)
	}
	return rows
}

func opportunityRows(c *domain.VenueComparison) []components.OpportunityRow {
	rows := make([]components.OpportunityRow, 0, len(c.Opportunities))
	for _, o := range c.Opportunities {
		rows = append(rows, components.OpportunityRow{
			BuyVenue:       o.BuyVenue,
			SellVenue:      o.SellVenue,
			BuyPrice:       o.BuyPrice,
			SellPrice:      o.SellPrice,
			SpreadPct:      o.SpreadPct,
			ProfitEstimate: o.ProfitEstimate,
		})
	}
	return rows
}

var _ app.Reporter = (*Reporter)(nil)
