package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// OpportunityRow is one cross-venue spread.
type OpportunityRow struct {
	BuyVenue       string
	SellVenue      string
	BuyPrice       decimal.Decimal
	SellPrice      decimal.Decimal
	SpreadPct      decimal.Decimal
	ProfitEstimate decimal.Decimal
}

// OpportunitiesComponent renders the opportunities list.
type OpportunitiesComponent struct {
	rows    []OpportunityRow
	maxRows int
}

// NewOpportunitiesComponent creates a new opportunities component.
func NewOpportunitiesComponent(maxRows int) *OpportunitiesComponent {
	return &OpportunitiesComponent{maxRows: maxRows}
}

// Update replaces the rows, keeping at most maxRows.
func (o *OpportunitiesComponent) Update(rows []OpportunityRow) {
	if o.maxRows > 0 && len(rows) > o.maxRows {
		rows = rows[:o.maxRows]
	}
	o.rows = rows
}

// View renders the opportunities component.
func (o *OpportunitiesComponent) View() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	if len(o.rows) == 0 {
		return dimStyle.Render("  No cross-venue spread above threshold") + "\n"
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	spreadStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("OPPORTUNITIES (%d)", len(o.rows))))
	b.WriteString("\n")
	for _, row := range o.rows {
		fmt.Fprintf(&b, "  buy %-10s @ %-14s sell %-10s @ %-14s %s  est. %s\n",
			row.BuyVenue,
			row.BuyPrice.StringFixed(6),
			row.SellVenue,
			row.SellPrice.StringFixed(6),
			spreadStyle.Render(fmt.Sprintf("%+.3f%%", row.SpreadPct.InexactFloat64())),
			row.ProfitEstimate.StringFixed(6),
		)
	}
	return b.String()
}
