// Package components provides reusable terminal components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// QuoteRow is one venue in the comparison table.
type QuoteRow struct {
	Venue       string
	OutAmount   decimal.Decimal
	UnitPrice   decimal.Decimal
	PriceImpact decimal.Decimal
	Efficiency  *decimal.Decimal
	Route       []string
	Error       string
	Best        bool
}

// QuotesComponent renders the venue comparison table.
type QuotesComponent struct {
	rows  []QuoteRow
	title string
}

// NewQuotesComponent creates a quotes component.
func NewQuotesComponent(title string) *QuotesComponent {
	return &QuotesComponent{title: title}
}

// Update replaces the rows.
func (q *QuotesComponent) Update(rows []QuoteRow) {
	q.rows = rows
}

// View renders the quotes component.
func (q *QuotesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	bestStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(q.title))
	b.WriteString("\n\n")

	if len(q.rows) == 0 {
		b.WriteString(dimStyle.Render("  No venues configured"))
		b.WriteString("\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  %-10s  %18s  %14s  %8s  %8s  %s\n",
		"Venue", "Output", "Price", "Impact", "Eff.", "Route")
	b.WriteString(dimStyle.Render("  " + strings.Repeat("─", 78)))
	b.WriteString("\n")

	for _, row := range q.rows {
		if row.Error != "" {
			fmt.Fprintf(&b, "  %-10s  %s\n", row.Venue, failStyle.Render("✗ "+truncate(row.Error, 64)))
			continue
		}

		eff := "-"
		if row.Efficiency != nil {
			eff = row.Efficiency.StringFixed(2) + "%"
		}
		line := fmt.Sprintf("  %-10s  %18s  %14s  %8s  %8s  %s",
			row.Venue,
			row.OutAmount.StringFixed(6),
			row.UnitPrice.StringFixed(6),
			row.PriceImpact.StringFixed(3)+"%",
			eff,
			truncate(strings.Join(row.Route, " > "), 30),
		)
		if row.Best {
			line = bestStyle.Render(line + "  ★")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
