package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ReservesView is a pool snapshot already formatted for display.
type ReservesView struct {
	PoolID   string
	Kind     string
	VaultA   VaultLine
	VaultB   VaultLine
	MidPrice string
	Depth    string
	Fees     []string
	Extra    [][2]string
}

// VaultLine is one side of a pool.
type VaultLine struct {
	Label   string
	Address string
	Raw     string
	Human   string
}

// ReservesComponent renders a pool snapshot.
type ReservesComponent struct {
	view ReservesView
}

func NewReservesComponent(v ReservesView) *ReservesComponent {
	return &ReservesComponent{view: v}
}

// View renders the reserves component.
func (r *ReservesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	v := r.view
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("POOL %s (%s)", v.PoolID, v.Kind)))
	b.WriteString("\n\n")

	for _, vault := range []VaultLine{v.VaultA, v.VaultB} {
		fmt.Fprintf(&b, "  %-8s %s  %s\n",
			vault.Label,
			valueStyle.Render(vault.Human),
			labelStyle.Render("raw "+vault.Raw+"  vault "+vault.Address))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("mid price"), v.MidPrice)
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("depth    "), v.Depth)
	for _, f := range v.Fees {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("fee      "), f)
	}
	for _, kv := range v.Extra {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-9s", kv[0])), kv[1])
	}
	return b.String()
}
