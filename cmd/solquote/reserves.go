package main

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	reservesApp "github.com/fd1az/solquote/business/reserves/app"
	reservesDI "github.com/fd1az/solquote/business/reserves/di"
	"github.com/fd1az/solquote/business/reserves/domain"
	unitsDI "github.com/fd1az/solquote/business/units/di"
	"github.com/fd1az/solquote/business/venues/infra/console"
	"github.com/fd1az/solquote/pkg/ui/components"
)

func newReservesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reserves",
		Short: "Show a pool's reserves",
		Example: `  solquote reserves --pool 58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2
  solquote reserves --pair SOL-USDC`,
		RunE: runReserves,
	}

	cmd.Flags().String("pool", "", "pool account address")
	cmd.Flags().String("pair", "", "mint pair IN-OUT, symbols or addresses")
	cmd.Flags().String("mint-a", "", "first mint")
	cmd.Flags().String("mint-b", "", "second mint")
	cmd.Flags().String("endpoint", "", "RPC URL for this call only")
	return cmd
}

func runReserves(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rt, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	poolID, _ := cmd.Flags().GetString("pool")
	endpoint, _ := cmd.Flags().GetString("endpoint")
	mintA, mintB, err := rt.mintsFromFlags(cmd)
	if err != nil {
		return err
	}
	if poolID == "" && (mintA == "" || mintB == "") {
		return fmt.Errorf("either --pool or a mint pair is required")
	}

	resolver := reservesDI.GetResolver(rt.mono.Services())
	res, err := resolver.Resolve(ctx, reservesApp.Request{
		PoolID:   poolID,
		MintA:    mintA,
		MintB:    mintB,
		Endpoint: endpoint,
	})
	if err != nil {
		return err
	}

	if rt.json {
		return console.NewJSONReporter(rt.out).Encode(res)
	}

	fmt.Fprintln(rt.out, components.NewReservesComponent(rt.reservesView(ctx, res)).View())
	return nil
}

func (r *runtime) reservesView(ctx context.Context, res *domain.PoolReserves) components.ReservesView {
	norm := unitsDI.GetNormalizer(r.mono.Services())

	vault := func(v domain.VaultInfo) components.VaultLine {
		return components.VaultLine{
			Label:   r.label(v.Mint),
			Address: v.Address,
			Raw:     v.Amount.String(),
			Human:   norm.FromBaseUnits(ctx, v.Mint, v.Amount.String()).String(),
		}
	}

	view := components.ReservesView{
		PoolID:   res.PoolID,
		Kind:     res.Kind.String(),
		VaultA:   vault(res.VaultA),
		VaultB:   vault(res.VaultB),
		MidPrice: res.MidPrice.String(),
		Depth:    res.Depth.String(),
	}
	if res.Fees != nil {
		if res.Fees.TradeFeeRate != nil {
			view.Fees = append(view.Fees, "trade "+percent(*res.Fees.TradeFeeRate))
		}
		if res.Fees.ProtocolFeeRate != nil {
			view.Fees = append(view.Fees, "protocol "+percent(*res.Fees.ProtocolFeeRate))
		}
	}
	if c := res.Concentrated; c != nil {
		view.Extra = append(view.Extra,
			[2]string{"price", c.PriceCurrent.StringFixed(6)},
			[2]string{"tick", strconv.Itoa(int(c.TickCurrent))},
			[2]string{"window", fmt.Sprintf("[%d, %d) %s to %s", c.TickLower, c.TickUpper, c.PriceLower.StringFixed(6), c.PriceUpper.StringFixed(6))},
			[2]string{"liquidity", bigString(c.Liquidity)},
		)
	}
	return view
}

func percent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).String() + "%"
}

func bigString(b *big.Int) string {
	if b == nil {
		return "0"
	}
	return b.String()
}
