package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	venuesApp "github.com/fd1az/solquote/business/venues/app"
	venuesDI "github.com/fd1az/solquote/business/venues/di"
	"github.com/fd1az/solquote/business/venues/infra/console"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compare",
		Short:   "Compare one swap across every enabled venue",
		Example: "  solquote compare --pair SOL-USDC --amount 1.5",
		RunE:    runCompare,
	}

	cmd.Flags().String("pair", "", "mint pair IN-OUT, symbols or addresses")
	cmd.Flags().String("mint-a", "", "input mint")
	cmd.Flags().String("mint-b", "", "output mint")
	cmd.Flags().String("amount", "1", "input amount in human units")
	return cmd
}

func runCompare(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rawAmount, _ := cmd.Flags().GetString("amount")
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil || !amount.IsPositive() {
		return fmt.Errorf("invalid --amount %q", rawAmount)
	}

	rt, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	in, out, err := rt.mintsFromFlags(cmd)
	if err != nil {
		return err
	}
	if in == "" || out == "" {
		return fmt.Errorf("a mint pair is required")
	}

	agg := venuesDI.GetAggregator(rt.mono.Services())
	comparison := agg.CompareVenues(ctx, in, out, amount)

	reporter := rt.reporter()
	reporter.Report(comparison)
	return nil
}

// reporter picks the output format.
func (r *runtime) reporter(opts ...console.Option) venuesApp.Reporter {
	if r.json {
		return console.NewJSONReporter(r.out)
	}
	opts = append([]console.Option{
		console.WithWriter(r.out),
		console.WithLabeler(r.label),
	}, opts...)
	return console.NewReporter(opts...)
}
