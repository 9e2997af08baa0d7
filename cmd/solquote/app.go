package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fd1az/solquote/business/ledger"
	"github.com/fd1az/solquote/business/reserves"
	"github.com/fd1az/solquote/business/units"
	"github.com/fd1az/solquote/business/venues"
	"github.com/fd1az/solquote/internal/apm"
	"github.com/fd1az/solquote/internal/asset"
	"github.com/fd1az/solquote/internal/config"
	"github.com/fd1az/solquote/internal/logger"
	"github.com/fd1az/solquote/internal/monolith"
)

// runtime is everything a command needs after startup.
type runtime struct {
	cfg    *config.Config
	log    *logger.Logger
	mono   monolith.Monolith
	assets *asset.Registry
	json   bool
	out    io.Writer

	close func()
}

// bootstrap loads config, sets up logging and tracing, and starts all
// modules. Logs go to stderr so stdout stays parseable with --json.
func bootstrap(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	logLevel, _ := flags.GetString("log-level")
	rpc, _ := flags.GetString("rpc")
	asJSON, _ := flags.GetBool("json")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}
	if rpc != "" {
		cfg.Ledger.RPCURL = rpc
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)

	traceProvider := apm.TraceProvider(nil)
	if cfg.Telemetry.Enabled {
		traceProvider = apm.NewTraceProvider(log, apm.Config{
			ServiceName: cfg.Telemetry.ServiceName,
			Exporter:    apm.Exporter(cfg.Telemetry.TraceExporter),
			Endpoint:    cfg.Telemetry.TraceEndpoint,
			Headers:     cfg.Telemetry.OTLPHeaders,
		})
	}

	// Create monolith (application container)
	mono := monolith.New(cfg, log)

	// Define modules in dependency order
	modules := []monolith.Module{
		&ledger.Module{},   // Must be first - provides RPC readers
		&units.Module{},    // Decimal scales
		&reserves.Module{}, // Depends on ledger
		&venues.Module{},   // Depends on units
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return nil, fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx); err != nil {
		_ = mono.Close()
		return nil, fmt.Errorf("failed to start modules: %w", err)
	}

	return &runtime{
		cfg:    cfg,
		log:    log,
		mono:   mono,
		assets: mono.AssetRegistry(),
		json:   asJSON,
		out:    cmd.OutOrStdout(),
		close: func() {
			if err := mono.Close(); err != nil {
				log.Warn(ctx, "error closing modules", "error", err)
			}
			if traceProvider != nil {
				_ = traceProvider.Stop()
			}
			_ = log.Sync()
		},
	}, nil
}

// resolveMint accepts a known symbol or a mint address.
func (r *runtime) resolveMint(s string) string {
	if a, ok := r.assets.Lookup(s); ok {
		return a.Mint()
	}
	return s
}

// label returns a mint's symbol when known.
func (r *runtime) label(mint string) string {
	if a, ok := r.assets.GetByMint(mint); ok {
		return a.Symbol()
	}
	if len(mint) > 10 {
		return mint[:4] + "…" + mint[len(mint)-4:]
	}
	return mint
}

// mintsFromFlags reads --pair or --mint-a/--mint-b.
func (r *runtime) mintsFromFlags(cmd *cobra.Command) (string, string, error) {
	pair, _ := cmd.Flags().GetString("pair")
	a, _ := cmd.Flags().GetString("mint-a")
	b, _ := cmd.Flags().GetString("mint-b")

	if pair != "" {
		in, out, ok := config.SplitPair(pair)
		if !ok {
			return "", "", fmt.Errorf("invalid pair %q, want IN-OUT", pair)
		}
		a, b = in, out
	}
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return "", "", nil
	}
	return r.resolveMint(a), r.resolveMint(b), nil
}
