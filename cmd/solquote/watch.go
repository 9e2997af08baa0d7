package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	ledgerDI "github.com/fd1az/solquote/business/ledger/di"
	venuesApp "github.com/fd1az/solquote/business/venues/app"
	venuesDI "github.com/fd1az/solquote/business/venues/di"
	"github.com/fd1az/solquote/internal/apm"
	"github.com/fd1az/solquote/internal/config"
	"github.com/fd1az/solquote/internal/health"
	"github.com/fd1az/solquote/internal/metrics"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Compare the configured pairs on an interval",
		RunE:  runWatch,
	}

	cmd.Flags().Duration("interval", 0, "override watch.interval")
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	cfg := rt.cfg
	log := rt.log

	// Metrics provider must exist before the first comparison records.
	if cfg.Telemetry.Enabled {
		registry := prometheus.NewRegistry()
		mp, err := metrics.NewMetricProvider(ctx, metrics.Config{
			ServiceName:       cfg.Telemetry.ServiceName,
			Registry:          registry,
			CollectorEndpoint: cfg.Telemetry.OTLPEndpoint,
			CollectorHeaders:  apm.ParseHeaders(cfg.Telemetry.OTLPHeaders),
		})
		if err != nil {
			log.Warn(ctx, "metrics disabled", "error", err)
		} else {
			defer func() { _ = mp.Shutdown(context.Background()) }()

			metricsServer := metrics.NewServer(cfg.Telemetry.PrometheusPort, registry, log)
			metricsServer.Start()
			defer func() { _ = metricsServer.Stop(context.Background()) }()
			log.Info(ctx, "prometheus metrics server started", "port", cfg.Telemetry.PrometheusPort)
		}
	}

	pairs, err := rt.watchPairs()
	if err != nil {
		return err
	}

	interval := cfg.Watch.Interval
	if override, _ := cmd.Flags().GetDuration("interval"); override > 0 {
		interval = override
	}

	watcher := venuesApp.NewWatcher(
		venuesDI.GetAggregator(rt.mono.Services()),
		rt.reporter(),
		venuesApp.WatcherConfig{
			Pairs:    pairs,
			Amounts:  cfg.Watch.AmountsDecimal(),
			Interval: interval,
		},
		log,
	)

	healthServer := health.NewServer(cfg.Watch.HealthPort, version, log)
	healthServer.RegisterCheck("ledger", func(ctx context.Context) (bool, string) {
		slot, err := ledgerDI.GetReaderProvider(rt.mono.Services()).ReaderFor("").Ping(ctx)
		if err != nil {
			return false, err.Error()
		}
		return true, fmt.Sprintf("slot %d", slot)
	})
	healthServer.RegisterCheck("comparisons", freshness(watcher, cfg.Watch.StaleAfter))
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Watch.HealthPort)
	}
	defer func() { _ = healthServer.Stop(context.Background()) }()

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	log.Info(ctx, "watching", "pairs", len(pairs), "interval", interval.String())

	// Wait for shutdown
	<-ctx.Done()

	log.Info(ctx, "shutting down")
	if err := watcher.Stop(); err != nil {
		log.Error(ctx, "error stopping watcher", "error", err)
	}
	return nil
}

func (r *runtime) watchPairs() ([]venuesApp.Pair, error) {
	pairs := make([]venuesApp.Pair, 0, len(r.cfg.Watch.Pairs))
	for _, p := range r.cfg.Watch.Pairs {
		in, out, ok := config.SplitPair(p)
		if !ok {
			return nil, fmt.Errorf("invalid watch pair %q", p)
		}
		pairs = append(pairs, venuesApp.Pair{
			Label:      p,
			InputMint:  r.resolveMint(in),
			OutputMint: r.resolveMint(out),
		})
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("watch.pairs is empty")
	}
	return pairs, nil
}

// freshness fails once the last completed round is older than staleAfter.
// Before the first round completes the watcher counts as starting.
func freshness(w *venuesApp.Watcher, staleAfter time.Duration) health.CheckFunc {
	return func(context.Context) (bool, string) {
		last := w.LastRun()
		if last.IsZero() {
			return true, "starting"
		}
		age := time.Since(last)
		if staleAfter > 0 && age > staleAfter {
			return false, fmt.Sprintf("last comparison %s ago", age.Round(time.Second))
		}
		return true, fmt.Sprintf("last comparison %s ago", age.Round(time.Second))
	}
}
