package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/solquote/business/venues/domain"
	"github.com/fd1az/solquote/internal/logger"
)

// Pair is an input/output mint pair to watch.
type Pair struct {
	Label      string
	InputMint  string
	OutputMint string
}

// WatcherConfig holds configuration for the comparison loop.
type WatcherConfig struct {
	Pairs    []Pair
	Amounts  []decimal.Decimal
	Interval time.Duration
}

// Comparer is the part of Aggregator the watcher needs.
type Comparer interface {
	CompareVenues(ctx context.Context, inputMint, outputMint string, amount decimal.Decimal) *domain.VenueComparison
}

// Watcher runs CompareVenues for every pair and amount on a fixed interval
// and hands each comparison to the reporter.
type Watcher struct {
	comparer Comparer
	reporter Reporter
	config   WatcherConfig
	logger   logger.LoggerInterface

	lastRun atomic.Int64
	done    chan struct{}
	stop    sync.Once
}

// NewWatcher creates a new Watcher.
func NewWatcher(comparer Comparer, reporter Reporter, config WatcherConfig, log logger.LoggerInterface) *Watcher {
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}
	return &Watcher{
		comparer: comparer,
		reporter: reporter,
		config:   config,
		logger:   log,
		done:     make(chan struct{}),
	}
}

// Start runs one round immediately and then one per interval until ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "starting venue watcher",
		"pairs", len(w.config.Pairs),
		"amounts", len(w.config.Amounts),
		"interval", w.config.Interval.String())

	if err := w.reporter.Start(ctx); err != nil {
		return err
	}

	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "watcher stopping", "reason", ctx.Err())
			return
		case <-w.done:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce compares every pair and amount sequentially.
func (w *Watcher) RunOnce(ctx context.Context) {
	for _, p := range w.config.Pairs {
		for _, amount := range w.config.Amounts {
			if ctx.Err() != nil {
				return
			}
			c := w.comparer.CompareVenues(ctx, p.InputMint, p.OutputMint, amount)
			w.reporter.Report(c)

			for _, o := range c.Opportunities {
				w.logger.Info(ctx, "arbitrage opportunity",
					"pair", p.Label,
					"amount", amount.String(),
					"buy", o.BuyVenue,
					"sell", o.SellVenue,
					"spread_pct", o.SpreadPct.StringFixed(4),
					"profit_estimate", o.ProfitEstimate.String())
			}
		}
	}
	w.lastRun.Store(time.Now().UnixNano())
}

// LastRun returns when the last full round finished, zero before the first.
func (w *Watcher) LastRun() time.Time {
	n := w.lastRun.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Stop ends the loop and stops the reporter.
func (w *Watcher) Stop() error {
	w.stop.Do(func() { close(w.done) })
	w.logger.Info(context.Background(), "stopping venue watcher")
	return w.reporter.Stop()
}
