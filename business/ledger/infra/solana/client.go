// Package solana provides Solana JSON-RPC adapters for the ledger context.
package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	sol "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solquote/business/ledger/domain"
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/asset"
	"github.com/fd1az/solquote/internal/circuitbreaker"
	"github.com/fd1az/solquote/internal/logger"
	"github.com/fd1az/solquote/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/solquote/business/ledger/infra/solana"
	meterName  = "github.com/fd1az/solquote/business/ledger/infra/solana"
)

// ClientConfig holds configuration for one RPC endpoint.
type ClientConfig struct {
	RPCURL            string
	Timeout           time.Duration // Per call
	Commitment        rpc.CommitmentType
	RequestsPerMinute int // 0 disables throttling
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(rpcURL string) ClientConfig {
	return ClientConfig{
		RPCURL:     rpcURL,
		Timeout:    30 * time.Second,
		Commitment: rpc.CommitmentConfirmed,
	}
}

// clientMetrics holds OTEL metric instruments.
type clientMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// Client reads accounts through a single RPC endpoint.
type Client struct {
	config ClientConfig
	logger logger.LoggerInterface

	rpc     *rpc.Client
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[any]

	tracer  trace.Tracer
	metrics *clientMetrics
}

// NewClient creates a client for cfg.RPCURL. No connection is opened until
// the first call.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("ledger rpc url is empty"))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentConfirmed
	}

	c := &Client{
		config:  cfg,
		logger:  log,
		rpc:     rpc.New(cfg.RPCURL),
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		tracer:  otel.Tracer(tracerName),
	}

	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	c.initCircuitBreaker()

	return c, nil
}

// initMetrics initializes OTEL metric instruments.
func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.calls, err = meter.Int64Counter(
		"ledger_rpc_calls_total",
		metric.WithDescription("Total ledger RPC calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return err
	}

	c.metrics.duration, err = meter.Float64Histogram(
		"ledger_rpc_duration_seconds",
		metric.WithDescription("Ledger RPC call latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	return nil
}

// initCircuitBreaker initializes the circuit breaker. Missing accounts are
// answers, not endpoint failures.
func (c *Client) initCircuitBreaker() {
	cfg := circuitbreaker.DefaultConfig("ledger:" + c.config.RPCURL)
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, rpc.ErrNotFound)
	}
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		c.logger.Warn(context.Background(), "ledger circuit breaker state changed",
			"name", name, "from", from.String(), "to", to.String())
	}
	c.cb = circuitbreaker.New[any](cfg)
}

// Endpoint returns the RPC URL this client talks to.
func (c *Client) Endpoint() string {
	return c.config.RPCURL
}

// call runs fn with throttling, the per-call timeout, the breaker and metrics.
func call[T any](ctx context.Context, c *Client, method string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if err := c.limiter.Wait(ctx); err != nil {
		return zero, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	res, err := c.cb.Execute(func() (any, error) {
		return fn(ctx)
	})

	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.Bool("success", err == nil || errors.Is(err, rpc.ErrNotFound)),
	)
	c.metrics.calls.Add(ctx, 1, attrs)
	c.metrics.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	if err != nil {
		return zero, err
	}
	out, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected %s result type %T", method, res)
	}
	return out, nil
}

// classify maps a transport error onto the ledger error codes.
func (c *Client) classify(err error, what string) error {
	switch {
	case errors.Is(err, rpc.ErrNotFound):
		return apperror.NotFound(apperror.CodeAccountNotFound, what)
	case circuitbreaker.IsOpen(err):
		return apperror.New(apperror.CodeCircuitOpen, apperror.WithCause(err), apperror.WithContext(what))
	default:
		return apperror.External(apperror.CodeLedgerRPCError, what, err)
	}
}

// GetAccount fetches the raw account at address.
func (c *Client) GetAccount(ctx context.Context, address sol.PublicKey) (*domain.Account, error) {
	ctx, span := c.tracer.Start(ctx, "ledger.get_account",
		trace.WithAttributes(attribute.String("address", address.String())),
	)
	defer span.End()

	out, err := call(ctx, c, "getAccountInfo", func(ctx context.Context) (*rpc.GetAccountInfoResult, error) {
		return c.rpc.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
			Encoding:   sol.EncodingBase64,
			Commitment: c.config.Commitment,
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, c.classify(err, "account "+address.String())
	}
	if out == nil || out.Value == nil {
		return nil, apperror.NotFound(apperror.CodeAccountNotFound, "account "+address.String())
	}

	account := &domain.Account{
		Address:  address,
		Owner:    out.Value.Owner,
		Lamports: out.Value.Lamports,
		Slot:     out.Context.Slot,
	}
	if out.Value.Data != nil {
		account.Data = out.Value.Data.GetBinary()
	}

	span.SetAttributes(attribute.Int("data_len", len(account.Data)))
	span.SetStatus(codes.Ok, "fetched")
	return account, nil
}

// GetTokenBalance reads the balance of an SPL token account.
func (c *Client) GetTokenBalance(ctx context.Context, tokenAccount sol.PublicKey) (*domain.TokenBalance, error) {
	ctx, span := c.tracer.Start(ctx, "ledger.get_token_balance",
		trace.WithAttributes(attribute.String("account", tokenAccount.String())),
	)
	defer span.End()

	out, err := call(ctx, c, "getTokenAccountBalance", func(ctx context.Context) (*rpc.GetTokenAccountBalanceResult, error) {
		return c.rpc.GetTokenAccountBalance(ctx, tokenAccount, c.config.Commitment)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, c.classify(err, "token account "+tokenAccount.String())
	}
	if out == nil || out.Value == nil {
		return nil, apperror.NotFound(apperror.CodeAccountNotFound, "token account "+tokenAccount.String())
	}

	amount, err := asset.ParseRaw(out.Value.Amount, out.Value.Decimals)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.External(apperror.CodeLedgerRPCError, "token account "+tokenAccount.String(), err)
	}

	span.SetStatus(codes.Ok, "fetched")
	return &domain.TokenBalance{
		Account: tokenAccount,
		Amount:  amount,
		Slot:    out.Context.Slot,
	}, nil
}

// GetMintInfo reads an SPL mint's supply and decimals.
func (c *Client) GetMintInfo(ctx context.Context, mint sol.PublicKey) (*domain.MintInfo, error) {
	ctx, span := c.tracer.Start(ctx, "ledger.get_mint_info",
		trace.WithAttributes(attribute.String("mint", mint.String())),
	)
	defer span.End()

	out, err := call(ctx, c, "getTokenSupply", func(ctx context.Context) (*rpc.GetTokenSupplyResult, error) {
		return c.rpc.GetTokenSupply(ctx, mint, c.config.Commitment)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, c.classify(err, "mint "+mint.String())
	}
	if out == nil || out.Value == nil {
		return nil, apperror.NotFound(apperror.CodeAccountNotFound, "mint "+mint.String())
	}

	supply, err := asset.ParseRaw(out.Value.Amount, out.Value.Decimals)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.External(apperror.CodeLedgerRPCError, "mint "+mint.String(), err)
	}

	span.SetStatus(codes.Ok, "fetched")
	return &domain.MintInfo{
		Mint:   mint,
		Supply: supply,
		Slot:   out.Context.Slot,
	}, nil
}

// Ping returns the current slot.
func (c *Client) Ping(ctx context.Context) (uint64, error) {
	ctx, span := c.tracer.Start(ctx, "ledger.ping")
	defer span.End()

	slot, err := call(ctx, c, "getSlot", func(ctx context.Context) (uint64, error) {
		return c.rpc.GetSlot(ctx, c.config.Commitment)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ping failed")
		return 0, apperror.New(apperror.CodeLedgerConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext(c.config.RPCURL))
	}

	span.SetAttributes(attribute.Int64("slot", int64(slot)))
	span.SetStatus(codes.Ok, "reachable")
	return slot, nil
}

// Close releases the underlying HTTP transport.
func (c *Client) Close() error {
	return c.rpc.Close()
}

