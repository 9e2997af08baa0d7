package app

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	ledgerapp "github.com/fd1az/solquote/business/ledger/app"
	"github.com/fd1az/solquote/business/reserves/domain"
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/asset"
	"github.com/fd1az/solquote/internal/logger"
)

const (
	tracerName = "github.com/fd1az/solquote/business/reserves/app"
	meterName  = "github.com/fd1az/solquote/business/reserves/app"
)

// Request identifies a pool directly or by its mint pair.
type Request struct {
	PoolID   string
	MintA    string
	MintB    string
	Endpoint string // RPC override for this call only
}

type resolverMetrics struct {
	resolves       metric.Int64Counter
	decodeAttempts metric.Int64Counter
}

// Resolver produces a reserve snapshot for a pool, trying each on-chain
// decoder in order and then the registry.
type Resolver struct {
	ledger   ledgerapp.ReaderProvider
	decoders []Decoder
	registry PoolRegistry
	keys     PoolKeysSource
	scales   ScaleRecorder
	logger   logger.LoggerInterface

	tracer  trace.Tracer
	metrics *resolverMetrics
}

// NewResolver creates a Resolver. keys may be nil; it only enriches registry
// snapshots with vault addresses.
func NewResolver(
	ledger ledgerapp.ReaderProvider,
	decoders []Decoder,
	registry PoolRegistry,
	keys PoolKeysSource,
	log logger.LoggerInterface,
	opts ...ResolverOption,
) (*Resolver, error) {
	r := &Resolver{
		ledger:   ledger,
		decoders: decoders,
		registry: registry,
		keys:     keys,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return r, nil
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithScaleRecorder hands decimals that decoders read on-chain to s.
func WithScaleRecorder(s ScaleRecorder) ResolverOption {
	return func(r *Resolver) { r.scales = s }
}

func (r *Resolver) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	r.metrics = &resolverMetrics{}

	r.metrics.resolves, err = meter.Int64Counter(
		"reserves_resolve_total",
		metric.WithDescription("Reserve resolutions by outcome"),
		metric.WithUnit("{resolve}"),
	)
	if err != nil {
		return err
	}

	r.metrics.decodeAttempts, err = meter.Int64Counter(
		"reserves_decode_attempts_total",
		metric.WithDescription("Decoder attempts by decoder and result"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Resolve returns a full snapshot or an error; never a partial snapshot.
//
// Errors: UNRESOLVED_PAIR when no pool id is given and the pair has no pool,
// ACCOUNT_NOT_FOUND when the pool account does not exist, and
// POOL_RESERVES_NOT_FOUND when every source failed.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*domain.PoolReserves, error) {
	ctx, span := r.tracer.Start(ctx, "reserves.resolve",
		trace.WithAttributes(
			attribute.String("pool_id", req.PoolID),
			attribute.String("mint_a", req.MintA),
			attribute.String("mint_b", req.MintB),
		),
	)
	defer span.End()

	res, err := r.resolve(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperror.GetCode(err)))
		r.metrics.resolves.Add(ctx, 1, metric.WithAttributes(
			attribute.String("result", string(apperror.GetCode(err)))))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("kind", res.Kind.String()),
		attribute.String("pool_id", res.PoolID),
	)
	span.SetStatus(codes.Ok, "resolved")
	r.metrics.resolves.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", res.Kind.String())))
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, req Request) (*domain.PoolReserves, error) {
	poolID := req.PoolID
	if poolID == "" {
		id, err := r.lookupPair(ctx, req.MintA, req.MintB)
		if err != nil {
			return nil, err
		}
		poolID = id
	}

	address, err := solana.PublicKeyFromBase58(poolID)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithCause(err),
			apperror.WithContextf("pool id %q", poolID))
	}

	reader := r.ledger.ReaderFor(req.Endpoint)
	account, err := reader.GetAccount(ctx, address)
	switch {
	case apperror.HasCode(err, apperror.CodeAccountNotFound):
		return nil, err
	case err != nil:
		r.logger.Warn(ctx, "pool account read failed, skipping on-chain decoders",
			"pool_id", poolID, "error", err)
	default:
		dc := DecodeContext{Reader: reader, MintA: req.MintA, MintB: req.MintB, Scales: r.scales}
		for _, d := range r.decoders {
			res, derr := d.Attempt(ctx, account, dc)
			if derr == nil && res != nil {
				r.recordAttempt(ctx, d.Name(), "ok")
				return res, nil
			}
			r.recordAttempt(ctx, d.Name(), "failed")
			r.logger.Debug(ctx, "decoder did not match",
				"decoder", d.Name(), "pool_id", poolID, "error", derr)
		}
	}

	if res := r.fromRegistry(ctx, poolID, req.MintA, req.MintB); res != nil {
		return res, nil
	}

	return nil, apperror.NotFound(apperror.CodePoolReservesNotFound, "pool "+poolID)
}

func (r *Resolver) lookupPair(ctx context.Context, mintA, mintB string) (string, error) {
	if mintA == "" || mintB == "" {
		return "", apperror.Validation(apperror.CodeUnresolvedPair, "pool id or both mints are required")
	}
	if r.registry == nil {
		return "", apperror.Validation(apperror.CodeUnresolvedPair, mintA+"/"+mintB)
	}

	id, err := r.registry.PoolIDByPair(ctx, mintA, mintB)
	if err != nil {
		return "", apperror.New(apperror.CodeUnresolvedPair,
			apperror.WithCause(err),
			apperror.WithContext(mintA+"/"+mintB))
	}
	if id == "" {
		return "", apperror.Validation(apperror.CodeUnresolvedPair, mintA+"/"+mintB)
	}

	r.logger.Debug(ctx, "resolved pool by pair", "mint_a", mintA, "mint_b", mintB, "pool_id", id)
	return id, nil
}

// fromRegistry builds a snapshot from registry amounts: by id first, then by
// pair when the id is unknown to the registry.
func (r *Resolver) fromRegistry(ctx context.Context, poolID, mintA, mintB string) *domain.PoolReserves {
	if r.registry == nil {
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "reserves.registry_fallback")
	defer span.End()

	pools, err := r.registry.PoolsByID(ctx, poolID)
	if err != nil {
		span.RecordError(err)
		r.logger.Warn(ctx, "registry lookup by id failed", "pool_id", poolID, "error", err)
	}
	if len(pools) == 0 && mintA != "" && mintB != "" {
		pools, err = r.registry.PoolsByPair(ctx, mintA, mintB)
		if err != nil {
			span.RecordError(err)
			r.logger.Warn(ctx, "registry lookup by pair failed",
				"mint_a", mintA, "mint_b", mintB, "error", err)
		}
	}
	if len(pools) == 0 {
		r.recordAttempt(ctx, "registry", "failed")
		return nil
	}

	p := pools[0]
	if p.VaultA == "" || p.VaultB == "" {
		var keysErr error
		if r.keys != nil {
			keys, err := r.keys.PoolKeys(ctx, p.ID)
			if err == nil && keys != nil {
				p.VaultA, p.VaultB = keys.VaultA, keys.VaultB
			}
			keysErr = err
		}
		// Balances stay usable; only the vault addresses are missing.
		if p.VaultA == "" || p.VaultB == "" {
			r.logger.Warn(ctx, "registry snapshot has no vault addresses",
				"pool_id", p.ID, "error", keysErr)
		}
	}

	rawA, errA := toRaw(p.MintAmountA, p.MintA.Decimals)
	rawB, errB := toRaw(p.MintAmountB, p.MintB.Decimals)
	if errA != nil || errB != nil {
		r.recordAttempt(ctx, "registry", "failed")
		r.logger.Warn(ctx, "registry returned unusable amounts", "pool_id", p.ID)
		return nil
	}

	res := domain.NewPoolReserves(domain.PoolKindRegistry, p.ID,
		domain.VaultInfo{Address: p.VaultA, Amount: rawA, Mint: p.MintA.Address},
		domain.VaultInfo{Address: p.VaultB, Amount: rawB, Mint: p.MintB.Address},
	)
	if !p.FeeRate.IsZero() {
		fee := p.FeeRate
		res.Fees = &domain.FeeSchedule{TradeFeeRate: &fee}
	}
	res.RawState = p

	r.recordAttempt(ctx, "registry", "ok")
	span.SetStatus(codes.Ok, "resolved")
	return res
}

func toRaw(human decimal.Decimal, decimals uint8) (*big.Int, error) {
	amount, err := asset.FromDecimal(human, decimals)
	if err != nil {
		return nil, err
	}
	return amount.Raw(), nil
}

func (r *Resolver) recordAttempt(ctx context.Context, decoder, result string) {
	r.metrics.decodeAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("decoder", decoder),
		attribute.String("result", result),
	))
}

// SetEndpoint sets the global RPC override and drops the memoized client.
func (r *Resolver) SetEndpoint(url string) {
	r.ledger.SetEndpoint(url)
}

// Endpoint returns the global RPC override, "" when unset.
func (r *Resolver) Endpoint() string {
	return r.ledger.Endpoint()
}

// ClearClientCache drops the memoized RPC client.
func (r *Resolver) ClearClientCache() {
	r.ledger.Clear()
}
