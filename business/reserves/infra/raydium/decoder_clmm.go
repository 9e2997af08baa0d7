package raydium

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	ledgerdomain "github.com/fd1az/solquote/business/ledger/domain"
	"github.com/fd1az/solquote/business/reserves/app"
	"github.com/fd1az/solquote/business/reserves/domain"
	unitsdomain "github.com/fd1az/solquote/business/units/domain"
	"github.com/fd1az/solquote/internal/logger"
)

const feeRateDenominator = 1_000_000

// CLMMDecoder decodes concentrated-liquidity pools. It needs the pair from
// the caller and the pool keys from the registry.
type CLMMDecoder struct {
	programID solana.PublicKey
	keys      app.PoolKeysSource
	logger    logger.LoggerInterface
	tracer    trace.Tracer
}

func NewCLMMDecoder(keys app.PoolKeysSource, log logger.LoggerInterface) *CLMMDecoder {
	return &CLMMDecoder{
		programID: CLMMProgramID,
		keys:      keys,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}
}

func (d *CLMMDecoder) Name() string {
	return "clmm"
}

// Attempt decodes account as a CLMM PoolState.
func (d *CLMMDecoder) Attempt(ctx context.Context, account *ledgerdomain.Account, dc app.DecodeContext) (*domain.PoolReserves, error) {
	ctx, span := d.tracer.Start(ctx, "reserves.decode.clmm",
		trace.WithAttributes(attribute.String("pool_id", account.Address.String())),
	)
	defer span.End()

	res, err := d.attempt(ctx, account, dc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("tick_current", int(res.Concentrated.TickCurrent)))
	span.SetStatus(codes.Ok, "decoded")
	return res, nil
}

func (d *CLMMDecoder) attempt(ctx context.Context, account *ledgerdomain.Account, dc app.DecodeContext) (*domain.PoolReserves, error) {
	poolID := account.Address.String()

	if dc.MintA == "" || dc.MintB == "" {
		return nil, decodeFailure(poolID, fmt.Errorf("both mints are required"))
	}
	if !account.Owner.Equals(d.programID) {
		return nil, decodeFailure(poolID, fmt.Errorf("owner %s is not the clmm program", account.Owner))
	}
	if len(account.Data) < CLMMPoolStateSize {
		return nil, decodeFailure(poolID, fmt.Errorf("account is %d bytes, want %d", len(account.Data), CLMMPoolStateSize))
	}

	st, err := DecodeCLMMPoolState(account.Data)
	if err != nil {
		return nil, decodeFailure(poolID, err)
	}
	if st.Discriminator != clmmPoolStateDiscriminator {
		return nil, decodeFailure(poolID, fmt.Errorf("not a PoolState account"))
	}

	mint0, mint1 := st.TokenMint0.String(), st.TokenMint1.String()
	if !samePair(mint0, mint1, dc.MintA, dc.MintB) {
		return nil, decodeFailure(poolID, fmt.Errorf("pool mints %s/%s do not match %s/%s", mint0, mint1, dc.MintA, dc.MintB))
	}

	keys, err := d.keys.PoolKeys(ctx, poolID)
	if err == nil && keys == nil {
		err = fmt.Errorf("registry has no keys for pool")
	}
	if err != nil {
		return nil, decodeFailure(poolID, err)
	}

	vault0, vault1 := st.TokenVault0, st.TokenVault1
	if keys.VaultA != "" && keys.VaultB != "" {
		if vault0, err = solana.PublicKeyFromBase58(keys.VaultA); err != nil {
			return nil, decodeFailure(poolID, err)
		}
		if vault1, err = solana.PublicKeyFromBase58(keys.VaultB); err != nil {
			return nil, decodeFailure(poolID, err)
		}
	}

	var (
		dec0, dec1       uint8
		amount0, amount1 *big.Int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info, err := dc.Reader.GetMintInfo(gctx, st.TokenMint0)
		if err != nil {
			return err
		}
		dec0 = info.Decimals()
		return nil
	})
	g.Go(func() error {
		info, err := dc.Reader.GetMintInfo(gctx, st.TokenMint1)
		if err != nil {
			return err
		}
		dec1 = info.Decimals()
		return nil
	})
	g.Go(func() error {
		bal, err := dc.Reader.GetTokenBalance(gctx, vault0)
		if err != nil {
			return err
		}
		amount0 = bal.Amount.Raw()
		return nil
	})
	g.Go(func() error {
		bal, err := dc.Reader.GetTokenBalance(gctx, vault1)
		if err != nil {
			return err
		}
		amount1 = bal.Amount.Raw()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, decodeFailure(poolID, err)
	}

	if dc.Scales != nil {
		dc.Scales.Remember(ctx, mint0, unitsdomain.Scale(dec0))
		dc.Scales.Remember(ctx, mint1, unitsdomain.Scale(dec1))
	}

	tickSpacing := st.TickSpacing
	if tickSpacing == 0 {
		tickSpacing = keys.TickSpacing
	}
	lower, upper := domain.TickArrayWindow(st.TickCurrent, tickSpacing)
	sqrtPrice := st.SqrtPriceX64.BigInt()

	res := domain.NewPoolReserves(domain.PoolKindCLMM, poolID,
		domain.VaultInfo{Address: vault0.String(), Amount: amount0, Mint: mint0},
		domain.VaultInfo{Address: vault1.String(), Amount: amount1, Mint: mint1},
	)
	res.Concentrated = &domain.ConcentratedState{
		TickCurrent:  st.TickCurrent,
		TickSpacing:  tickSpacing,
		TickLower:    lower,
		TickUpper:    upper,
		PriceLower:   domain.TickToPrice(lower, dec0, dec1),
		PriceUpper:   domain.TickToPrice(upper, dec0, dec1),
		PriceCurrent: domain.SqrtPriceX64ToPrice(sqrtPrice, dec0, dec1),
		Liquidity:    st.Liquidity.BigInt(),
		SqrtPriceX64: sqrtPrice,
		DecimalsA:    dec0,
		DecimalsB:    dec1,
	}
	if keys.TradeFeeRate > 0 {
		res.Fees = &domain.FeeSchedule{
			TradeFeeRate:    domain.Ratio(uint64(keys.TradeFeeRate), feeRateDenominator),
			ProtocolFeeRate: domain.Ratio(uint64(keys.ProtocolFeeRate), feeRateDenominator),
		}
	}
	res.RawState = keys

	d.logger.Debug(ctx, "decoded clmm pool",
		"pool_id", poolID,
		"tick", st.TickCurrent,
		"window_lower", lower,
		"window_upper", upper)

	return res, nil
}

func samePair(a, b, x, y string) bool {
	return (a == x && b == y) || (a == y && b == x)
}

var _ app.Decoder = (*CLMMDecoder)(nil)
