package raydium

import (
	"context"
	"fmt"
	"math/big"
	"time"

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
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/logger"
)

// AMMv4Details is the RawState of an AMM-v4 snapshot.
type AMMv4Details struct {
	LPMint             string
	LPSupply           *big.Int
	OpenTime           time.Time
	BaseDecimals       uint8
	QuoteDecimals      uint8
	SwapBaseInAmount   *big.Int
	SwapQuoteOutAmount *big.Int
	SwapQuoteInAmount  *big.Int
	SwapBaseOutAmount  *big.Int
}

// AMMv4Decoder decodes constant-product pools.
type AMMv4Decoder struct {
	programID solana.PublicKey
	logger    logger.LoggerInterface
	tracer    trace.Tracer
}

func NewAMMv4Decoder(log logger.LoggerInterface) *AMMv4Decoder {
	return &AMMv4Decoder{
		programID: AMMv4ProgramID,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}
}

func (d *AMMv4Decoder) Name() string {
	return "amm-v4"
}

// Attempt decodes account as LIQUIDITY_STATE_V4 and reads both vaults and the
// LP supply concurrently. Any failed read fails the attempt.
func (d *AMMv4Decoder) Attempt(ctx context.Context, account *ledgerdomain.Account, dc app.DecodeContext) (*domain.PoolReserves, error) {
	ctx, span := d.tracer.Start(ctx, "reserves.decode.amm_v4",
		trace.WithAttributes(attribute.String("pool_id", account.Address.String())),
	)
	defer span.End()

	res, err := d.attempt(ctx, account, dc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "decoded")
	return res, nil
}

func (d *AMMv4Decoder) attempt(ctx context.Context, account *ledgerdomain.Account, dc app.DecodeContext) (*domain.PoolReserves, error) {
	poolID := account.Address.String()

	if !account.Owner.Equals(d.programID) {
		return nil, decodeFailure(poolID, fmt.Errorf("owner %s is not the amm-v4 program", account.Owner))
	}
	if len(account.Data) != AMMv4StateSize {
		return nil, decodeFailure(poolID, fmt.Errorf("account is %d bytes, want %d", len(account.Data), AMMv4StateSize))
	}

	st, err := DecodeAMMv4State(account.Data)
	if err != nil {
		return nil, decodeFailure(poolID, err)
	}

	if st.BaseVault.IsZero() || st.QuoteVault.IsZero() || st.BaseMint.IsZero() || st.QuoteMint.IsZero() {
		return nil, decodeFailure(poolID, fmt.Errorf("zero vault or mint"))
	}
	if st.SwapFeeDenominator == 0 || st.PnlDenominator == 0 {
		return nil, decodeFailure(poolID, fmt.Errorf("zero fee denominator"))
	}

	var (
		baseAmount, quoteAmount *big.Int
		lpSupply                = new(big.Int)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bal, err := dc.Reader.GetTokenBalance(gctx, st.BaseVault)
		if err != nil {
			return err
		}
		baseAmount = bal.Amount.Raw()
		return nil
	})
	g.Go(func() error {
		bal, err := dc.Reader.GetTokenBalance(gctx, st.QuoteVault)
		if err != nil {
			return err
		}
		quoteAmount = bal.Amount.Raw()
		return nil
	})
	if !st.LpMint.IsZero() {
		g.Go(func() error {
			info, err := dc.Reader.GetMintInfo(gctx, st.LpMint)
			if err != nil {
				return err
			}
			lpSupply = info.Supply.Raw()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, decodeFailure(poolID, err)
	}

	if dc.Scales != nil {
		dc.Scales.Remember(ctx, st.BaseMint.String(), unitsdomain.Scale(st.BaseDecimal))
		dc.Scales.Remember(ctx, st.QuoteMint.String(), unitsdomain.Scale(st.QuoteDecimal))
	}

	res := domain.NewPoolReserves(domain.PoolKindAMMv4, poolID,
		domain.VaultInfo{Address: st.BaseVault.String(), Amount: baseAmount, Mint: st.BaseMint.String()},
		domain.VaultInfo{Address: st.QuoteVault.String(), Amount: quoteAmount, Mint: st.QuoteMint.String()},
	)
	res.Fees = &domain.FeeSchedule{
		TradeFeeRate:    domain.Ratio(st.SwapFeeNumerator, st.SwapFeeDenominator),
		ProtocolFeeRate: domain.Ratio(st.PnlNumerator, st.PnlDenominator),
	}
	res.RawState = &AMMv4Details{
		LPMint:             st.LpMint.String(),
		LPSupply:           lpSupply,
		OpenTime:           time.Unix(int64(st.PoolOpenTime), 0).UTC(),
		BaseDecimals:       uint8(st.BaseDecimal),
		QuoteDecimals:      uint8(st.QuoteDecimal),
		SwapBaseInAmount:   st.SwapBaseInAmount.BigInt(),
		SwapQuoteOutAmount: st.SwapQuoteOutAmount.BigInt(),
		SwapQuoteInAmount:  st.SwapQuoteInAmount.BigInt(),
		SwapBaseOutAmount:  st.SwapBaseOutAmount.BigInt(),
	}

	d.logger.Debug(ctx, "decoded amm-v4 pool",
		"pool_id", poolID,
		"base", baseAmount.String(),
		"quote", quoteAmount.String())

	return res, nil
}

func decodeFailure(poolID string, cause error) error {
	return apperror.New(apperror.CodeDecodeFailure,
		apperror.WithCause(cause),
		apperror.WithContext("pool "+poolID))
}

var _ app.Decoder = (*AMMv4Decoder)(nil)
