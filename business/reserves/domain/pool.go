// Package domain contains the core domain types for the reserves context.
package domain

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/fd1az/solquote/internal/asset"
)

// PoolKind names the source a snapshot was decoded from.
type PoolKind string

const (
	PoolKindAMMv4    PoolKind = "layoutA"
	PoolKindCLMM     PoolKind = "layoutB"
	PoolKindRegistry PoolKind = "registry"
)

func (k PoolKind) String() string {
	return string(k)
}

// VaultInfo is one side of a pool: the token account holding the reserve.
type VaultInfo struct {
	Address string
	Amount  *big.Int // base units
	Mint    string
}

// FeeSchedule holds fee fractions, e.g. 0.0025 for 25 bps.
type FeeSchedule struct {
	TradeFeeRate    *decimal.Decimal
	ProtocolFeeRate *decimal.Decimal
}

// ConcentratedState describes the active tick-array window of a
// concentrated-liquidity pool.
type ConcentratedState struct {
	TickCurrent  int32
	TickSpacing  uint16
	TickLower    int32
	TickUpper    int32
	PriceLower   decimal.Decimal
	PriceUpper   decimal.Decimal
	PriceCurrent decimal.Decimal
	Liquidity    *big.Int
	SqrtPriceX64 *big.Int
	DecimalsA    uint8
	DecimalsB    uint8
}

// PoolReserves is a point-in-time snapshot of a pool's reserves. It is built
// once per request and not modified afterwards.
type PoolReserves struct {
	Kind         PoolKind
	PoolID       string
	VaultA       VaultInfo
	VaultB       VaultInfo
	MidPrice     decimal.Decimal // raw vaultB / raw vaultA
	Depth        *big.Int        // min(vaultA, vaultB), raw
	Fees         *FeeSchedule
	Concentrated *ConcentratedState
	RawState     any
}

// NewPoolReserves derives MidPrice and Depth from the two vaults.
func NewPoolReserves(kind PoolKind, poolID string, a, b VaultInfo) *PoolReserves {
	if a.Amount == nil {
		a.Amount = new(big.Int)
	}
	if b.Amount == nil {
		b.Amount = new(big.Int)
	}

	mid := decimal.Zero
	if a.Amount.Sign() > 0 {
		mid = decimal.NewFromBigInt(b.Amount, 0).DivRound(decimal.NewFromBigInt(a.Amount, 0), 18)
	}

	return &PoolReserves{
		Kind:     kind,
		PoolID:   poolID,
		VaultA:   a,
		VaultB:   b,
		MidPrice: mid,
		Depth:    asset.MinRaw(a.Amount, b.Amount),
	}
}

// Ratio returns num/den as a fee fraction, or nil when den is zero.
func Ratio(num, den uint64) *decimal.Decimal {
	if den == 0 {
		return nil
	}
	r := decimal.NewFromBigInt(new(big.Int).SetUint64(num), 0).
		DivRound(decimal.NewFromBigInt(new(big.Int).SetUint64(den), 0), 18)
	return &r
}
