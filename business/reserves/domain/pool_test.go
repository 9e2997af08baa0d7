package domain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolReserves(t *testing.T) {
	r := NewPoolReserves(PoolKindAMMv4, "pool",
		VaultInfo{Address: "va", Amount: big.NewInt(2_000_000_000), Mint: "a"},
		VaultInfo{Address: "vb", Amount: big.NewInt(300_000_000), Mint: "b"},
	)

	assert.Equal(t, PoolKindAMMv4, r.Kind)
	assert.Equal(t, 0, r.Depth.Cmp(big.NewInt(300_000_000)))
	assert.True(t, decimal.RequireFromString("0.15").Equal(r.MidPrice))
}

func TestNewPoolReserves_DepthIsCopyOfSmallerVault(t *testing.T) {
	a := big.NewInt(500)
	r := NewPoolReserves(PoolKindCLMM, "pool",
		VaultInfo{Amount: a},
		VaultInfo{Amount: big.NewInt(900)},
	)
	require.Equal(t, 0, r.Depth.Cmp(a))

	r.Depth.SetInt64(1)
	assert.Equal(t, int64(500), r.VaultA.Amount.Int64())
}

func TestNewPoolReserves_EmptyVault(t *testing.T) {
	r := NewPoolReserves(PoolKindRegistry, "pool",
		VaultInfo{Amount: big.NewInt(0)},
		VaultInfo{},
	)

	assert.True(t, r.MidPrice.IsZero())
	assert.Equal(t, 0, r.Depth.Sign())
	require.NotNil(t, r.VaultB.Amount)
}

func TestRatio(t *testing.T) {
	r := Ratio(25, 10000)
	require.NotNil(t, r)
	assert.True(t, decimal.RequireFromString("0.0025").Equal(*r))
	assert.Nil(t, Ratio(1, 0))
}

func TestTickArrayWindow(t *testing.T) {
	tests := []struct {
		name      string
		tick      int32
		spacing   uint16
		wantLower int32
		wantUpper int32
	}{
		{"origin", 0, 1, 0, 60},
		{"positive", 125, 1, 120, 180},
		{"spacing_10", 1234, 10, 1200, 1800},
		{"negative", -1, 1, -60, 0},
		{"negative_boundary", -60, 1, -60, 0},
		{"negative_spacing_64", -18000, 64, -19200, -15360},
		{"zero_spacing", 7, 0, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, upper := TickArrayWindow(tt.tick, tt.spacing)
			assert.Equal(t, tt.wantLower, lower)
			assert.Equal(t, tt.wantUpper, upper)
		})
	}
}

func TestTickToPrice(t *testing.T) {
	assert.InDelta(t, 1.0, TickToPrice(0, 6, 6).InexactFloat64(), 1e-12)
	assert.InDelta(t, 1000.0, TickToPrice(0, 9, 6).InexactFloat64(), 1e-9)
	// 1.0001^-23028 ≈ 0.1
	assert.InDelta(t, 100.0, TickToPrice(-23028, 9, 6).InexactFloat64(), 0.05)
}

func TestSqrtPriceX64ToPrice(t *testing.T) {
	one := new(big.Int).Lsh(big.NewInt(1), 64)
	assert.InDelta(t, 1.0, SqrtPriceX64ToPrice(one, 6, 6).InexactFloat64(), 1e-12)

	two := new(big.Int).Lsh(big.NewInt(2), 64)
	assert.InDelta(t, 4000.0, SqrtPriceX64ToPrice(two, 9, 6).InexactFloat64(), 1e-6)

	assert.True(t, SqrtPriceX64ToPrice(nil, 9, 6).IsZero())
}
