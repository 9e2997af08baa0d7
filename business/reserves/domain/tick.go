package domain

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// TicksPerArray is the number of ticks one tick array covers, in units of
// tick spacing.
const TicksPerArray = 60

// TickArrayWindow returns the [lower, upper) tick bounds of the array holding
// tick.
func TickArrayWindow(tick int32, tickSpacing uint16) (lower, upper int32) {
	if tickSpacing == 0 {
		return tick, tick
	}
	size := int32(TicksPerArray) * int32(tickSpacing)
	start := tick / size
	if tick < 0 && tick%size != 0 {
		start--
	}
	lower = start * size
	return lower, lower + size
}

// TickToPrice returns 1.0001^tick scaled by 10^(decA-decB), the price of A
// in units of B.
func TickToPrice(tick int32, decA, decB uint8) decimal.Decimal {
	p := decimal.NewFromFloat(math.Pow(1.0001, float64(tick)))
	return p.Shift(int32(decA) - int32(decB))
}

var q64 = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 64))

// SqrtPriceX64ToPrice converts a Q64.64 square-root price to a price of A in
// units of B.
func SqrtPriceX64ToPrice(sqrtPriceX64 *big.Int, decA, decB uint8) decimal.Decimal {
	if sqrtPriceX64 == nil || sqrtPriceX64.Sign() == 0 {
		return decimal.Zero
	}
	s := new(big.Float).SetPrec(256).SetInt(sqrtPriceX64)
	s.Quo(s, q64)
	s.Mul(s, s)

	p, err := decimal.NewFromString(s.Text('f', 24))
	if err != nil {
		return decimal.Zero
	}
	return p.Shift(int32(decA) - int32(decB))
}
