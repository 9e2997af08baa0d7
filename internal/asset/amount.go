package asset

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNilRaw         = errors.New("asset: nil raw value")
	ErrNegativeAmount = errors.New("asset: negative amount")
	ErrScaleMismatch  = errors.New("asset: cannot operate on amounts with different scales")
	ErrNegativeResult = errors.New("asset: operation would result in negative amount")
	ErrInvalidRaw     = errors.New("asset: raw amount is not a base-10 integer")
)

// Amount is an immutable non-negative quantity in base units together with
// the decimal scale needed to render it.
type Amount struct {
	raw      *big.Int
	decimals uint8
}

// NewAmount creates an Amount from a raw base-unit value.
func NewAmount(raw *big.Int, decimals uint8) Amount {
	if raw == nil {
		panic(ErrNilRaw)
	}
	if raw.Sign() < 0 {
		panic(ErrNegativeAmount)
	}
	return Amount{raw: new(big.Int).Set(raw), decimals: decimals}
}

// Zero returns a zero Amount at the given scale.
func Zero(decimals uint8) Amount {
	return Amount{raw: new(big.Int), decimals: decimals}
}

// NewAmountFromUint64 creates an Amount from a u64 ledger field.
func NewAmountFromUint64(raw uint64, decimals uint8) Amount {
	return Amount{raw: new(big.Int).SetUint64(raw), decimals: decimals}
}

// ParseRaw parses a base-10 base-unit string such as "1500000".
func ParseRaw(s string, decimals uint8) (Amount, error) {
	s = strings.TrimSpace(s)
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidRaw, s)
	}
	if v.Sign() < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{raw: v, decimals: decimals}, nil
}

// FromDecimal scales a human amount to base units, rounding half away from
// zero to the nearest integer.
func FromDecimal(d decimal.Decimal, decimals uint8) (Amount, error) {
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	scaled := d.Shift(int32(decimals)).Round(0)
	return Amount{raw: scaled.BigInt(), decimals: decimals}, nil
}

// Raw returns a copy of the base-unit value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.raw)
}

func (a Amount) Decimals() uint8 {
	return a.decimals
}

func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

func (a Amount) IsPositive() bool {
	return a.raw != nil && a.raw.Sign() > 0
}

// Add sums two amounts of the same scale.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.checkSameScale(b); err != nil {
		return Amount{}, err
	}
	return Amount{raw: new(big.Int).Add(a.Raw(), b.Raw()), decimals: a.decimals}, nil
}

// Sub subtracts b from a; the result may not go below zero.
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.checkSameScale(b); err != nil {
		return Amount{}, err
	}
	if a.Raw().Cmp(b.Raw()) < 0 {
		return Amount{}, ErrNegativeResult
	}
	return Amount{raw: new(big.Int).Sub(a.Raw(), b.Raw()), decimals: a.decimals}, nil
}

// Cmp compares raw values and ignores scale.
func (a Amount) Cmp(b Amount) int {
	return a.Raw().Cmp(b.Raw())
}

// Equals reports equal raw value and scale.
func (a Amount) Equals(b Amount) bool {
	return a.decimals == b.decimals && a.Cmp(b) == 0
}

// MinRaw returns the smaller raw value of x and y.
func MinRaw(x, y *big.Int) *big.Int {
	if x.Cmp(y) <= 0 {
		return new(big.Int).Set(x)
	}
	return new(big.Int).Set(y)
}

// ToDecimal renders the amount in human units.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, -int32(a.decimals))
}

// ToFloat64 is for display and logging only.
func (a Amount) ToFloat64() float64 {
	f, _ := a.ToDecimal().Float64()
	return f
}

// String renders the human amount, e.g. "1.5".
func (a Amount) String() string {
	return a.ToDecimal().String()
}

// StringFixed renders with a fixed number of places.
func (a Amount) StringFixed(places int32) string {
	return a.ToDecimal().StringFixed(places)
}

func (a Amount) checkSameScale(b Amount) error {
	if a.decimals != b.decimals {
		return fmt.Errorf("%w: %d vs %d", ErrScaleMismatch, a.decimals, b.decimals)
	}
	return nil
}
