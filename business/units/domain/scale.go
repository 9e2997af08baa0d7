// Package domain contains the core domain types for the units context.
package domain

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/solquote/internal/asset"
)

// Scale is the number of fractional digits of an asset's base unit.
type Scale uint8

// DefaultScale is assumed for mints no source knows about.
const DefaultScale Scale = 9

// MaxScale bounds the scales round-tripped exactly.
const MaxScale Scale = 18

// ToBaseUnits multiplies human by 10^scale and rounds half away from zero to
// an integer, returned as a base-10 string.
func ToBaseUnits(human decimal.Decimal, scale Scale) string {
	if human.IsNegative() {
		return "-" + ToBaseUnits(human.Neg(), scale)
	}
	amount, err := asset.FromDecimal(human, uint8(scale))
	if err != nil {
		return "0"
	}
	return amount.Raw().String()
}

// FromBaseUnits divides a base-unit string by 10^scale. Input that does not
// parse as a number yields zero.
func FromBaseUnits(base string, scale Scale) decimal.Decimal {
	if amount, err := asset.ParseRaw(base, uint8(scale)); err == nil {
		return amount.ToDecimal()
	}
	d, err := decimal.NewFromString(base)
	if err != nil {
		return decimal.Zero
	}
	return d.Shift(-int32(scale))
}

// FromBaseUnitsFloat is FromBaseUnits as a float64.
func FromBaseUnitsFloat(base string, scale Scale) float64 {
	f, _ := FromBaseUnits(base, scale).Float64()
	return f
}
