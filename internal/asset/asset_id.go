// Package asset models SPL token mints and base-unit amounts.
// Amounts are big.Int in the mint's smallest unit; decimal.Decimal is only
// used at the human-readable boundary.
package asset

import (
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/fd1az/solquote/internal/apperror"
)

// AssetID identifies an SPL token by its mint address.
type AssetID struct {
	mint solana.PublicKey
}

// NewAssetID wraps a mint public key.
func NewAssetID(mint solana.PublicKey) AssetID {
	return AssetID{mint: mint}
}

// ParseAssetID parses a base58 mint address.
func ParseAssetID(s string) (AssetID, error) {
	pk, err := solana.PublicKeyFromBase58(strings.TrimSpace(s))
	if err != nil {
		return AssetID{}, apperror.New(apperror.CodeInvalidMint,
			apperror.WithContext(s), apperror.WithCause(err))
	}
	return AssetID{mint: pk}, nil
}

// MustAssetID parses a base58 mint address and panics on failure.
func MustAssetID(s string) AssetID {
	return AssetID{mint: solana.MustPublicKeyFromBase58(s)}
}

// Mint returns the mint public key.
func (id AssetID) Mint() solana.PublicKey {
	return id.mint
}

// IsZero reports whether the id holds the all-zero key.
func (id AssetID) IsZero() bool {
	return id.mint.IsZero()
}

// String returns the base58 mint address.
func (id AssetID) String() string {
	return id.mint.String()
}

// Equals compares two ids by mint.
func (id AssetID) Equals(other AssetID) bool {
	return id.mint.Equals(other.mint)
}
