// Package domain contains the core domain types for the ledger context.
package domain

import (
	"github.com/gagliardetto/solana-go"

	"github.com/fd1az/solquote/internal/asset"
)

// Account is a raw account read from the ledger at one slot.
type Account struct {
	Address  solana.PublicKey
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
	Slot     uint64
}

// TokenBalance is the amount held by an SPL token account.
type TokenBalance struct {
	Account solana.PublicKey
	Amount  asset.Amount
	Slot    uint64
}

// MintInfo is the supply and decimals of an SPL mint.
type MintInfo struct {
	Mint   solana.PublicKey
	Supply asset.Amount
	Slot   uint64
}

// Decimals returns the mint's decimal scale.
func (m MintInfo) Decimals() uint8 {
	return m.Supply.Decimals()
}
