package domain

import "github.com/shopspring/decimal"

// MintRef is a mint as reported by the pool registry.
type MintRef struct {
	Address  string
	Symbol   string
	Decimals uint8
}

// RegistryPool is the registry's view of a pool: human-unit amounts that may
// lag the ledger.
type RegistryPool struct {
	ID          string
	Type        string // "Standard" or "Concentrated"
	ProgramID   string
	MintA       MintRef
	MintB       MintRef
	MintAmountA decimal.Decimal
	MintAmountB decimal.Decimal
	FeeRate     decimal.Decimal
	TVL         decimal.Decimal
	VaultA      string
	VaultB      string
}

// PoolKeys are the static addresses and config of a pool.
type PoolKeys struct {
	ID              string
	ProgramID       string
	MintA           MintRef
	MintB           MintRef
	VaultA          string
	VaultB          string
	TickSpacing     uint16
	TradeFeeRate    uint32 // parts per million
	ProtocolFeeRate uint32 // parts per million of the trade fee
}
