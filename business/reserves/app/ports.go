// Package app contains application services and port definitions for the
// reserves context.
package app

import (
	"context"

	ledgerapp "github.com/fd1az/solquote/business/ledger/app"
	ledgerdomain "github.com/fd1az/solquote/business/ledger/domain"
	"github.com/fd1az/solquote/business/reserves/domain"
	unitsdomain "github.com/fd1az/solquote/business/units/domain"
)

// DecodeContext is what a decoder gets besides the pool account.
type DecodeContext struct {
	Reader ledgerapp.Reader
	MintA  string // optional caller hint
	MintB  string // optional caller hint
	Scales ScaleRecorder // may be nil
}

// ScaleRecorder learns mint decimals read from the ledger.
type ScaleRecorder interface {
	Remember(ctx context.Context, mint string, scale unitsdomain.Scale)
}

// Decoder turns a pool account into a snapshot for one on-chain layout.
// Attempt returns a DECODE_FAILURE error when the account is not of its
// layout or any read it needs fails.
type Decoder interface {
	Name() string
	Attempt(ctx context.Context, account *ledgerdomain.Account, dc DecodeContext) (*domain.PoolReserves, error)
}

// PoolRegistry is the off-chain pool index.
type PoolRegistry interface {
	// PoolIDByPair returns the deepest pool for the pair, "" when none.
	PoolIDByPair(ctx context.Context, mintA, mintB string) (string, error)
	PoolsByID(ctx context.Context, ids ...string) ([]domain.RegistryPool, error)
	PoolsByPair(ctx context.Context, mintA, mintB string) ([]domain.RegistryPool, error)
}

// PoolKeysSource returns a pool's static keys.
type PoolKeysSource interface {
	PoolKeys(ctx context.Context, id string) (*domain.PoolKeys, error)
}
