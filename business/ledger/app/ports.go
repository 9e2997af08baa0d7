// Package app contains port definitions for the ledger context.
package app

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/fd1az/solquote/business/ledger/domain"
)

// Reader performs read-only ledger calls against one RPC endpoint.
type Reader interface {
	// GetAccount returns ACCOUNT_NOT_FOUND when the address holds no account.
	GetAccount(ctx context.Context, address solana.PublicKey) (*domain.Account, error)

	// GetTokenBalance reads an SPL token account balance.
	GetTokenBalance(ctx context.Context, tokenAccount solana.PublicKey) (*domain.TokenBalance, error)

	// GetMintInfo reads an SPL mint's supply and decimals.
	GetMintInfo(ctx context.Context, mint solana.PublicKey) (*domain.MintInfo, error)

	// Ping checks the endpoint is reachable and returns the current slot.
	Ping(ctx context.Context) (uint64, error)
}

// ReaderProvider hands out Readers by endpoint and owns the global
// endpoint override.
type ReaderProvider interface {
	// ReaderFor returns a Reader for override, or for the effective
	// endpoint when override is empty.
	ReaderFor(override string) Reader

	// SetEndpoint sets the global override and drops the memoized client.
	SetEndpoint(url string)

	// Endpoint returns the global override, or "" when unset.
	Endpoint() string

	// Clear drops the memoized client.
	Clear()
}
