// Package ledgertest provides an in-memory ledger for tests.
package ledgertest

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/fd1az/solquote/business/ledger/app"
	"github.com/fd1az/solquote/business/ledger/domain"
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/asset"
)

// Reader serves accounts, balances and mints from maps. Unknown keys answer
// ACCOUNT_NOT_FOUND; keys in Errors answer that error.
type Reader struct {
	mu       sync.Mutex
	Accounts map[solana.PublicKey]*domain.Account
	Balances map[solana.PublicKey]asset.Amount
	Mints    map[solana.PublicKey]asset.Amount
	Errors   map[solana.PublicKey]error
	Calls    int
}

func NewReader() *Reader {
	return &Reader{
		Accounts: make(map[solana.PublicKey]*domain.Account),
		Balances: make(map[solana.PublicKey]asset.Amount),
		Mints:    make(map[solana.PublicKey]asset.Amount),
		Errors:   make(map[solana.PublicKey]error),
	}
}

// SetAccount stores a raw account.
func (r *Reader) SetAccount(address, owner solana.PublicKey, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Accounts[address] = &domain.Account{Address: address, Owner: owner, Data: data, Slot: 1}
}

// SetBalance stores a token account balance.
func (r *Reader) SetBalance(account solana.PublicKey, raw uint64, decimals uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Balances[account] = asset.NewAmountFromUint64(raw, decimals)
}

// SetMint stores a mint's supply and decimals.
func (r *Reader) SetMint(mint solana.PublicKey, supply uint64, decimals uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Mints[mint] = asset.NewAmountFromUint64(supply, decimals)
}

// Fail makes every read of key return err.
func (r *Reader) Fail(key solana.PublicKey, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors[key] = err
}

func (r *Reader) lookup(key solana.PublicKey) error {
	r.Calls++
	return r.Errors[key]
}

func (r *Reader) GetAccount(_ context.Context, address solana.PublicKey) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.lookup(address); err != nil {
		return nil, err
	}
	acc, ok := r.Accounts[address]
	if !ok {
		return nil, apperror.NotFound(apperror.CodeAccountNotFound, "account "+address.String())
	}
	return acc, nil
}

func (r *Reader) GetTokenBalance(_ context.Context, account solana.PublicKey) (*domain.TokenBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.lookup(account); err != nil {
		return nil, err
	}
	amt, ok := r.Balances[account]
	if !ok {
		return nil, apperror.NotFound(apperror.CodeAccountNotFound, "token account "+account.String())
	}
	return &domain.TokenBalance{Account: account, Amount: amt, Slot: 1}, nil
}

func (r *Reader) GetMintInfo(_ context.Context, mint solana.PublicKey) (*domain.MintInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.lookup(mint); err != nil {
		return nil, err
	}
	amt, ok := r.Mints[mint]
	if !ok {
		return nil, apperror.NotFound(apperror.CodeAccountNotFound, "mint "+mint.String())
	}
	return &domain.MintInfo{Mint: mint, Supply: amt, Slot: 1}, nil
}

func (r *Reader) Ping(context.Context) (uint64, error) {
	return 1, nil
}

// Provider hands out one Reader for every endpoint and records overrides.
type Provider struct {
	Reader    *Reader
	Requested []string

	mu       sync.Mutex
	override string
	cleared  int
}

func NewProvider(r *Reader) *Provider {
	return &Provider{Reader: r}
}

func (p *Provider) ReaderFor(override string) app.Reader {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Requested = append(p.Requested, override)
	return p.Reader
}

func (p *Provider) SetEndpoint(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.override = url
	p.cleared++
}

func (p *Provider) Endpoint() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.override
}

func (p *Provider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleared++
}

// Cleared returns how many times the memo was dropped.
func (p *Provider) Cleared() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cleared
}

var (
	_ app.Reader         = (*Reader)(nil)
	_ app.ReaderProvider = (*Provider)(nil)
)
