package solana

import (
	"context"
	"sync"

	sol "github.com/gagliardetto/solana-go"

	"github.com/fd1az/solquote/business/ledger/app"
	"github.com/fd1az/solquote/business/ledger/domain"
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/config"
	"github.com/fd1az/solquote/internal/logger"
)

// ClientCache memoizes one Client per endpoint and resolves which endpoint a
// call uses: explicit override, then the global override, then the
// configured URL, then config.DefaultRPCURL.
type ClientCache struct {
	base      ClientConfig
	logger    logger.LoggerInterface
	newClient func(ClientConfig, logger.LoggerInterface) (*Client, error)

	mu       sync.Mutex
	override string
	clients  map[string]*Client
}

// NewClientCache creates a cache. base.RPCURL is the configured endpoint and
// may be empty.
func NewClientCache(base ClientConfig, log logger.LoggerInterface) *ClientCache {
	return &ClientCache{
		base:      base,
		logger:    log,
		newClient: NewClient,
		clients:   make(map[string]*Client),
	}
}

// ReaderFor implements app.ReaderProvider. When no client can be built for
// the endpoint the returned Reader fails every call with LEDGER_RPC_ERROR.
func (cc *ClientCache) ReaderFor(override string) app.Reader {
	c, err := cc.Client(override)
	if err != nil {
		return failedReader{err: err}
	}
	return c
}

// Client returns the memoized client for the effective endpoint. Failed
// constructions are not memoized.
func (cc *ClientCache) Client(override string) (*Client, error) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	url := cc.resolveLocked(override)
	if c, ok := cc.clients[url]; ok {
		return c, nil
	}

	cfg := cc.base
	cfg.RPCURL = url
	c, err := cc.newClient(cfg, cc.logger)
	if err != nil {
		cc.logger.Error(context.Background(), "ledger client creation failed",
			"endpoint", url, "error", err)
		return nil, apperror.Wrap(err, apperror.CodeLedgerRPCError, "create ledger client")
	}
	cc.clients[url] = c
	cc.logger.Debug(context.Background(), "ledger client created", "endpoint", url)
	return c, nil
}

func (cc *ClientCache) resolveLocked(override string) string {
	switch {
	case override != "":
		return override
	case cc.override != "":
		return cc.override
	case cc.base.RPCURL != "":
		return cc.base.RPCURL
	default:
		return config.DefaultRPCURL
	}
}

// EffectiveEndpoint returns the endpoint a call without override would use.
func (cc *ClientCache) EffectiveEndpoint() string {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.resolveLocked("")
}

// SetEndpoint sets the global override and drops memoized clients.
func (cc *ClientCache) SetEndpoint(url string) {
	cc.mu.Lock()
	cc.override = url
	cc.mu.Unlock()
	cc.Clear()
}

// Endpoint returns the global override, "" when unset.
func (cc *ClientCache) Endpoint() string {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.override
}

// Clear drops memoized clients; the next call builds a fresh one.
func (cc *ClientCache) Clear() {
	cc.mu.Lock()
	old := cc.clients
	cc.clients = make(map[string]*Client)
	cc.mu.Unlock()

	for _, c := range old {
		_ = c.Close()
	}
}

// Close releases every memoized client.
func (cc *ClientCache) Close() error {
	cc.Clear()
	return nil
}

// failedReader stands in for a client that could not be built.
type failedReader struct {
	err error
}

func (r failedReader) GetAccount(context.Context, sol.PublicKey) (*domain.Account, error) {
	return nil, r.err
}

func (r failedReader) GetTokenBalance(context.Context, sol.PublicKey) (*domain.TokenBalance, error) {
	return nil, r.err
}

func (r failedReader) GetMintInfo(context.Context, sol.PublicKey) (*domain.MintInfo, error) {
	return nil, r.err
}

func (r failedReader) Ping(context.Context) (uint64, error) {
	return 0, r.err
}

var (
	_ app.ReaderProvider = (*ClientCache)(nil)
	_ app.Reader         = failedReader{}
)
