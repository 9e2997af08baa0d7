// Package ledger implements the ledger bounded context: read-only Solana
// JSON-RPC access with per-endpoint client memoization.
package ledger

import (
	"context"
	"io"

	"github.com/gagliardetto/solana-go/rpc"

	ledgerDI "github.com/fd1az/solquote/business/ledger/di"
	"github.com/fd1az/solquote/business/ledger/app"
	"github.com/fd1az/solquote/business/ledger/infra/solana"
	"github.com/fd1az/solquote/internal/config"
	"github.com/fd1az/solquote/internal/di"
	"github.com/fd1az/solquote/internal/logger"
	"github.com/fd1az/solquote/internal/monolith"
)

// Module implements the ledger bounded context.
type Module struct {
	provider app.ReaderProvider
}

// RegisterServices registers the ledger services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, ledgerDI.ReaderProvider, func(sr di.ServiceRegistry) app.ReaderProvider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		clientCfg := solana.DefaultClientConfig(cfg.Ledger.RPCURL)
		if cfg.Ledger.Timeout > 0 {
			clientCfg.Timeout = cfg.Ledger.Timeout
		}
		if cfg.Ledger.Commitment != "" {
			clientCfg.Commitment = rpc.CommitmentType(cfg.Ledger.Commitment)
		}
		clientCfg.RequestsPerMinute = cfg.Ledger.RequestsPerMinute

		return solana.NewClientCache(clientCfg, log)
	})

	return nil
}

// Startup resolves the provider so the endpoint is logged once.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	m.provider = ledgerDI.GetReaderProvider(mono.Services())

	endpoint := mono.Config().Ledger.RPCURL
	if override := m.provider.Endpoint(); override != "" {
		endpoint = override
	}
	mono.Logger().Info(ctx, "ledger module started", "endpoint", endpoint)
	return nil
}

// Close releases memoized RPC clients.
func (m *Module) Close() error {
	if c, ok := m.provider.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
