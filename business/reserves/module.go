// Package reserves implements the reserves bounded context: pool snapshots
// from on-chain layouts with a registry fallback.
package reserves

import (
	"context"

	ledgerDI "github.com/fd1az/solquote/business/ledger/di"
	"github.com/fd1az/solquote/business/reserves/app"
	reservesDI "github.com/fd1az/solquote/business/reserves/di"
	"github.com/fd1az/solquote/business/reserves/infra/raydium"
	unitsDI "github.com/fd1az/solquote/business/units/di"
	"github.com/fd1az/solquote/internal/config"
	"github.com/fd1az/solquote/internal/di"
	"github.com/fd1az/solquote/internal/logger"
	"github.com/fd1az/solquote/internal/monolith"
)

// Module implements the reserves bounded context.
type Module struct{}

// RegisterServices registers all reserves services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register APIClient (private - registry and pool keys)
	di.RegisterToken(c, reservesDI.APIClient, func(sr di.ServiceRegistry) *raydium.APIClient {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := raydium.NewAPIClient(raydium.APIConfig{
			BaseURL:           cfg.Registry.BaseURL,
			Timeout:           cfg.Registry.Timeout,
			RequestsPerMinute: cfg.Registry.RequestsPerMinute,
		}, log)
		if err != nil {
			panic("failed to create raydium api client: " + err.Error())
		}
		return client
	})

	// Register Decoders (private - tried in this order)
	di.RegisterToken(c, reservesDI.Decoders, func(sr di.ServiceRegistry) []app.Decoder {
		log := sr.Get("logger").(logger.LoggerInterface)
		api := reservesDI.GetAPIClient(sr)

		return []app.Decoder{
			raydium.NewAMMv4Decoder(log),
			raydium.NewCLMMDecoder(api, log),
		}
	})

	// Register Resolver (public - exposed to other modules)
	di.RegisterToken(c, reservesDI.Resolver, func(sr di.ServiceRegistry) *app.Resolver {
		log := sr.Get("logger").(logger.LoggerInterface)
		api := reservesDI.GetAPIClient(sr)

		resolver, err := app.NewResolver(
			ledgerDI.GetReaderProvider(sr),
			reservesDI.GetDecoders(sr),
			api,
			api,
			log,
			app.WithScaleRecorder(unitsDI.GetNormalizer(sr)),
		)
		if err != nil {
			panic("failed to create reserves resolver: " + err.Error())
		}
		return resolver
	})

	return nil
}

// Startup logs the decoder chain.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	decoders := reservesDI.GetDecoders(mono.Services())
	names := make([]string, 0, len(decoders)+1)
	for _, d := range decoders {
		names = append(names, d.Name())
	}
	names = append(names, "registry")

	mono.Logger().Info(ctx, "reserves module started", "sources", names)
	return nil
}
