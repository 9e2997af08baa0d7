// Package venues implements the venues bounded context: one quote per
// aggregator, compared side by side.
package venues

import (
	"context"

	unitsDI "github.com/fd1az/solquote/business/units/di"
	"github.com/fd1az/solquote/business/venues/app"
	venuesDI "github.com/fd1az/solquote/business/venues/di"
	"github.com/fd1az/solquote/business/venues/infra/jupiter"
	"github.com/fd1az/solquote/business/venues/infra/okx"
	"github.com/fd1az/solquote/business/venues/infra/openocean"
	"github.com/fd1az/solquote/business/venues/infra/raydium"
	"github.com/fd1az/solquote/business/venues/infra/venuehttp"
	"github.com/fd1az/solquote/internal/config"
	"github.com/fd1az/solquote/internal/di"
	"github.com/fd1az/solquote/internal/logger"
	"github.com/fd1az/solquote/internal/monolith"
)

// Module implements the venues bounded context.
type Module struct{}

// RegisterServices registers all venues services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Adapters (private - enabled venues only, in config order)
	di.RegisterToken(c, venuesDI.Adapters, func(sr di.ServiceRegistry) []app.VenueAdapter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		adapters, err := BuildAdapters(cfg.Venues, log)
		if err != nil {
			panic("failed to create venue adapters: " + err.Error())
		}
		return adapters
	})

	// Register Aggregator (public - exposed to other modules)
	di.RegisterToken(c, venuesDI.Aggregator, func(sr di.ServiceRegistry) *app.Aggregator {
		log := sr.Get("logger").(logger.LoggerInterface)

		agg, err := app.NewAggregator(
			venuesDI.GetAdapters(sr),
			unitsDI.GetNormalizer(sr),
			log,
		)
		if err != nil {
			panic("failed to create venue aggregator: " + err.Error())
		}
		return agg
	})

	return nil
}

// BuildAdapters creates one adapter per enabled venue.
func BuildAdapters(cfg config.VenuesConfig, log logger.LoggerInterface) ([]app.VenueAdapter, error) {
	var adapters []app.VenueAdapter

	if cfg.Jupiter.Enabled {
		a, err := jupiter.NewAdapter(venueConfig(cfg.Jupiter), log)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	if cfg.Raydium.Enabled {
		a, err := raydium.NewAdapter(venueConfig(cfg.Raydium), log)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	if cfg.OpenOcean.Enabled {
		a, err := openocean.NewAdapter(venueConfig(cfg.OpenOcean), log)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	if cfg.OKX.Enabled {
		creds := okx.Credentials{}
		if cfg.OKX.HasCredentials() {
			creds = okx.Credentials{
				APIKey:     cfg.OKX.APIKey,
				SecretKey:  cfg.OKX.SecretKey,
				Passphrase: cfg.OKX.Passphrase,
				ProjectID:  cfg.OKX.ProjectID,
			}
		}
		a, err := okx.NewAdapter(venueConfig(cfg.OKX.VenueConfig), creds, log)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}

	return adapters, nil
}

func venueConfig(c config.VenueConfig) venuehttp.Config {
	return venuehttp.Config{
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		RequestsPerMinute: c.RequestsPerMinute,
		SlippageBps:       c.SlippageBps,
		Headers:           c.Headers,
	}
}

// Startup logs the configured venues.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	agg := venuesDI.GetAggregator(mono.Services())
	mono.Logger().Info(ctx, "venues module started", "venues", agg.Venues())
	return nil
}
