// Package di contains dependency injection tokens for the venues context.
package di

import (
	"github.com/fd1az/solquote/business/venues/app"
	"github.com/fd1az/solquote/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Aggregator = di.NewToken[*app.Aggregator]("venues.Aggregator")
)

// Private dependency tokens - internal to venues module
var (
	Adapters = di.NewToken[[]app.VenueAdapter]("venues:adapters")
)

func GetAggregator(c di.ServiceRegistry) *app.Aggregator {
	return di.GetToken(c, Aggregator)
}

func GetAdapters(c di.ServiceRegistry) []app.VenueAdapter {
	return di.GetToken(c, Adapters)
}
