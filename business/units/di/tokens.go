// Package di contains dependency injection tokens for the units context.
package di

import (
	"github.com/fd1az/solquote/business/units/app"
	"github.com/fd1az/solquote/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Normalizer = di.NewToken[*app.Normalizer]("units.Normalizer")
)

// Private dependency tokens - internal to units module
var (
	ScaleCache = di.NewToken[app.ScaleCache]("units:scaleCache")
	Catalog    = di.NewToken[app.Catalog]("units:catalog")
)

func GetNormalizer(c di.ServiceRegistry) *app.Normalizer {
	return di.GetToken(c, Normalizer)
}

func GetScaleCache(c di.ServiceRegistry) app.ScaleCache {
	return di.GetToken(c, ScaleCache)
}

func GetCatalog(c di.ServiceRegistry) app.Catalog {
	return di.GetToken(c, Catalog)
}
