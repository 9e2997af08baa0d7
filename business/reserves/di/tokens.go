// Package di contains dependency injection tokens for the reserves context.
package di

import (
	"github.com/fd1az/solquote/business/reserves/app"
	"github.com/fd1az/solquote/business/reserves/infra/raydium"
	"github.com/fd1az/solquote/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Resolver = di.NewToken[*app.Resolver]("reserves.Resolver")
)

// Private dependency tokens - internal to reserves module
var (
	APIClient = di.NewToken[*raydium.APIClient]("reserves:apiClient")
	Decoders  = di.NewToken[[]app.Decoder]("reserves:decoders")
)

func GetResolver(c di.ServiceRegistry) *app.Resolver {
	return di.GetToken(c, Resolver)
}

func GetAPIClient(c di.ServiceRegistry) *raydium.APIClient {
	return di.GetToken(c, APIClient)
}

func GetDecoders(c di.ServiceRegistry) []app.Decoder {
	return di.GetToken(c, Decoders)
}
