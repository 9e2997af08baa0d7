// Package di contains dependency injection tokens for the ledger context.
package di

import (
	"github.com/fd1az/solquote/business/ledger/app"
	"github.com/fd1az/solquote/internal/di"
)

// Public service tokens - exposed to other modules
var (
	ReaderProvider = di.NewToken[app.ReaderProvider]("ledger.ReaderProvider")
)

func GetReaderProvider(c di.ServiceRegistry) app.ReaderProvider {
	return di.GetToken(c, ReaderProvider)
}
