// Package app contains application services and port definitions for the
// units context.
package app

import (
	"context"

	"github.com/fd1az/solquote/business/units/domain"
)

// StaticTable answers decimals for mints known at build time.
type StaticTable interface {
	Decimals(mint string) (uint8, bool)
}

// ScaleCache stores resolved scales. Entries are append-only: once a mint has
// a scale, later writes for it are ignored.
type ScaleCache interface {
	Get(ctx context.Context, mint string) (domain.Scale, bool, error)
	Put(ctx context.Context, mint string, scale domain.Scale) error
	PutMany(ctx context.Context, scales map[string]domain.Scale) error
}

// Catalog fetches the bulk mint -> decimals list.
type Catalog interface {
	Fetch(ctx context.Context) (map[string]domain.Scale, error)
}
