// Package memory provides the in-process scale cache.
package memory

import (
	"context"

	"github.com/fd1az/solquote/business/units/app"
	"github.com/fd1az/solquote/business/units/domain"
	"github.com/fd1az/solquote/internal/cache"
)

// ScaleCache keeps scales for the life of the process.
type ScaleCache struct {
	entries *cache.Cache[string, domain.Scale]
}

func NewScaleCache() *ScaleCache {
	return &ScaleCache{entries: cache.New[string, domain.Scale](0)}
}

func (c *ScaleCache) Get(ctx context.Context, mint string) (domain.Scale, bool, error) {
	s, ok := c.entries.Get(ctx, mint)
	return s, ok, nil
}

func (c *ScaleCache) Put(ctx context.Context, mint string, scale domain.Scale) error {
	c.entries.SetIfAbsent(ctx, mint, scale, -1)
	return nil
}

func (c *ScaleCache) PutMany(ctx context.Context, scales map[string]domain.Scale) error {
	for mint, s := range scales {
		c.entries.SetIfAbsent(ctx, mint, s, -1)
	}
	return nil
}

// Len returns the number of cached mints.
func (c *ScaleCache) Len() int {
	return c.entries.Len()
}

var _ app.ScaleCache = (*ScaleCache)(nil)
