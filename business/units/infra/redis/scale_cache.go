// Package redis provides a scale cache shared across processes through a
// Redis hash.
package redis

import (
	"context"
	"errors"
	"strconv"

	goredis "github.com/go-redis/redis/v8"

	"github.com/fd1az/solquote/business/units/app"
	"github.com/fd1az/solquote/business/units/domain"
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/logger"
)

// DefaultKey is the hash holding mint -> scale.
const DefaultKey = "solquote:decimals"

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// ScaleCache stores scales as fields of one hash. Writes use HSETNX so a
// stored scale is never replaced.
type ScaleCache struct {
	client *goredis.Client
	key    string
	logger logger.LoggerInterface
}

// NewScaleCache connects lazily; the first command dials.
func NewScaleCache(cfg Config, log logger.LoggerInterface) *ScaleCache {
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	log.Info(context.Background(), "initializing redis scale cache", "addr", cfg.Addr, "db", cfg.DB, "key", key)

	return NewScaleCacheWithClient(goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), key, log)
}

// NewScaleCacheWithClient wraps an existing client.
func NewScaleCacheWithClient(client *goredis.Client, key string, log logger.LoggerInterface) *ScaleCache {
	return &ScaleCache{client: client, key: key, logger: log}
}

func (c *ScaleCache) Get(ctx context.Context, mint string) (domain.Scale, bool, error) {
	raw, err := c.client.HGet(ctx, c.key, mint).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, apperror.Internal(apperror.CodeScaleCacheError, "HGET "+mint, err)
	}

	v, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		c.logger.Warn(ctx, "ignoring malformed cached scale", "mint", mint, "value", raw)
		return 0, false, nil
	}
	return domain.Scale(v), true, nil
}

func (c *ScaleCache) Put(ctx context.Context, mint string, scale domain.Scale) error {
	if err := c.client.HSetNX(ctx, c.key, mint, int(scale)).Err(); err != nil {
		return apperror.Internal(apperror.CodeScaleCacheError, "HSETNX "+mint, err)
	}
	return nil
}

// PutMany pipelines one HSETNX per mint.
func (c *ScaleCache) PutMany(ctx context.Context, scales map[string]domain.Scale) error {
	if len(scales) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for mint, s := range scales {
		pipe.HSetNX(ctx, c.key, mint, int(s))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return apperror.Internal(apperror.CodeScaleCacheError, "pipeline HSETNX", err)
	}

	c.logger.Debug(ctx, "cached scales", "count", len(scales))
	return nil
}

// Ping checks the connection.
func (c *ScaleCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *ScaleCache) Close() error {
	return c.client.Close()
}

var _ app.ScaleCache = (*ScaleCache)(nil)
