package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/solquote/business/units/domain"
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/logger"
)

func newTestCache(t *testing.T) (*ScaleCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewScaleCache(Config{Addr: mr.Addr()}, logger.NewNop())
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestScaleCache_PutGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "mintA")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "mintA", 6))
	s, ok, err := c.Get(ctx, "mintA")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Scale(6), s)

	assert.Equal(t, "6", mr.HGet(DefaultKey, "mintA"))
}

func TestScaleCache_AppendOnly(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "mintA", 6))
	require.NoError(t, c.PutMany(ctx, map[string]domain.Scale{"mintA": 9, "mintB": 8}))

	a, _, _ := c.Get(ctx, "mintA")
	b, _, _ := c.Get(ctx, "mintB")
	assert.Equal(t, domain.Scale(6), a)
	assert.Equal(t, domain.Scale(8), b)
}

func TestScaleCache_MalformedValueIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	mr.HSet(DefaultKey, "mintA", "lots")

	_, ok, err := c.Get(context.Background(), "mintA")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScaleCache_ConnectionErrorIsScaleCacheError(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	c := NewScaleCacheWithClient(client, DefaultKey, logger.NewNop())
	defer c.Close()

	_, _, err := c.Get(context.Background(), "mintA")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeScaleCacheError))
}
