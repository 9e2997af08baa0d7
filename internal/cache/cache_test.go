package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := New[string, int](0)

	c.Set(ctx, "a", 1, 0)
	v, ok := c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get(ctx, "b")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	c := New[string, string](time.Minute)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", "v", 0)
	c.Set(ctx, "forever", "v", -1)

	now = now.Add(2 * time.Minute)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok, "default ttl should have expired the entry")

	_, ok = c.Get(ctx, "forever")
	assert.True(t, ok, "negative ttl never expires")
}

func TestCache_SetIfAbsent(t *testing.T) {
	ctx := context.Background()
	c := New[string, uint8](0)

	assert.True(t, c.SetIfAbsent(ctx, "mint", 6, 0))
	assert.False(t, c.SetIfAbsent(ctx, "mint", 9, 0))

	v, _ := c.Get(ctx, "mint")
	assert.Equal(t, uint8(6), v)
}

func TestCache_Purge(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(0, 0)
	c := New[int, int](time.Second)
	c.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		c.Set(ctx, i, i, 0)
	}
	c.Set(ctx, 99, 99, -1)

	now = now.Add(time.Hour)
	c.Purge()

	assert.Equal(t, 1, c.Len())
}
