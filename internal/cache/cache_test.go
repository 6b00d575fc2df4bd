package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Noop{}

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	vals, err := c.MGet(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, vals)
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "", "")
	assert.Error(t, err)

	_, err = NewRedis(context.Background(), "not a url", "")
	assert.Error(t, err)
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	c, err := NewRedis(ctx, url, "knowx-test:")
	require.NoError(t, err)
	defer c.Close()

	_, _ = c.Del(ctx, "a", "b")

	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	vals, err := c.MGet(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, vals)

	n, err := c.Del(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
