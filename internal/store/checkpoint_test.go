package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCheckpoints(t *testing.T) *RedisCheckpoints {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCheckpoints(client)
}

func TestRedisCheckpoints_LoadMissing(t *testing.T) {
	cp := newTestCheckpoints(t)

	token, err := cp.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestRedisCheckpoints_SaveAndLoad(t *testing.T) {
	cp := newTestCheckpoints(t)
	ctx := context.Background()

	require.NoError(t, cp.Save(ctx, []byte("token-1")))

	token, err := cp.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("token-1"), token)

	// Saving again overwrites the previous position.
	require.NoError(t, cp.Save(ctx, []byte("token-2")))
	token, err = cp.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("token-2"), token)
}

func TestRedisCheckpoints_SaveEmptyTokenIsNoOp(t *testing.T) {
	cp := newTestCheckpoints(t)
	ctx := context.Background()

	require.NoError(t, cp.Save(ctx, nil))

	token, err := cp.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestRedisCheckpoints_Clear(t *testing.T) {
	cp := newTestCheckpoints(t)
	ctx := context.Background()

	require.NoError(t, cp.Save(ctx, []byte("stale")))
	require.NoError(t, cp.Clear(ctx))

	token, err := cp.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, token)
}
