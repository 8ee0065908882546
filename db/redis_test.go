package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/themis/db"
)

func TestRateLimitSlidingWindow(t *testing.T) {
	server := miniredis.RunT(t)
	ctx := context.Background()

	client, err := db.NewRedisClient(ctx, db.RedisOptions{Addr: server.Addr()})
	require.NoError(t, err)
	defer db.CloseRedis(client)

	for i := 0; i < 3; i++ {
		allowed, err := db.RateLimit(ctx, client, "10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "hit %d", i)
	}

	allowed, err := db.RateLimit(ctx, client, "10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = db.RateLimit(ctx, client, "10.0.0.2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestNewRedisClientFailsWithoutServer(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	_, err := db.NewRedisClient(context.Background(), db.RedisOptions{Addr: addr})
	assert.Error(t, err)
}
