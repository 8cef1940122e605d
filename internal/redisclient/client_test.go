package redisclient

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyNamespaces(t *testing.T) {
	assert.Equal(t, "lock:checkout:a@b.io", lockKey("checkout:a@b.io"))
	assert.Equal(t, "idempotency:payment:pi_1", idempotencyKey("payment:pi_1"))
}

func TestReleaseScriptEmbedded(t *testing.T) {
	assert.Contains(t, releaseLockScript, `redis.call("DEL", KEYS[1])`)
}

func integrationClient(t *testing.T) *Client {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("Integration test - requires REDIS_TEST_ADDR")
	}

	c, err := NewClient(addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLockIntegration(t *testing.T) {
	c := integrationClient(t)
	ctx := context.Background()
	name := "test:" + uuid.New().String()

	token, ok, err := c.AcquireLock(ctx, name, 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = c.AcquireLock(ctx, name, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not acquire")

	// a stale token must not release someone else's lock
	require.NoError(t, c.ReleaseLock(ctx, name, "stale"))
	_, ok, err = c.AcquireLock(ctx, name, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.ReleaseLock(ctx, name, token))
	_, ok, err = c.AcquireLock(ctx, name, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyIntegration(t *testing.T) {
	c := integrationClient(t)
	ctx := context.Background()
	key := "test:" + uuid.New().String()

	exists, err := c.CheckIdempotencyKey(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, c.SetIdempotencyKey(ctx, key, "pay-1", time.Minute))

	exists, err = c.CheckIdempotencyKey(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
}
