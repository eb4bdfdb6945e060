package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendline/expense-approval/internal/core/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	_, err = Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestSubmissionGuard_Lifecycle(t *testing.T) {
	mr, client := newTestClient(t)
	g := NewSubmissionGuard(client, time.Hour)
	ctx := context.Background()

	id, err := g.Reserve(ctx, "emp-1", "k1")
	require.NoError(t, err)
	assert.Empty(t, id, "first reservation owns the key")

	_, err = g.Reserve(ctx, "emp-1", "k1")
	assert.ErrorIs(t, err, domain.ErrSubmissionInFlight)

	require.NoError(t, g.Complete(ctx, "emp-1", "k1", "exp-42"))
	id, err = g.Reserve(ctx, "emp-1", "k1")
	require.NoError(t, err)
	assert.Equal(t, "exp-42", id)

	assert.True(t, mr.Exists("idem:submit:emp-1:k1"))
	assert.Equal(t, time.Hour, mr.TTL("idem:submit:emp-1:k1"))
}

func TestSubmissionGuard_ScopesAreIndependent(t *testing.T) {
	_, client := newTestClient(t)
	g := NewSubmissionGuard(client, time.Hour)
	ctx := context.Background()

	_, err := g.Reserve(ctx, "emp-1", "same")
	require.NoError(t, err)
	id, err := g.Reserve(ctx, "emp-2", "same")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestSubmissionGuard_ReleaseAllowsRetry(t *testing.T) {
	_, client := newTestClient(t)
	g := NewSubmissionGuard(client, time.Hour)
	ctx := context.Background()

	_, err := g.Reserve(ctx, "emp-1", "k1")
	require.NoError(t, err)
	require.NoError(t, g.Release(ctx, "emp-1", "k1"))

	id, err := g.Reserve(ctx, "emp-1", "k1")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestSubmissionGuard_Expires(t *testing.T) {
	mr, client := newTestClient(t)
	g := NewSubmissionGuard(client, time.Minute)
	ctx := context.Background()

	_, err := g.Reserve(ctx, "emp-1", "k1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	id, err := g.Reserve(ctx, "emp-1", "k1")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestSuggestionCache(t *testing.T) {
	mr, client := newTestClient(t)
	c := NewSuggestionCache(client, 10*time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "prompt")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "prompt", "reply"))
	v, ok, err := c.Get(ctx, "prompt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "reply", v)

	mr.FastForward(11 * time.Minute)
	_, ok, err = c.Get(ctx, "prompt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSuggestionCache_ReportsBackendErrors(t *testing.T) {
	mr, client := newTestClient(t)
	c := NewSuggestionCache(client, time.Minute)
	mr.Close()

	_, _, err := c.Get(context.Background(), "prompt")
	assert.Error(t, err)
}
