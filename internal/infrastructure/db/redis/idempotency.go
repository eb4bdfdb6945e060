package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spendline/expense-approval/internal/core/domain"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// pendingMarker is stored while the owning submission is still running.
	pendingMarker = "pending"
)

// SubmissionGuard implements ports.SubmissionGuard.
// Key format: idem:submit:<scope>:<idempotency_key>
type SubmissionGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSubmissionGuard(client *redis.Client, ttl time.Duration) *SubmissionGuard {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &SubmissionGuard{client: client, ttl: ttl}
}

// Reserve claims the key with SET NX. When the key already exists it returns
// the stored expense id, or domain.ErrSubmissionInFlight if the owner has
// not finished yet.
func (g *SubmissionGuard) Reserve(ctx context.Context, scope, key string) (string, error) {
	k := g.key(scope, key)
	ok, err := g.client.SetNX(ctx, k, pendingMarker, g.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("idempotency reserve: %w", err)
	}
	if ok {
		return "", nil
	}

	v, err := g.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Released between SETNX and GET; let the caller retry.
		return "", domain.ErrSubmissionInFlight
	}
	if err != nil {
		return "", fmt.Errorf("idempotency lookup: %w", err)
	}
	if v == pendingMarker {
		return "", domain.ErrSubmissionInFlight
	}
	return v, nil
}

// Complete records the id of the expense created under key.
func (g *SubmissionGuard) Complete(ctx context.Context, scope, key, expenseID string) error {
	if err := g.client.Set(ctx, g.key(scope, key), expenseID, g.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release forgets key so a failed submission can be retried.
func (g *SubmissionGuard) Release(ctx context.Context, scope, key string) error {
	if err := g.client.Del(ctx, g.key(scope, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (g *SubmissionGuard) key(scope, key string) string {
	return fmt.Sprintf("idem:submit:%s:%s", scope, key)
}
