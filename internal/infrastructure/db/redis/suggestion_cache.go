package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSuggestionTTL = 6 * time.Hour

// SuggestionCache stores assistant replies keyed by a hash of the prompt.
// Key format: assistant:<sha256(prompt)>
type SuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSuggestionCache(client *redis.Client, ttl time.Duration) *SuggestionCache {
	if ttl <= 0 {
		ttl = defaultSuggestionTTL
	}
	return &SuggestionCache{client: client, ttl: ttl}
}

func (c *SuggestionCache) Get(ctx context.Context, prompt string) (string, bool, error) {
	v, err := c.client.Get(ctx, c.key(prompt)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("suggestion cache get: %w", err)
	}
	return v, true, nil
}

func (c *SuggestionCache) Put(ctx context.Context, prompt, text string) error {
	if err := c.client.Set(ctx, c.key(prompt), text, c.ttl).Err(); err != nil {
		return fmt.Errorf("suggestion cache put: %w", err)
	}
	return nil
}

func (c *SuggestionCache) key(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "assistant:" + hex.EncodeToString(sum[:])
}
