package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned when a seeker has no cached match run.
var ErrCacheMiss = errors.New("no cached match results")

// ResultCache keeps the latest match run per seeker so clients can page
// through results without re-running the pipeline.
type ResultCache interface {
	Put(ctx context.Context, run *MatchRun, ttl time.Duration) error
	Get(ctx context.Context, seekerID int64) (*MatchRun, error)
	Invalidate(ctx context.Context, seekerID int64) error
}

func resultKey(seekerID int64) string {
	return fmt.Sprintf("discovery:results:%d", seekerID)
}

// RedisResultCache stores runs as JSON blobs with a TTL.
type RedisResultCache struct {
	client *redis.Client
}

func NewRedisResultCache(client *redis.Client) *RedisResultCache {
	return &RedisResultCache{client: client}
}

func (c *RedisResultCache) Put(ctx context.Context, run *MatchRun, ttl time.Duration) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding match run: %w", err)
	}
	return c.client.Set(ctx, resultKey(run.SeekerID), payload, ttl).Err()
}

func (c *RedisResultCache) Get(ctx context.Context, seekerID int64) (*MatchRun, error) {
	payload, err := c.client.Get(ctx, resultKey(seekerID)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var run MatchRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, fmt.Errorf("decoding cached match run: %w", err)
	}
	return &run, nil
}

func (c *RedisResultCache) Invalidate(ctx context.Context, seekerID int64) error {
	return c.client.Del(ctx, resultKey(seekerID)).Err()
}

// NoopResultCache is used when redis is not configured: every read is a
// miss and writes vanish, so the engine still works, just uncached.
type NoopResultCache struct{}

func NewNoopResultCache() *NoopResultCache {
	return &NoopResultCache{}
}

func (NoopResultCache) Put(context.Context, *MatchRun, time.Duration) error { return nil }

func (NoopResultCache) Get(context.Context, int64) (*MatchRun, error) {
	return nil, ErrCacheMiss
}

func (NoopResultCache) Invalidate(context.Context, int64) error { return nil }
