package discovery

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopResultCache(t *testing.T) {
	ctx := context.Background()
	cache := NewNoopResultCache()

	if err := cache.Put(ctx, &MatchRun{SeekerID: 1}, time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}

	_, err := cache.Get(ctx, 1)
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after put, got %v", err)
	}

	if err := cache.Invalidate(ctx, 1); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
}

func TestResultKey(t *testing.T) {
	if got := resultKey(42); got != "discovery:results:42" {
		t.Errorf("unexpected key %q", got)
	}
}
