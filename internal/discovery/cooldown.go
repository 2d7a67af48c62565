package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// CooldownStore rate-limits full match runs per seeker. A run may only
// start when Claim succeeds; the window then stays closed for the TTL.
type CooldownStore interface {
	// Claim atomically opens a run window. It returns false while a
	// previous window is still active.
	Claim(ctx context.Context, seekerID int64, ttl time.Duration) (bool, error)

	// Remaining reports how long until the seeker may run again; zero
	// means no active window.
	Remaining(ctx context.Context, seekerID int64) (time.Duration, error)

	// Reset clears the seeker's window.
	Reset(ctx context.Context, seekerID int64) error
}

func cooldownKey(seekerID int64) string {
	return fmt.Sprintf("discovery:cooldown:%d", seekerID)
}

// RedisCooldownStore shares the window across instances via SETNX.
type RedisCooldownStore struct {
	client *redis.Client
}

func NewRedisCooldownStore(client *redis.Client) *RedisCooldownStore {
	return &RedisCooldownStore{client: client}
}

func (s *RedisCooldownStore) Claim(ctx context.Context, seekerID int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return true, nil
	}
	return s.client.SetNX(ctx, cooldownKey(seekerID), time.Now().Unix(), ttl).Result()
}

func (s *RedisCooldownStore) Remaining(ctx context.Context, seekerID int64) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, cooldownKey(seekerID)).Result()
	if err != nil {
		return 0, err
	}
	// Negative TTL means the key is missing or has no expiry.
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (s *RedisCooldownStore) Reset(ctx context.Context, seekerID int64) error {
	return s.client.Del(ctx, cooldownKey(seekerID)).Err()
}

// MemoryCooldownStore is the single-instance fallback when redis is not
// configured.
type MemoryCooldownStore struct {
	mu      sync.Mutex
	windows map[int64]time.Time
}

func NewMemoryCooldownStore() *MemoryCooldownStore {
	return &MemoryCooldownStore{windows: make(map[int64]time.Time)}
}

func (s *MemoryCooldownStore) Claim(_ context.Context, seekerID int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return true, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if expiry, ok := s.windows[seekerID]; ok && expiry.After(now) {
		return false, nil
	}
	s.windows[seekerID] = now.Add(ttl)
	return true, nil
}

func (s *MemoryCooldownStore) Remaining(_ context.Context, seekerID int64) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.windows[seekerID]
	if !ok {
		return 0, nil
	}
	if remaining := time.Until(expiry); remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

func (s *MemoryCooldownStore) Reset(_ context.Context, seekerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, seekerID)
	return nil
}

// Sweep drops expired windows so the map does not grow with every
// seeker ever seen. The scheduler calls this hourly.
func (s *MemoryCooldownStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, expiry := range s.windows {
		if !expiry.After(now) {
			delete(s.windows, id)
			removed++
		}
	}
	return removed
}
