package discovery

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCooldownStore_ClaimWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCooldownStore()

	ok, err := store.Claim(ctx, 1, time.Minute)
	if err != nil || !ok {
		t.Fatalf("first claim: expected success, got ok=%v err=%v", ok, err)
	}

	ok, err = store.Claim(ctx, 1, time.Minute)
	if err != nil || ok {
		t.Fatalf("second claim: expected denial, got ok=%v err=%v", ok, err)
	}

	// A different seeker is unaffected.
	ok, err = store.Claim(ctx, 2, time.Minute)
	if err != nil || !ok {
		t.Fatalf("other seeker: expected success, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryCooldownStore_Remaining(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCooldownStore()

	if _, err := store.Claim(ctx, 1, time.Minute); err != nil {
		t.Fatalf("claim: %v", err)
	}

	remaining, err := store.Remaining(ctx, 1)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if remaining <= 0 || remaining > time.Minute {
		t.Errorf("expected remaining in (0, 1m], got %v", remaining)
	}

	remaining, err = store.Remaining(ctx, 99)
	if err != nil || remaining != 0 {
		t.Errorf("unknown seeker: expected 0 remaining, got %v err=%v", remaining, err)
	}
}

func TestMemoryCooldownStore_WindowExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCooldownStore()

	if ok, _ := store.Claim(ctx, 1, 20*time.Millisecond); !ok {
		t.Fatal("first claim should succeed")
	}
	time.Sleep(30 * time.Millisecond)

	if ok, _ := store.Claim(ctx, 1, time.Minute); !ok {
		t.Error("expected claim to succeed after the window expired")
	}
}

func TestMemoryCooldownStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCooldownStore()

	if ok, _ := store.Claim(ctx, 1, time.Hour); !ok {
		t.Fatal("first claim should succeed")
	}
	if err := store.Reset(ctx, 1); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ok, _ := store.Claim(ctx, 1, time.Hour); !ok {
		t.Error("expected claim to succeed after reset")
	}
}

func TestMemoryCooldownStore_ZeroTTLNeverBlocks(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCooldownStore()

	for i := 0; i < 3; i++ {
		ok, err := store.Claim(ctx, 1, 0)
		if err != nil || !ok {
			t.Fatalf("claim %d: expected success with zero ttl, got ok=%v err=%v", i, ok, err)
		}
	}
	if remaining, _ := store.Remaining(ctx, 1); remaining != 0 {
		t.Errorf("zero ttl should leave no window, got %v", remaining)
	}
}

func TestMemoryCooldownStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCooldownStore()

	store.Claim(ctx, 1, time.Millisecond)
	store.Claim(ctx, 2, time.Hour)
	time.Sleep(5 * time.Millisecond)

	if removed := store.Sweep(); removed != 1 {
		t.Errorf("expected 1 expired window swept, got %d", removed)
	}
	if removed := store.Sweep(); removed != 0 {
		t.Errorf("second sweep should find nothing, got %d", removed)
	}

	// The live window survives the sweep.
	if ok, _ := store.Claim(ctx, 2, time.Hour); ok {
		t.Error("expected seeker 2 still in cooldown after sweep")
	}
}

func TestCooldownKey(t *testing.T) {
	if got := cooldownKey(42); got != "discovery:cooldown:42" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestCooldownError(t *testing.T) {
	err := &CooldownError{Remaining: 90 * time.Second}

	if !errors.Is(err, ErrCooldownActive) {
		t.Error("expected CooldownError to match ErrCooldownActive")
	}

	var ce *CooldownError
	if !errors.As(err, &ce) || ce.Remaining != 90*time.Second {
		t.Errorf("expected errors.As to recover the remaining window, got %+v", ce)
	}
}
