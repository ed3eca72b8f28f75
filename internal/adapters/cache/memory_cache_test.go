package cache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

func entry(hash string, ttl time.Duration) *core.CacheEntry {
	now := time.Now()
	return &core.CacheEntry{
		TextHash:   hash,
		Verdict:    core.LabelPhishing,
		TrustScore: 0.72,
		Tier:       core.TierFlag,
		LastSeen:   now,
		ExpiresAt:  now.Add(ttl),
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()
	ctx := context.Background()

	if err := c.Set(ctx, entry("abc", time.Hour)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected a hit")
	}
	if got.Verdict != core.LabelPhishing || got.Tier != core.TierFlag || got.TrustScore != 0.72 {
		t.Errorf("entry = %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	got, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected miss, got %+v", got)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()
	ctx := context.Background()

	if err := c.Set(ctx, entry("old", -time.Minute)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "old")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Error("expired entry served")
	}
	if err := c.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if len(c.entries) != 0 {
		t.Errorf("cleanup left %d entries", len(c.entries))
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()
	ctx := context.Background()

	if err := c.Set(ctx, entry("abc", time.Hour)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ := c.Get(ctx, "abc")
	if got != nil {
		t.Error("deleted entry served")
	}
}
