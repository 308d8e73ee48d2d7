package cache

import (
	"context"
	"testing"
	"time"

	"campsite/pkg/daterange"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	day, err := daterange.ParseDay(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return day
}

func TestMemoryCacheInitializeAndRead(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Hour)

	initialized, err := c.IsInitialized(ctx)
	if err != nil {
		t.Fatalf("IsInitialized failed: %v", err)
	}
	if initialized {
		t.Fatal("fresh cache must not report initialized")
	}

	dates := []time.Time{
		mustParse(t, "2026-10-10"),
		mustParse(t, "2026-10-11"),
	}
	if err := c.Initialize(ctx, dates); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	initialized, _ = c.IsInitialized(ctx)
	if !initialized {
		t.Fatal("expected cache to be initialized")
	}

	occupied, err := c.OccupiedDates(ctx)
	if err != nil {
		t.Fatalf("OccupiedDates failed: %v", err)
	}
	if len(occupied) != 2 {
		t.Fatalf("expected 2 occupied days, got %d", len(occupied))
	}
	for _, d := range dates {
		if _, ok := occupied[d]; !ok {
			t.Errorf("expected %s to be occupied", daterange.FormatDay(d))
		}
	}
}

func TestMemoryCacheEmptyInitializeStaysCold(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Hour)

	if err := c.Initialize(ctx, nil); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// An empty occupied set leaves nothing to cache; the next booking
	// triggers another rebuild.
	initialized, _ := c.IsInitialized(ctx)
	if initialized {
		t.Error("empty initialize must not mark the cache initialized")
	}
}

func TestMemoryCacheAddAndRemove(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Hour)

	if err := c.AddDates(ctx, []time.Time{mustParse(t, "2026-10-10")}); err != nil {
		t.Fatalf("AddDates failed: %v", err)
	}

	initialized, _ := c.IsInitialized(ctx)
	if !initialized {
		t.Fatal("expected AddDates to initialize the cache")
	}

	if err := c.AddDates(ctx, []time.Time{mustParse(t, "2026-10-11")}); err != nil {
		t.Fatalf("AddDates failed: %v", err)
	}
	if err := c.RemoveDates(ctx, []time.Time{mustParse(t, "2026-10-10")}); err != nil {
		t.Fatalf("RemoveDates failed: %v", err)
	}

	occupied, _ := c.OccupiedDates(ctx)
	if len(occupied) != 1 {
		t.Fatalf("expected 1 occupied day, got %d", len(occupied))
	}
	if _, ok := occupied[mustParse(t, "2026-10-11")]; !ok {
		t.Error("expected 2026-10-11 to remain occupied")
	}
}

func TestMemoryCacheNormalizesDates(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Hour)

	afternoon := time.Date(2026, 10, 10, 15, 45, 0, 0, time.UTC)
	if err := c.AddDates(ctx, []time.Time{afternoon}); err != nil {
		t.Fatalf("AddDates failed: %v", err)
	}

	occupied, _ := c.OccupiedDates(ctx)
	if _, ok := occupied[mustParse(t, "2026-10-10")]; !ok {
		t.Error("expected the date to be stored at midnight UTC")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()

	current := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCacheWithClock(time.Hour, func() time.Time { return current })

	if err := c.Initialize(ctx, []time.Time{mustParse(t, "2026-10-10")}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	current = current.Add(30 * time.Minute)
	initialized, _ := c.IsInitialized(ctx)
	if !initialized {
		t.Fatal("cache expired before its TTL")
	}

	current = current.Add(31 * time.Minute)
	initialized, _ = c.IsInitialized(ctx)
	if initialized {
		t.Fatal("cache survived past its TTL")
	}

	occupied, _ := c.OccupiedDates(ctx)
	if len(occupied) != 0 {
		t.Errorf("expected an expired cache to read empty, got %d days", len(occupied))
	}

	// Re-initializing resets the deadline.
	if err := c.Initialize(ctx, []time.Time{mustParse(t, "2026-10-12")}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	initialized, _ = c.IsInitialized(ctx)
	if !initialized {
		t.Fatal("expected re-initialized cache to be live")
	}
}
