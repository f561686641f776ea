package gateway

import (
	"testing"
	"time"

	"github.com/femtoworks/femto-gateway/internal/domain"

	"github.com/go-playground/assert/v2"
)

const (
	testCacheSize = 10
	testTtl       = 30 * time.Minute
	testTti       = 5 * time.Minute
)

func newTestCache(t *testing.T) (*EligibilityCache, *time.Time) {
	cache, err := NewEligibilityCache(testCacheSize, testTtl, testTti)
	assert.Equal(t, err, nil)

	currentTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time {
		return currentTime
	}

	return cache, &currentTime
}

func TestCacheMissOnUnknownTenant(t *testing.T) {
	cache, _ := newTestCache(t)

	_, ok := cache.Get("tenant-1")
	assert.Equal(t, ok, false)
}

func TestCacheHitReturnsStoredEligibility(t *testing.T) {
	cache, _ := newTestCache(t)

	cache.Set("tenant-1", true)
	cache.Set("tenant-2", false)

	eligible, ok := cache.Get("tenant-1")
	assert.Equal(t, ok, true)
	assert.Equal(t, eligible, true)

	eligible, ok = cache.Get("tenant-2")
	assert.Equal(t, ok, true)
	assert.Equal(t, eligible, false)
}

func TestEntryExpiresAfterTtl(t *testing.T) {
	cache, currentTime := newTestCache(t)

	cache.Set("tenant-1", true)

	// Keep touching the entry so the idle clock never fires.  The entry
	// must still expire when the insertion clock runs out.
	for i := 0; i < 7; i++ {
		*currentTime = currentTime.Add(4 * time.Minute)
		cache.Get("tenant-1")
	}

	*currentTime = currentTime.Add(4 * time.Minute)

	_, ok := cache.Get("tenant-1")
	assert.Equal(t, ok, false)
}

func TestEntryExpiresWhenIdle(t *testing.T) {
	cache, currentTime := newTestCache(t)

	cache.Set("tenant-1", true)

	*currentTime = currentTime.Add(testTti)

	_, ok := cache.Get("tenant-1")
	assert.Equal(t, ok, false)
}

func TestReadResetsTheIdleClock(t *testing.T) {
	cache, currentTime := newTestCache(t)

	cache.Set("tenant-1", true)

	*currentTime = currentTime.Add(4 * time.Minute)
	_, ok := cache.Get("tenant-1")
	assert.Equal(t, ok, true)

	*currentTime = currentTime.Add(4 * time.Minute)
	_, ok = cache.Get("tenant-1")
	assert.Equal(t, ok, true)
}

func TestSetResetsBothClocks(t *testing.T) {
	cache, currentTime := newTestCache(t)

	cache.Set("tenant-1", true)

	*currentTime = currentTime.Add(testTtl - time.Minute)
	cache.Set("tenant-1", false)

	*currentTime = currentTime.Add(2 * time.Minute)

	eligible, ok := cache.Get("tenant-1")
	assert.Equal(t, ok, true)
	assert.Equal(t, eligible, false)
}

func TestOldestEntryIsEvictedAtCapacity(t *testing.T) {
	cache, err := NewEligibilityCache(2, testTtl, testTti)
	assert.Equal(t, err, nil)

	cache.Set("tenant-1", true)
	cache.Set("tenant-2", true)
	cache.Set("tenant-3", true)

	_, ok := cache.Get("tenant-1")
	assert.Equal(t, ok, false)

	_, ok = cache.Get("tenant-2")
	assert.Equal(t, ok, true)

	_, ok = cache.Get("tenant-3")
	assert.Equal(t, ok, true)

	assert.Equal(t, cache.Len(), 2)
}

func TestInvalidateRemovesOneTenant(t *testing.T) {
	cache, _ := newTestCache(t)

	cache.Set("tenant-1", true)
	cache.Set("tenant-2", true)

	cache.Invalidate("tenant-1")

	_, ok := cache.Get("tenant-1")
	assert.Equal(t, ok, false)

	_, ok = cache.Get("tenant-2")
	assert.Equal(t, ok, true)
}

func TestInvalidateAllEmptiesTheCache(t *testing.T) {
	cache, _ := newTestCache(t)

	tenants := []domain.TenantID{"tenant-1", "tenant-2", "tenant-3"}
	for _, tenantID := range tenants {
		cache.Set(tenantID, true)
	}

	cache.InvalidateAll()

	assert.Equal(t, cache.Len(), 0)

	for _, tenantID := range tenants {
		_, ok := cache.Get(tenantID)
		assert.Equal(t, ok, false)
	}
}
