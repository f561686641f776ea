package gateway

import (
	"sync"
	"time"

	"github.com/femtoworks/femto-gateway/internal/domain"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

type eligibilityEntry struct {
	eligible   bool
	insertedAt time.Time
	lastAccess time.Time
}

// EligibilityCache is a capacity and time bounded cache of tenant
// eligibility.  Entries expire a fixed interval after insertion (ttl) or
// after going unread (tti), whichever comes first.  Expiry is checked
// lazily on access, so a logically expired entry behaves exactly like a
// miss.
//
// The cache does not populate itself - read-through is the dispatcher's
// job, which keeps the single-flight handling in one place.
type EligibilityCache struct {
	mutex sync.Mutex
	lru   *simplelru.LRU[domain.TenantID, *eligibilityEntry]
	ttl   time.Duration
	tti   time.Duration
	now   func() time.Time
}

func NewEligibilityCache(size int, ttl time.Duration, tti time.Duration) (*EligibilityCache, error) {

	lru, err := simplelru.NewLRU[domain.TenantID, *eligibilityEntry](size, nil)
	if err != nil {
		return nil, err
	}

	return &EligibilityCache{
		lru: lru,
		ttl: ttl,
		tti: tti,
		now: time.Now,
	}, nil
}

// Get returns the cached eligibility for a tenant.  The second return
// value is false on a miss (absent, expired or evicted).  A hit resets the
// entry's idle clock.
func (ec *EligibilityCache) Get(tenantID domain.TenantID) (bool, bool) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	entry, ok := ec.lru.Get(tenantID)
	if !ok {
		metrics.eligibilityCacheMissCounter.Inc()
		return false, false
	}

	now := ec.now()

	if now.Sub(entry.insertedAt) >= ec.ttl || now.Sub(entry.lastAccess) >= ec.tti {
		ec.lru.Remove(tenantID)
		metrics.eligibilityCacheExpirationCounter.Inc()
		metrics.eligibilityCacheMissCounter.Inc()
		return false, false
	}

	entry.lastAccess = now

	metrics.eligibilityCacheHitCounter.Inc()
	return entry.eligible, true
}

// Set inserts or overwrites the entry for a tenant, resetting both of its
// expiry clocks.
func (ec *EligibilityCache) Set(tenantID domain.TenantID, eligible bool) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	now := ec.now()

	evicted := ec.lru.Add(tenantID, &eligibilityEntry{
		eligible:   eligible,
		insertedAt: now,
		lastAccess: now,
	})

	if evicted {
		metrics.eligibilityCacheEvictionCounter.Inc()
	}
}

// Invalidate removes a single tenant's entry immediately.
func (ec *EligibilityCache) Invalidate(tenantID domain.TenantID) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	if ec.lru.Remove(tenantID) {
		metrics.eligibilityCacheInvalidationCounter.Inc()
	}
}

// InvalidateAll removes every entry immediately.  Used when a bulk registry
// change lands and the cached eligibility can no longer be trusted.
func (ec *EligibilityCache) InvalidateAll() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	metrics.eligibilityCacheInvalidationCounter.Add(float64(ec.lru.Len()))
	ec.lru.Purge()
}

func (ec *EligibilityCache) Len() int {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	return ec.lru.Len()
}
