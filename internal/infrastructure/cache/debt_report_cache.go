package cache

import (
	"context"
	"sync"
	"time"

	appledger "github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
)

// DefaultDebtReportTTL is used when a cache is created with a non-positive TTL
const DefaultDebtReportTTL = 10 * time.Minute

// InMemoryDebtReportCache keeps the last debt report in process memory.
// Suitable for single-instance deployments and tests.
type InMemoryDebtReportCache struct {
	mu       sync.RWMutex
	report   *appledger.DebtReport
	storedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

// NewInMemoryDebtReportCache creates an in-memory cache whose entry expires after ttl
func NewInMemoryDebtReportCache(ttl time.Duration) *InMemoryDebtReportCache {
	if ttl <= 0 {
		ttl = DefaultDebtReportTTL
	}
	return &InMemoryDebtReportCache{ttl: ttl, now: time.Now}
}

// Get returns the cached report, or nil when empty or expired
func (c *InMemoryDebtReportCache) Get(_ context.Context) (*appledger.DebtReport, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.report == nil || c.now().Sub(c.storedAt) >= c.ttl {
		return nil, nil
	}
	return cloneReport(c.report), nil
}

// Set replaces the cached report
func (c *InMemoryDebtReportCache) Set(_ context.Context, report *appledger.DebtReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = cloneReport(report)
	c.storedAt = c.now()
	return nil
}

// Invalidate drops the cached report
func (c *InMemoryDebtReportCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = nil
	return nil
}

// cloneReport copies the debt slice so callers cannot mutate the cached entry
func cloneReport(r *appledger.DebtReport) *appledger.DebtReport {
	if r == nil {
		return nil
	}
	out := *r
	out.Debts = append(out.Debts[:0:0], r.Debts...)
	return &out
}

var _ appledger.DebtReportCache = (*InMemoryDebtReportCache)(nil)
