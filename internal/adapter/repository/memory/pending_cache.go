package memory

import (
	"context"
	"sync"
	"time"

	"github.com/api-sage/mini-bank-ledger/internal/domain"
)

// PendingCache stages in-flight operation parameters between phase 1 and
// phase 2, keyed by interaction token. Take has pop semantics; entries older
// than the TTL are treated as absent so a stale confirmation cannot land.
type PendingCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]domain.PendingOperation
	now   func() time.Time
}

func NewPendingCache(ttl time.Duration) *PendingCache {
	return &PendingCache{
		ttl:   ttl,
		items: make(map[string]domain.PendingOperation),
		now:   time.Now,
	}
}

func (c *PendingCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *PendingCache) Stage(_ context.Context, token string, op domain.PendingOperation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	op.StagedAt = c.now()
	c.items[token] = op
	c.sweepLocked()
	return nil
}

func (c *PendingCache) Take(_ context.Context, token string) (domain.PendingOperation, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	op, ok := c.items[token]
	if !ok {
		return domain.PendingOperation{}, false, nil
	}
	delete(c.items, token)

	if c.ttl > 0 && c.now().After(op.StagedAt.Add(c.ttl)) {
		return domain.PendingOperation{}, false, nil
	}
	return op, true, nil
}

func (c *PendingCache) Clear(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, token)
	return nil
}

// sweepLocked drops expired entries so abandoned phase-1 requests do not
// accumulate. Caller holds the mutex.
func (c *PendingCache) sweepLocked() {
	if c.ttl <= 0 {
		return
	}
	cutoff := c.now().Add(-c.ttl)
	for token, op := range c.items {
		if op.StagedAt.Before(cutoff) {
			delete(c.items, token)
		}
	}
}
