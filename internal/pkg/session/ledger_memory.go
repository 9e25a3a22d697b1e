package session

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/shandysiswandi/secureauth/internal/pkg/clock"
)

// MemoryLedger keeps revoked keys in process memory, each with a TTL equal
// to the remaining validity of its token. Entries vanish on restart, so it
// only suits single-instance deployments and tests.
type MemoryLedger struct {
	cache *ttlcache.Cache[string, time.Time]
	clock clock.Clocker
}

func NewMemoryLedger(clk clock.Clocker) *MemoryLedger {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, time.Time](),
	)
	go cache.Start()

	return &MemoryLedger{cache: cache, clock: clk}
}

func (l *MemoryLedger) IsRevoked(_ context.Context, key string) (bool, error) {
	return l.cache.Get(key) != nil, nil
}

func (l *MemoryLedger) Revoke(_ context.Context, key string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(l.clock.Now())
	if ttl <= 0 {
		return nil
	}

	if l.cache.Get(key) == nil {
		l.cache.Set(key, expiresAt, ttl)
	}
	return nil
}

// Len returns the number of live entries.
func (l *MemoryLedger) Len() int {
	return l.cache.Len()
}

// Close stops the expiry loop.
func (l *MemoryLedger) Close() error {
	l.cache.Stop()
	return nil
}
