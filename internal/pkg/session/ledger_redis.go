package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/secureauth/internal/pkg/clock"
)

// RedisLedger stores each revoked key with a TTL equal to the remaining
// validity of its token, so Redis prunes the ledger on its own.
type RedisLedger struct {
	client *redis.Client
	prefix string
	clock  clock.Clocker
}

func NewRedisLedger(client *redis.Client, clk clock.Clocker) *RedisLedger {
	return &RedisLedger{client: client, prefix: "session:revoked:", clock: clk}
}

func (l *RedisLedger) IsRevoked(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Exists(ctx, l.prefix+key).Result()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (l *RedisLedger) Revoke(ctx context.Context, key string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(l.clock.Now())
	if ttl <= 0 {
		return nil
	}

	return l.client.SetNX(ctx, l.prefix+key, expiresAt.Unix(), ttl).Err()
}
