package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/secureauth/internal/pkg/clock"
	"github.com/shandysiswandi/secureauth/internal/pkg/containertest"
	"github.com/shandysiswandi/secureauth/internal/pkg/session"
)

func TestPostgresLedger(t *testing.T) {
	dsn := containertest.Postgres(t)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewManual(now)
	ledger := session.NewPostgresLedger(pool, clk)

	t.Run("RevokeIsIdempotent", func(t *testing.T) {
		exp := now.Add(time.Hour)

		require.NoError(t, ledger.Revoke(ctx, "digest-a", exp))
		require.NoError(t, ledger.Revoke(ctx, "digest-a", exp))

		revoked, err := ledger.IsRevoked(ctx, "digest-a")
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = ledger.IsRevoked(ctx, "digest-unknown")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("PruneRemovesOnlyExpired", func(t *testing.T) {
		require.NoError(t, ledger.Revoke(ctx, "digest-short", now.Add(time.Minute)))
		require.NoError(t, ledger.Revoke(ctx, "digest-long", now.Add(3*time.Hour)))

		clk.Advance(2 * time.Hour)

		n, err := ledger.Prune(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n) // digest-a and digest-short

		revoked, err := ledger.IsRevoked(ctx, "digest-long")
		require.NoError(t, err)
		assert.True(t, revoked)
	})
}
