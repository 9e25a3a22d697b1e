package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/secureauth/internal/pkg/clock"
	"github.com/shandysiswandi/secureauth/internal/pkg/hash"
	"github.com/shandysiswandi/secureauth/internal/pkg/jwt"
	"github.com/shandysiswandi/secureauth/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenLedger struct{}

func (brokenLedger) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("ledger down")
}

func (brokenLedger) Revoke(context.Context, string, time.Time) error {
	return errors.New("ledger down")
}

func newManager(t *testing.T, clk clock.Clocker, ledger Ledger) *Manager {
	t.Helper()

	j, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat("s", 64)),
		Issuer: "secureauth",
		Clock:  clk,
		UUID:   uid.NewUUID(),
	})
	require.NoError(t, err)

	return NewManager(j, ledger, hash.NewHMACSHA256("ledger"))
}

func TestManager(t *testing.T) {
	ctx := context.Background()
	start := time.Now().UTC().Truncate(time.Second)

	t.Run("IssueAndVerify", func(t *testing.T) {
		// Arrange
		clk := clock.NewManual(start)
		ledger := NewMemoryLedger(clk)
		t.Cleanup(func() { _ = ledger.Close() })
		m := newManager(t, clk, ledger)

		// Act
		tok, err := m.Issue(7, "a@x.com")
		require.NoError(t, err)
		claims, err := m.Verify(ctx, tok.Value)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, start.Add(time.Hour), tok.ExpiresAt)
		assert.Equal(t, int64(7), claims.AccountID)
		assert.Equal(t, "a@x.com", claims.Email)
	})

	t.Run("RevokedBeforeExpiry", func(t *testing.T) {
		// Arrange
		clk := clock.NewManual(start)
		ledger := NewMemoryLedger(clk)
		t.Cleanup(func() { _ = ledger.Close() })
		m := newManager(t, clk, ledger)
		tok, err := m.Issue(7, "a@x.com")
		require.NoError(t, err)

		// Act
		require.NoError(t, m.Revoke(ctx, tok.Value))
		clk.Advance(time.Minute)
		_, err = m.Verify(ctx, tok.Value)

		// Assert
		assert.ErrorIs(t, err, ErrRevoked)
		assert.Equal(t, 1, ledger.Len())
	})

	t.Run("RevokeIsIdempotent", func(t *testing.T) {
		clk := clock.NewManual(start)
		ledger := NewMemoryLedger(clk)
		t.Cleanup(func() { _ = ledger.Close() })
		m := newManager(t, clk, ledger)
		tok, err := m.Issue(7, "a@x.com")
		require.NoError(t, err)

		require.NoError(t, m.Revoke(ctx, tok.Value))
		require.NoError(t, m.Revoke(ctx, tok.Value))

		assert.Equal(t, 1, ledger.Len())
	})

	t.Run("OtherTokensUnaffected", func(t *testing.T) {
		clk := clock.NewManual(start)
		ledger := NewMemoryLedger(clk)
		t.Cleanup(func() { _ = ledger.Close() })
		m := newManager(t, clk, ledger)
		first, err := m.Issue(7, "a@x.com")
		require.NoError(t, err)
		second, err := m.Issue(7, "a@x.com")
		require.NoError(t, err)

		require.NoError(t, m.Revoke(ctx, first.Value))
		_, err = m.Verify(ctx, second.Value)

		assert.NoError(t, err)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		clk := clock.NewManual(start)
		ledger := NewMemoryLedger(clk)
		t.Cleanup(func() { _ = ledger.Close() })
		m := newManager(t, clk, ledger)
		tok, err := m.Issue(7, "a@x.com")
		require.NoError(t, err)

		clk.Advance(2 * time.Hour)

		_, err = m.Verify(ctx, tok.Value)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
		assert.NoError(t, m.Revoke(ctx, tok.Value))
		assert.Equal(t, 0, ledger.Len())
	})

	t.Run("InvalidToken", func(t *testing.T) {
		clk := clock.NewManual(start)
		m := newManager(t, clk, NewMemoryLedger(clk))

		_, err := m.Verify(ctx, "garbage")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
		assert.ErrorIs(t, m.Revoke(ctx, "garbage"), jwt.ErrInvalidToken)
	})

	t.Run("LedgerFailure", func(t *testing.T) {
		clk := clock.NewManual(start)
		m := newManager(t, clk, brokenLedger{})
		tok, err := m.Issue(7, "a@x.com")
		require.NoError(t, err)

		_, err = m.Verify(ctx, tok.Value)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrRevoked)
		assert.Error(t, m.Revoke(ctx, tok.Value))
	})
}
