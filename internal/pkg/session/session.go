// Package session issues bearer session tokens and keeps the revocation
// ledger that makes logout possible for otherwise stateless tokens.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/secureauth/internal/pkg/jwt"
)

// ErrRevoked is returned by Verify for a token present in the ledger.
var ErrRevoked = errors.New("session: token has been revoked")

// Ledger records revoked tokens until their natural expiry.
type Ledger interface {
	// IsRevoked reports whether key was revoked.
	IsRevoked(ctx context.Context, key string) (bool, error)
	// Revoke records key. Recording an already revoked key is a no-op.
	// expiresAt is when the underlying token would have expired anyway;
	// the entry may be forgotten after that.
	Revoke(ctx context.Context, key string, expiresAt time.Time) error
}

// Digester derives the ledger key from a token so the ledger never holds
// usable bearer material.
type Digester interface {
	Digest(token string) string
}

// Token is a freshly issued session token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Manager combines token signing with the revocation ledger.
type Manager struct {
	jwt      jwt.JWT
	ledger   Ledger
	digester Digester
}

// NewManager builds a Manager. A nil digester keys the ledger by the raw
// token.
func NewManager(j jwt.JWT, ledger Ledger, digester Digester) *Manager {
	return &Manager{jwt: j, ledger: ledger, digester: digester}
}

// Issue signs a token for the account.
func (m *Manager) Issue(accountID int64, email string) (Token, error) {
	value, exp, err := m.jwt.Generate(accountID, email)
	if err != nil {
		return Token{}, fmt.Errorf("session: sign token: %w", err)
	}

	return Token{Value: value, ExpiresAt: exp}, nil
}

// Verify returns the claims of a usable token. The ledger is consulted
// before the signature, so a revoked token is rejected with ErrRevoked even
// while it is otherwise valid. Other failures are jwt.ErrInvalidToken or
// jwt.ErrTokenExpired.
func (m *Manager) Verify(ctx context.Context, token string) (jwt.Claims, error) {
	revoked, err := m.ledger.IsRevoked(ctx, m.key(token))
	if err != nil {
		return jwt.Claims{}, fmt.Errorf("session: ledger lookup: %w", err)
	}

	if revoked {
		return jwt.Claims{}, ErrRevoked
	}

	return m.jwt.Verify(token)
}

// Revoke adds token to the ledger. Revoking twice is a no-op, and so is
// revoking a token that already expired. A token that does not verify is
// rejected with jwt.ErrInvalidToken.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	claims, err := m.jwt.Verify(token)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := m.ledger.Revoke(ctx, m.key(token), claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("session: ledger insert: %w", err)
	}

	return nil
}

func (m *Manager) key(token string) string {
	if m.digester == nil {
		return token
	}
	return m.digester.Digest(token)
}
