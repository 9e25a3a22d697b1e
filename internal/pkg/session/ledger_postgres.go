package session

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/secureauth/internal/pkg/clock"
)

// PostgresLedger stores revoked keys in identity_revoked_tokens. Rows stay
// until Prune removes those whose token has expired.
type PostgresLedger struct {
	conn  *pgxpool.Pool
	clock clock.Clocker
}

func NewPostgresLedger(conn *pgxpool.Pool, clk clock.Clocker) *PostgresLedger {
	return &PostgresLedger{conn: conn, clock: clk}
}

func (l *PostgresLedger) IsRevoked(ctx context.Context, key string) (bool, error) {
	var found bool
	err := l.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM identity_revoked_tokens WHERE token_digest = $1)`,
		key,
	).Scan(&found)

	return found, err
}

func (l *PostgresLedger) Revoke(ctx context.Context, key string, expiresAt time.Time) error {
	_, err := l.conn.Exec(ctx,
		`INSERT INTO identity_revoked_tokens (token_digest, expires_at, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (token_digest) DO NOTHING`,
		key, expiresAt, l.clock.Now(),
	)

	return err
}

// Prune deletes entries whose token expired before now and returns how
// many were removed.
func (l *PostgresLedger) Prune(ctx context.Context) (int64, error) {
	tag, err := l.conn.Exec(ctx,
		`DELETE FROM identity_revoked_tokens WHERE expires_at < $1`,
		l.clock.Now(),
	)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
