package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/secureauth/internal/identity/entity"
)

const accountColumns = `id, email, password_hash, status, email_verified, otp_method,
	email_verify_otp, email_verify_otp_expires_at, login_otp, login_otp_expires_at,
	totp_secret, login_pending_until, created_at, updated_at`

func scanAccount(row pgx.Row) (*entity.Account, error) {
	var acc entity.Account
	err := row.Scan(
		&acc.ID,
		&acc.Email,
		&acc.PasswordHash,
		&acc.Status,
		&acc.EmailVerified,
		&acc.OTPMethod,
		&acc.EmailVerifyOTP,
		&acc.EmailVerifyOTPExpiresAt,
		&acc.LoginOTP,
		&acc.LoginOTPExpiresAt,
		&acc.TOTPSecret,
		&acc.LoginPendingUntil,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &acc, nil
}

// GetAccountByEmail matches case-insensitively, backed by the LOWER(email)
// unique index.
func (s *DB) GetAccountByEmail(ctx context.Context, email string) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByEmail")
	defer func() { s.endSpan(span, err) }()

	acc, err := scanAccount(s.conn.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM identity_accounts WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		return nil, s.mapError(err)
	}

	return acc, nil
}

func (s *DB) GetAccountByID(ctx context.Context, id int64) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByID")
	defer func() { s.endSpan(span, err) }()

	acc, err := scanAccount(s.conn.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM identity_accounts WHERE id = $1`, id))
	if err != nil {
		return nil, s.mapError(err)
	}

	return acc, nil
}

func (s *DB) CreateAccount(ctx context.Context, acc entity.Account) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAccount")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO identity_accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		acc.ID,
		acc.Email,
		acc.PasswordHash,
		acc.Status,
		acc.EmailVerified,
		acc.OTPMethod,
		acc.EmailVerifyOTP,
		acc.EmailVerifyOTPExpiresAt,
		acc.LoginOTP,
		acc.LoginOTPExpiresAt,
		acc.TOTPSecret,
		acc.LoginPendingUntil,
		acc.CreatedAt,
		acc.UpdatedAt,
	)

	return s.mapError(err)
}

// SaveAccount overwrites every mutable column of the account row.
func (s *DB) SaveAccount(ctx context.Context, acc entity.Account) (err error) {
	ctx, span := s.startSpan(ctx, "SaveAccount")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE identity_accounts SET
			password_hash = $2,
			status = $3,
			email_verified = $4,
			email_verify_otp = $5,
			email_verify_otp_expires_at = $6,
			login_otp = $7,
			login_otp_expires_at = $8,
			totp_secret = $9,
			login_pending_until = $10,
			updated_at = $11
		WHERE id = $1`,
		acc.ID,
		acc.PasswordHash,
		acc.Status,
		acc.EmailVerified,
		acc.EmailVerifyOTP,
		acc.EmailVerifyOTPExpiresAt,
		acc.LoginOTP,
		acc.LoginOTPExpiresAt,
		acc.TOTPSecret,
		acc.LoginPendingUntil,
		acc.UpdatedAt,
	)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		return s.mapError(pgx.ErrNoRows)
	}

	return nil
}
