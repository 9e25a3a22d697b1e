package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/secureauth/internal/identity/entity"
	"github.com/shandysiswandi/secureauth/internal/pkg/goerror"
)

type LoginAuthenticatorInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,otp_code"`
}

// LoginAuthenticator completes a login with a TOTP code.
//
// An ACTIVE account must have an open challenge from Login. An enrolled
// account that is still UNVERIFIED is activated by its first valid code.
func (s *Usecase) LoginAuthenticator(ctx context.Context, in LoginAuthenticatorInput) (*TokenOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginAuthenticator")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.repoDB.GetAccountByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found", "email", in.Email)
		return nil, errInvalidCredentials()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := ensureEnrolled(acc); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	if acc.IsActive() {
		if acc.LoginPendingUntil == nil {
			return nil, goerror.NewBusiness("No login pending", goerror.CodeNoPendingOTP)
		}
		if now.After(*acc.LoginPendingUntil) {
			return nil, goerror.NewBusiness("Login challenge expired", goerror.CodeExpiredOTP)
		}
	}

	secret, err := s.decryptTOTPSecret(acc)
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt totp secret", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.totp.Validate(in.Code, secret, now) {
		slog.WarnContext(ctx, "authenticator code rejected", "account_id", acc.ID)
		return nil, goerror.NewBusiness("Invalid OTP", goerror.CodeInvalidOTP)
	}

	if acc.Status == entity.AccountStatusUnverified {
		acc.Activate()
	}
	acc.ClearLogin()
	acc.UpdatedAt = now

	if err := s.repoDB.SaveAccount(ctx, *acc); err != nil {
		slog.ErrorContext(ctx, "failed to repo save account", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return s.issueToken(ctx, acc)
}
