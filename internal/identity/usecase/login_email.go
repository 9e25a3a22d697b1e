package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/secureauth/internal/identity/entity"
	"github.com/shandysiswandi/secureauth/internal/pkg/goerror"
)

type LoginEmailInput struct {
	Email string `validate:"required,email"`
	OTP   string `validate:"required,otp_code"`
}

type TokenOutput struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

func (s *Usecase) LoginEmail(ctx context.Context, in LoginEmailInput) (*TokenOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginEmail")
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

	now := s.clock.Now()
	outcome := s.codec.Validate(acc.LoginOTP, acc.LoginOTPExpiresAt, in.OTP, now)
	if err := outcomeError(outcome); err != nil {
		slog.WarnContext(ctx, "login otp rejected", "account_id", acc.ID, "outcome", outcome.String())
		return nil, err
	}

	if !acc.IsActive() {
		return nil, goerror.NewBusiness("Account not ACTIVE. Complete verification/2FA setup.", goerror.CodeNotActive)
	}

	acc.ClearLogin()
	acc.UpdatedAt = now

	if err := s.repoDB.SaveAccount(ctx, *acc); err != nil {
		slog.ErrorContext(ctx, "failed to repo save account", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return s.issueToken(ctx, acc)
}

func (s *Usecase) issueToken(ctx context.Context, acc *entity.Account) (*TokenOutput, error) {
	token, err := s.session.Issue(acc.ID, acc.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue session token", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &TokenOutput{
		AccessToken: token.Value,
		TokenType:   "Bearer",
		ExpiresAt:   token.ExpiresAt,
	}, nil
}
