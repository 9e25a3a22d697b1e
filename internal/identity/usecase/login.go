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

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// LoginOutput is the second-factor challenge. Method says which completion
// call the client makes next.
type LoginOutput struct {
	Method    string
	ExpiresAt time.Time
	Delivery  Delivery
}

func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
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

	if !s.password.Verify(acc.PasswordHash, in.Password) {
		slog.WarnContext(ctx, "password account not match", "account_id", acc.ID)
		return nil, errInvalidCredentials()
	}

	if !acc.IsActive() {
		slog.WarnContext(ctx, "account is not active", "account_id", acc.ID, "status", acc.Status.String())
		return nil, goerror.NewBusiness("Account not ACTIVE. Complete verification/2FA setup.", goerror.CodeNotActive)
	}

	now := s.clock.Now()

	if acc.OTPMethod == entity.OTPMethodAuthenticator {
		until := now.Add(s.codec.Lifetime())
		acc.LoginPendingUntil = &until
		acc.UpdatedAt = now

		if err := s.repoDB.SaveAccount(ctx, *acc); err != nil {
			slog.ErrorContext(ctx, "failed to repo save account", "account_id", acc.ID, "error", err)
			return nil, goerror.NewServer(err)
		}

		return &LoginOutput{Method: entity.OTPMethodAuthenticator.String(), ExpiresAt: until}, nil
	}

	issued, err := s.codec.Issue(now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue login otp", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	acc.SetLoginOTP(issued.Digest, issued.ExpiresAt)
	acc.UpdatedAt = now

	if err := s.repoDB.SaveAccount(ctx, *acc); err != nil {
		slog.ErrorContext(ctx, "failed to repo save account", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	delivery, err := s.deliverOTP(ctx, acc, subjectLogin, s.loginBody(issued.Code), issued.Code)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		Method:    entity.OTPMethodEmail.String(),
		ExpiresAt: issued.ExpiresAt,
		Delivery:  delivery,
	}, nil
}
