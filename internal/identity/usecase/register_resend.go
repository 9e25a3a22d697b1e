package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/secureauth/internal/pkg/goerror"
)

type RegisterResendInput struct {
	Email string `validate:"required,email"`
}

// RegisterResend issues a fresh email verification code. Every outcome
// returns the same empty Delivery, so the response does not reveal whether
// the email is registered. With demo disclosure on, a pending account gets
// its code back in DemoOTP instead; that mode already gives up enumeration
// resistance.
func (s *Usecase) RegisterResend(ctx context.Context, in RegisterResendInput) (*Delivery, error) {
	ctx, span := s.startSpan(ctx, "RegisterResend")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.repoDB.GetAccountByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "resend requested for unknown account", "email", in.Email)
		return &Delivery{}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if acc.EmailVerified {
		return &Delivery{}, nil
	}

	now := s.clock.Now()
	issued, err := s.codec.Issue(now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue email verification otp", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	acc.SetEmailVerifyOTP(issued.Digest, issued.ExpiresAt)
	acc.UpdatedAt = now

	if err := s.repoDB.SaveAccount(ctx, *acc); err != nil {
		slog.ErrorContext(ctx, "failed to repo save account", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	delivery, err := s.deliverOTP(ctx, acc, subjectEmailVerify, s.emailVerifyBody(issued.Code), issued.Code)
	if err != nil {
		return nil, err
	}

	if delivery.DemoOTP != "" {
		return &delivery, nil
	}
	return &Delivery{}, nil
}
