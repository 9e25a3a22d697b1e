package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/secureauth/internal/identity/entity"
	"github.com/shandysiswandi/secureauth/internal/pkg/goerror"
)

type VerifyEmailInput struct {
	Email string `validate:"required,email"`
	OTP   string `validate:"required,otp_code"`
}

const (
	NextStepLogin              = "LOGIN"
	NextStepAuthenticatorSetup = "SETUP_AUTHENTICATOR"
)

type VerifyEmailOutput struct {
	AlreadyVerified bool
	Status          string
	NextStep        string
}

func (s *Usecase) VerifyEmail(ctx context.Context, in VerifyEmailInput) (*VerifyEmailOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyEmail")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.repoDB.GetAccountByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if acc.EmailVerified {
		return &VerifyEmailOutput{
			AlreadyVerified: true,
			Status:          acc.Status.String(),
			NextStep:        nextStep(acc),
		}, nil
	}

	now := s.clock.Now()
	outcome := s.codec.Validate(acc.EmailVerifyOTP, acc.EmailVerifyOTPExpiresAt, in.OTP, now)
	if err := outcomeError(outcome); err != nil {
		slog.WarnContext(ctx, "email verification otp rejected", "account_id", acc.ID, "outcome", outcome.String())
		return nil, err
	}

	acc.ClearEmailVerifyOTP()
	acc.EmailVerified = true
	if acc.OTPMethod == entity.OTPMethodEmail {
		acc.Activate()
	}
	acc.UpdatedAt = now

	if err := s.repoDB.SaveAccount(ctx, *acc); err != nil {
		slog.ErrorContext(ctx, "failed to repo save account", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &VerifyEmailOutput{
		Status:   acc.Status.String(),
		NextStep: nextStep(acc),
	}, nil
}

func nextStep(acc *entity.Account) string {
	if acc.IsActive() {
		return NextStepLogin
	}
	return NextStepAuthenticatorSetup
}
