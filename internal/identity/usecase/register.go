package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/secureauth/internal/identity/entity"
	"github.com/shandysiswandi/secureauth/internal/pkg/goerror"
)

type RegisterInput struct {
	Email     string `validate:"required,email"`
	Password  string `validate:"required,password"`
	OTPMethod string `validate:"required,otp_method"`
}

type RegisterOutput struct {
	AccountID int64
	Email     string
	Status    string
	OTPMethod string
	Delivery  Delivery
}

func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	_, err := s.repoDB.GetAccountByEmail(ctx, in.Email)
	if err == nil {
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	hashedPassword, err := s.password.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	issued, err := s.codec.Issue(now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue email verification otp", "error", err)
		return nil, goerror.NewServer(err)
	}

	acc := entity.Account{
		ID:           s.uid.Generate(),
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Status:       entity.AccountStatusUnverified,
		OTPMethod:    entity.ParseOTPMethod(in.OTPMethod),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	acc.SetEmailVerifyOTP(issued.Digest, issued.ExpiresAt)

	err = s.repoDB.CreateAccount(ctx, acc)
	if errors.Is(err, goerror.ErrConflict) {
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create account", "email", acc.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	delivery, err := s.deliverOTP(ctx, &acc, subjectEmailVerify, s.emailVerifyBody(issued.Code), issued.Code)
	if err != nil {
		return nil, err
	}

	return &RegisterOutput{
		AccountID: acc.ID,
		Email:     acc.Email,
		Status:    acc.Status.String(),
		OTPMethod: acc.OTPMethod.String(),
		Delivery:  delivery,
	}, nil
}
