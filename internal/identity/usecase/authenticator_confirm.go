package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/secureauth/internal/identity/entity"
	"github.com/shandysiswandi/secureauth/internal/pkg/goerror"
)

type AuthenticatorConfirmInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Code     string `validate:"required,otp_code"`
}

type AuthenticatorConfirmOutput struct {
	Status   string
	NextStep string
}

// AuthenticatorConfirm proves possession of the enrolled secret and
// activates the account.
func (s *Usecase) AuthenticatorConfirm(ctx context.Context, in AuthenticatorConfirmInput) (*AuthenticatorConfirmOutput, error) {
	ctx, span := s.startSpan(ctx, "AuthenticatorConfirm")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.accountWithPassword(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	if err := ensureEnrolled(acc); err != nil {
		return nil, err
	}

	secret, err := s.decryptTOTPSecret(acc)
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt totp secret", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	if !s.totp.Validate(in.Code, secret, now) {
		slog.WarnContext(ctx, "authenticator code rejected", "account_id", acc.ID)
		return nil, goerror.NewBusiness("Invalid Authenticator OTP", goerror.CodeInvalidOTP)
	}

	if !acc.IsActive() {
		acc.Activate()
		acc.UpdatedAt = now

		if err := s.repoDB.SaveAccount(ctx, *acc); err != nil {
			slog.ErrorContext(ctx, "failed to repo save account", "account_id", acc.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	return &AuthenticatorConfirmOutput{
		Status:   acc.Status.String(),
		NextStep: NextStepLogin,
	}, nil
}

// accountWithPassword loads the account and checks the password, answering
// unknown emails and wrong passwords alike.
func (s *Usecase) accountWithPassword(ctx context.Context, email, password string) (*entity.Account, error) {
	acc, err := s.repoDB.GetAccountByEmail(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found", "email", email)
		return nil, errInvalidCredentials()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.password.Verify(acc.PasswordHash, password) {
		slog.WarnContext(ctx, "password account not match", "account_id", acc.ID)
		return nil, errInvalidCredentials()
	}

	return acc, nil
}

func ensureEnrolled(acc *entity.Account) error {
	if acc.OTPMethod != entity.OTPMethodAuthenticator {
		return goerror.NewBusiness("This account is not using Authenticator", goerror.CodePrecondition)
	}

	if !acc.EmailVerified {
		return goerror.NewBusiness("Email not verified", goerror.CodePrecondition)
	}

	if !acc.HasAuthenticator() {
		return goerror.NewBusiness("Authenticator not set up", goerror.CodePrecondition)
	}

	return nil
}
