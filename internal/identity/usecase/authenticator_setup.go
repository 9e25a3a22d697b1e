package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/secureauth/internal/identity/entity"
	"github.com/shandysiswandi/secureauth/internal/pkg/goerror"
	"github.com/shandysiswandi/secureauth/internal/pkg/mfa"
)

type AuthenticatorSetupInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type AuthenticatorSetupOutput struct {
	Secret string
	URI    string
	QRCode string
}

// AuthenticatorSetup enrolls a TOTP secret for the password holder. Running
// it again before the account is ACTIVE replaces the unconfirmed secret.
func (s *Usecase) AuthenticatorSetup(ctx context.Context, in AuthenticatorSetupInput) (*AuthenticatorSetupOutput, error) {
	ctx, span := s.startSpan(ctx, "AuthenticatorSetup")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.accountWithPassword(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	if !acc.EmailVerified {
		return nil, goerror.NewBusiness("Email not verified", goerror.CodePrecondition)
	}

	if acc.OTPMethod != entity.OTPMethodAuthenticator {
		return nil, goerror.NewBusiness("This account is not using Authenticator", goerror.CodePrecondition)
	}

	if acc.IsActive() {
		return nil, goerror.NewBusiness("Authenticator already enrolled", goerror.CodeConflict)
	}

	secret, uri, err := s.totp.Generate(acc.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	qr, err := s.totp.Render(uri, s.opts.QRSize)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render totp qr code", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	encryptedSecret, err := s.mfaEncryptor.Encrypt([]byte(secret), mfa.TOTPScope(acc.ID))
	if err != nil {
		slog.ErrorContext(ctx, "failed to encrypt totp secret", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	acc.TOTPSecret = encryptedSecret
	acc.UpdatedAt = s.clock.Now()

	if err := s.repoDB.SaveAccount(ctx, *acc); err != nil {
		slog.ErrorContext(ctx, "failed to repo save account", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &AuthenticatorSetupOutput{
		Secret: secret,
		URI:    uri,
		QRCode: qr,
	}, nil
}
