package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/secureauth/internal/identity/entity"
	"github.com/shandysiswandi/secureauth/internal/pkg/goerror"
)

func TestAuthenticatorSetup(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		env.register(t, "a@x.com", "AUTHENTICATOR")
		env.verifyEmail(t, "a@x.com")

		// Act
		out, err := env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "a@x.com", Password: "pw123"})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Secret == "" || !strings.HasPrefix(out.URI, "otpauth://totp/") || !strings.Contains(out.URI, "issuer=SecureAuth") {
			t.Fatalf("unexpected enrollment %+v", out)
		}
		if !strings.HasPrefix(out.QRCode, "data:image/png;base64,") {
			t.Fatalf("expected a png data url")
		}
		acc := env.repo.byEmail(t, "a@x.com")
		if !acc.HasAuthenticator() || strings.Contains(string(acc.TOTPSecret), out.Secret) {
			t.Fatalf("expected the secret to be stored encrypted")
		}
		if acc.Status != entity.AccountStatusUnverified {
			t.Fatalf("enrollment alone must not activate")
		}
	})

	t.Run("EmailNotVerified", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		env.register(t, "a@x.com", "AUTHENTICATOR")

		// Act
		_, err := env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "a@x.com", Password: "pw123"})

		// Assert
		assertCode(t, err, goerror.CodePrecondition)
	})

	t.Run("EmailMethod", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		env.register(t, "a@x.com", "EMAIL")
		env.verifyEmail(t, "a@x.com")

		// Act
		_, err := env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "a@x.com", Password: "pw123"})

		// Assert
		assertCode(t, err, goerror.CodePrecondition)
	})

	t.Run("ReplacesUnconfirmedSecret", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		env.register(t, "a@x.com", "AUTHENTICATOR")
		env.verifyEmail(t, "a@x.com")
		first, err := env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "a@x.com", Password: "pw123"})
		if err != nil {
			t.Fatalf("first setup: %v", err)
		}

		// Act
		second, err := env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "a@x.com", Password: "pw123"})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.Secret == second.Secret {
			t.Fatalf("expected a new secret")
		}
		_, err = env.uc.AuthenticatorConfirm(ctx, AuthenticatorConfirmInput{Email: "a@x.com", Password: "pw123", Code: env.authCode(t, first.Secret)})
		assertCode(t, err, goerror.CodeInvalidOTP)
	})

	t.Run("RequiresPassword", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		env.register(t, "victim@x.com", "AUTHENTICATOR")
		env.verifyEmail(t, "victim@x.com")

		// Act
		_, errWrong := env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "victim@x.com", Password: "guess"})
		_, errMissing := env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "victim@x.com"})
		_, errUnknown := env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "nobody@x.com", Password: "pw123"})

		// Assert
		assertCode(t, errWrong, goerror.CodeInvalidCredentials)
		assertCode(t, errMissing, goerror.CodeInvalidInput)
		assertCode(t, errUnknown, goerror.CodeInvalidCredentials)
		if acc := env.repo.byEmail(t, "victim@x.com"); acc.HasAuthenticator() {
			t.Fatalf("a rejected setup must not store a secret")
		}
	})

	t.Run("AlreadyActive", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		env.register(t, "a@x.com", "AUTHENTICATOR")
		env.verifyEmail(t, "a@x.com")
		setup, err := env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "a@x.com", Password: "pw123"})
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
		if _, err := env.uc.AuthenticatorConfirm(ctx, AuthenticatorConfirmInput{Email: "a@x.com", Password: "pw123", Code: env.authCode(t, setup.Secret)}); err != nil {
			t.Fatalf("confirm: %v", err)
		}

		// Act
		_, err = env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "a@x.com", Password: "pw123"})

		// Assert
		assertCode(t, err, goerror.CodeConflict)
	})
}

func TestAuthenticatorConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("Activates", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		env.register(t, "a@x.com", "AUTHENTICATOR")
		env.verifyEmail(t, "a@x.com")
		setup, err := env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "a@x.com", Password: "pw123"})
		if err != nil {
			t.Fatalf("setup: %v", err)
		}

		// Act
		out, err := env.uc.AuthenticatorConfirm(ctx, AuthenticatorConfirmInput{Email: "a@x.com", Password: "pw123", Code: env.authCode(t, setup.Secret)})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Status != "ACTIVE" || out.NextStep != NextStepLogin {
			t.Fatalf("unexpected output %+v", out)
		}
	})

	t.Run("PreviousStepAccepted", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		env.register(t, "a@x.com", "AUTHENTICATOR")
		env.verifyEmail(t, "a@x.com")
		setup, err := env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "a@x.com", Password: "pw123"})
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
		code := env.authCode(t, setup.Secret)
		env.clock.Advance(30 * time.Second)

		// Act
		_, err = env.uc.AuthenticatorConfirm(ctx, AuthenticatorConfirmInput{Email: "a@x.com", Password: "pw123", Code: code})

		// Assert
		if err != nil {
			t.Fatalf("expected a code one step old to pass with window 1: %v", err)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		env.register(t, "a@x.com", "AUTHENTICATOR")
		env.verifyEmail(t, "a@x.com")
		setup, err := env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "a@x.com", Password: "pw123"})
		if err != nil {
			t.Fatalf("setup: %v", err)
		}

		// Act
		_, err = env.uc.AuthenticatorConfirm(ctx, AuthenticatorConfirmInput{Email: "a@x.com", Password: "guess", Code: env.authCode(t, setup.Secret)})

		// Assert
		assertCode(t, err, goerror.CodeInvalidCredentials)
		if acc := env.repo.byEmail(t, "a@x.com"); acc.Status != entity.AccountStatusUnverified {
			t.Fatalf("a rejected confirm must not activate")
		}
	})

	t.Run("NotEnrolled", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		env.register(t, "a@x.com", "AUTHENTICATOR")
		env.verifyEmail(t, "a@x.com")

		// Act
		_, err := env.uc.AuthenticatorConfirm(ctx, AuthenticatorConfirmInput{Email: "a@x.com", Password: "pw123", Code: demoCode})

		// Assert
		assertCode(t, err, goerror.CodePrecondition)
	})
}

func TestLoginAuthenticator(t *testing.T) {
	ctx := context.Background()

	enroll := func(t *testing.T, env *testEnv) string {
		t.Helper()

		env.register(t, "a@x.com", "AUTHENTICATOR")
		env.verifyEmail(t, "a@x.com")
		setup, err := env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "a@x.com", Password: "pw123"})
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
		return setup.Secret
	}

	t.Run("EnrollmentScenario", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		secret := enroll(t, env)

		// Act
		tok, err := env.uc.LoginAuthenticator(ctx, LoginAuthenticatorInput{Email: "a@x.com", Code: env.authCode(t, secret)})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := env.sessions.Verify(ctx, tok.AccessToken); err != nil {
			t.Fatalf("issued token does not verify: %v", err)
		}
		if acc := env.repo.byEmail(t, "a@x.com"); acc.Status != entity.AccountStatusActive {
			t.Fatalf("expected first valid code to activate, got %s", acc.Status)
		}
	})

	t.Run("ForeignSecret", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		enroll(t, env)
		other, _, err := env.totp.Generate("other@x.com")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		// Act
		_, err = env.uc.LoginAuthenticator(ctx, LoginAuthenticatorInput{Email: "a@x.com", Code: env.authCode(t, other)})

		// Assert
		assertCode(t, err, goerror.CodeInvalidOTP)
		if acc := env.repo.byEmail(t, "a@x.com"); acc.Status != entity.AccountStatusUnverified {
			t.Fatalf("a rejected code must not activate")
		}
	})

	t.Run("ActiveNeedsLoginChallenge", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		secret := enroll(t, env)
		if _, err := env.uc.AuthenticatorConfirm(ctx, AuthenticatorConfirmInput{Email: "a@x.com", Password: "pw123", Code: env.authCode(t, secret)}); err != nil {
			t.Fatalf("confirm: %v", err)
		}

		// Act
		_, errNoChallenge := env.uc.LoginAuthenticator(ctx, LoginAuthenticatorInput{Email: "a@x.com", Code: env.authCode(t, secret)})
		_, errLogin := env.uc.Login(ctx, LoginInput{Email: "a@x.com", Password: "pw123"})
		tok, errComplete := env.uc.LoginAuthenticator(ctx, LoginAuthenticatorInput{Email: "a@x.com", Code: env.authCode(t, secret)})

		// Assert
		assertCode(t, errNoChallenge, goerror.CodeNoPendingOTP)
		if errLogin != nil || errComplete != nil {
			t.Fatalf("unexpected errors: login=%v complete=%v", errLogin, errComplete)
		}
		if tok.AccessToken == "" {
			t.Fatalf("expected a token")
		}
		if acc := env.repo.byEmail(t, "a@x.com"); acc.LoginPendingUntil != nil {
			t.Fatalf("expected the challenge to be consumed")
		}
	})

	t.Run("ChallengeExpired", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		secret := enroll(t, env)
		if _, err := env.uc.AuthenticatorConfirm(ctx, AuthenticatorConfirmInput{Email: "a@x.com", Password: "pw123", Code: env.authCode(t, secret)}); err != nil {
			t.Fatalf("confirm: %v", err)
		}
		if _, err := env.uc.Login(ctx, LoginInput{Email: "a@x.com", Password: "pw123"}); err != nil {
			t.Fatalf("login: %v", err)
		}
		env.clock.Advance(6 * time.Minute)

		// Act
		_, err := env.uc.LoginAuthenticator(ctx, LoginAuthenticatorInput{Email: "a@x.com", Code: env.authCode(t, secret)})

		// Assert
		assertCode(t, err, goerror.CodeExpiredOTP)
	})

	t.Run("NotEnrolled", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		env.register(t, "a@x.com", "AUTHENTICATOR")
		env.verifyEmail(t, "a@x.com")

		// Act
		_, err := env.uc.LoginAuthenticator(ctx, LoginAuthenticatorInput{Email: "a@x.com", Code: demoCode})

		// Assert
		assertCode(t, err, goerror.CodePrecondition)
	})

	t.Run("EmailOnlyCannotEnrollAndSignIn", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)
		env.register(t, "victim@x.com", "AUTHENTICATOR")
		env.verifyEmail(t, "victim@x.com")
		attackerSecret, _, err := env.totp.Generate("victim@x.com")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		// Act
		_, errSetup := env.uc.AuthenticatorSetup(ctx, AuthenticatorSetupInput{Email: "victim@x.com"})
		tok, errLogin := env.uc.LoginAuthenticator(ctx, LoginAuthenticatorInput{Email: "victim@x.com", Code: env.authCode(t, attackerSecret)})

		// Assert
		assertCode(t, errSetup, goerror.CodeInvalidInput)
		assertCode(t, errLogin, goerror.CodePrecondition)
		if tok != nil {
			t.Fatalf("no token may be minted without the password")
		}
		if acc := env.repo.byEmail(t, "victim@x.com"); acc.Status != entity.AccountStatusUnverified || acc.HasAuthenticator() {
			t.Fatalf("account must stay unenrolled and UNVERIFIED")
		}
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, Options{}, nil)

		// Act
		_, err := env.uc.LoginAuthenticator(ctx, LoginAuthenticatorInput{Email: "nobody@x.com", Code: demoCode})

		// Assert
		assertCode(t, err, goerror.CodeInvalidCredentials)
	})
}
