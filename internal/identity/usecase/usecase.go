package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/secureauth/internal/identity/entity"
	"github.com/shandysiswandi/secureauth/internal/pkg/clock"
	"github.com/shandysiswandi/secureauth/internal/pkg/goerror"
	"github.com/shandysiswandi/secureauth/internal/pkg/hash"
	"github.com/shandysiswandi/secureauth/internal/pkg/instrument"
	"github.com/shandysiswandi/secureauth/internal/pkg/mfa"
	"github.com/shandysiswandi/secureauth/internal/pkg/otp"
	"github.com/shandysiswandi/secureauth/internal/pkg/session"
	"github.com/shandysiswandi/secureauth/internal/pkg/uid"
	"github.com/shandysiswandi/secureauth/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// OTPDeliveryEvent asks the notification module to deliver a code the
// notifier could not send right away.
type OTPDeliveryEvent struct {
	DeliveryID string
	AccountID  int64
	Email      string
	Subject    string
	Body       string
}

type repoMessaging interface {
	PublishOTPDelivery(ctx context.Context, msg OTPDeliveryEvent) error
}

type repoDB interface {
	GetAccountByEmail(ctx context.Context, email string) (*entity.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*entity.Account, error)
	CreateAccount(ctx context.Context, acc entity.Account) error
	SaveAccount(ctx context.Context, acc entity.Account) error
}

// notifier sends mail synchronously. Any error means the transport is
// unavailable for this request.
type notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

type otpCodec interface {
	Issue(now time.Time) (otp.Issued, error)
	Validate(storedDigest *string, storedExpiry *time.Time, submitted string, now time.Time) otp.Outcome
	Lifetime() time.Duration
}

type sessionManager interface {
	Issue(accountID int64, email string) (session.Token, error)
	Revoke(ctx context.Context, token string) error
}

// Options carries the lifecycle settings read once at startup.
type Options struct {
	// DemoDisclosure returns an undeliverable code in the response instead
	// of queueing it. Never enable it in production.
	DemoDisclosure bool
	// QRSize is the edge length in pixels of the enrollment QR code.
	QRSize int
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	notifier      notifier
	validator     validator.Validator
	password      hash.Hash
	codec         otpCodec
	totp          otp.Verifier
	mfaEncryptor  mfa.Encryptor
	session       sessionManager
	uuid          uid.StringID
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	opts          Options
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Notifier      notifier
	Validator     validator.Validator
	Password      hash.Hash
	Codec         otpCodec
	TOTP          otp.Verifier
	MFAEncryptor  mfa.Encryptor
	Session       sessionManager
	UID           uid.NumberID
	UUID          uid.StringID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Options       Options
}

func New(dep Dependency) *Usecase {
	if dep.Options.QRSize <= 0 {
		dep.Options.QRSize = 256
	}

	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		notifier:      dep.Notifier,
		validator:     dep.Validator,
		password:      dep.Password,
		codec:         dep.Codec,
		totp:          dep.TOTP,
		mfaEncryptor:  dep.MFAEncryptor,
		session:       dep.Session,
		uid:           dep.UID,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		opts:          dep.Options,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func errInvalidCredentials() error {
	return goerror.NewBusiness("invalid email or password", goerror.CodeInvalidCredentials)
}

// outcomeError maps a failed code check to its lifecycle error. It returns
// nil for otp.OutcomeValid.
func outcomeError(o otp.Outcome) error {
	switch o {
	case otp.OutcomeValid:
		return nil
	case otp.OutcomeExpired:
		return goerror.NewBusiness("OTP expired", goerror.CodeExpiredOTP)
	case otp.OutcomeNoneIssued:
		return goerror.NewBusiness("No OTP pending", goerror.CodeNoPendingOTP)
	default:
		return goerror.NewBusiness("Invalid OTP", goerror.CodeInvalidOTP)
	}
}

// decryptTOTPSecret returns the base32 secret of an enrolled account.
func (s *Usecase) decryptTOTPSecret(acc *entity.Account) (string, error) {
	plain, err := s.mfaEncryptor.Decrypt(acc.TOTPSecret, mfa.TOTPScope(acc.ID))
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
