package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/secureauth/internal/identity/entity"
	"github.com/shandysiswandi/secureauth/internal/pkg/clock"
	"github.com/shandysiswandi/secureauth/internal/pkg/goerror"
	"github.com/shandysiswandi/secureauth/internal/pkg/hash"
	"github.com/shandysiswandi/secureauth/internal/pkg/instrument"
	"github.com/shandysiswandi/secureauth/internal/pkg/jwt"
	"github.com/shandysiswandi/secureauth/internal/pkg/mfa"
	"github.com/shandysiswandi/secureauth/internal/pkg/otp"
	"github.com/shandysiswandi/secureauth/internal/pkg/session"
	"github.com/shandysiswandi/secureauth/internal/pkg/uid"
	"github.com/shandysiswandi/secureauth/internal/pkg/validator"
)

type memoryRepo struct {
	mu       sync.Mutex
	accounts map[int64]entity.Account
	saves    int
	failGet  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{accounts: map[int64]entity.Account{}}
}

func (r *memoryRepo) GetAccountByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failGet != nil {
		return nil, r.failGet
	}

	for _, acc := range r.accounts {
		if strings.EqualFold(acc.Email, email) {
			return &acc, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *memoryRepo) GetAccountByID(_ context.Context, id int64) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &acc, nil
}

func (r *memoryRepo) CreateAccount(_ context.Context, acc entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if strings.EqualFold(existing.Email, acc.Email) {
			return goerror.ErrConflict
		}
	}
	r.accounts[acc.ID] = acc
	return nil
}

func (r *memoryRepo) SaveAccount(_ context.Context, acc entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[acc.ID]; !ok {
		return goerror.ErrNotFound
	}
	r.accounts[acc.ID] = acc
	r.saves++
	return nil
}

func (r *memoryRepo) byEmail(t *testing.T, email string) entity.Account {
	t.Helper()

	acc, err := r.GetAccountByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("account %q not stored: %v", email, err)
	}
	return *acc
}

type sentMail struct {
	to, subject, body string
}

type fakeNotifier struct {
	err  error
	sent []sentMail
}

func (n *fakeNotifier) Send(_ context.Context, to, subject, body string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakeMessaging struct {
	err    error
	events []OTPDeliveryEvent
}

func (m *fakeMessaging) PublishOTPDelivery(_ context.Context, msg OTPDeliveryEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, msg)
	return nil
}

// cycleReader repeats its bytes forever, so a codec fed 1..6 always issues
// 123456.
type cycleReader struct {
	b []byte
	i int
}

func (r *cycleReader) Read(p []byte) (int, error) {
	for k := range p {
		p[k] = r.b[r.i%len(r.b)]
		r.i++
	}
	return len(p), nil
}

type testEnv struct {
	uc       *Usecase
	repo     *memoryRepo
	notifier *fakeNotifier
	mq       *fakeMessaging
	clock    *clock.Manual
	totp     *otp.TOTP
	sessions *session.Manager
}

var errSMTPNotConfigured = errors.New("smtp not configured")

const demoCode = "123456"

func newTestEnv(t *testing.T, opts Options, digester otp.Digester) *testEnv {
	t.Helper()

	clk := clock.NewManual(time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC))

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	snow, err := uid.NewSnowflake(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	signer, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat("k", 64)),
		Issuer: "secureauth",
		Clock:  clk,
		UUID:   uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	ledger := session.NewMemoryLedger(clk)
	t.Cleanup(func() { _ = ledger.Close() })

	env := &testEnv{
		repo:     newMemoryRepo(),
		notifier: &fakeNotifier{},
		mq:       &fakeMessaging{},
		clock:    clk,
		totp:     otp.NewTOTP(otp.TOTPConfig{Issuer: "SecureAuth", Window: 1}),
		sessions: session.NewManager(signer, ledger, hash.NewHMACSHA256("ledger")),
	}

	env.uc = New(Dependency{
		RepoDB:        env.repo,
		RepoMessaging: env.mq,
		Notifier:      env.notifier,
		Validator:     v,
		Password:      hash.NewBcrypt(4, ""),
		Codec: otp.NewCodec(otp.CodecConfig{
			Random:   &cycleReader{b: []byte{1, 2, 3, 4, 5, 6}},
			Digester: digester,
		}),
		TOTP:         env.totp,
		MFAEncryptor: mfa.NewAESGCMEncryptor(mfa.StaticKeyProvider{KeyBytes: bytes.Repeat([]byte{9}, 32)}),
		Session:      env.sessions,
		UID:          snow,
		UUID:         uid.NewUUID(),
		Clock:        clk,
		Instrument:   instrument.NewNoop(),
		Options:      opts,
	})

	return env
}

func assertCode(t *testing.T, err error, want goerror.Code) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s, got nil error", want)
	}
	if got := goerror.CodeOf(err); got != want {
		t.Fatalf("expected %s, got %s (%v)", want, got, err)
	}
}

func (e *testEnv) register(t *testing.T, email, method string) *RegisterOutput {
	t.Helper()

	out, err := e.uc.Register(context.Background(), RegisterInput{Email: email, Password: "pw123", OTPMethod: method})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return out
}

func (e *testEnv) verifyEmail(t *testing.T, email string) {
	t.Helper()

	if _, err := e.uc.VerifyEmail(context.Background(), VerifyEmailInput{Email: email, OTP: demoCode}); err != nil {
		t.Fatalf("verify email: %v", err)
	}
}

func (e *testEnv) authCode(t *testing.T, secret string) string {
	t.Helper()

	code, err := e.totp.GenerateCode(secret, e.clock.Now())
	if err != nil {
		t.Fatalf("generate totp code: %v", err)
	}
	return code
}
