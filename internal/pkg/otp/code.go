package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"time"
)

// DefaultLifetime is how long an issued code stays valid.
const DefaultLifetime = 5 * time.Minute

// DefaultDigits is the length of an issued code.
const DefaultDigits = 6

// Outcome is the result of checking a submitted code.
type Outcome int

const (
	OutcomeValid Outcome = iota
	OutcomeExpired
	OutcomeMismatch
	OutcomeNoneIssued
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeExpired:
		return "expired"
	case OutcomeMismatch:
		return "mismatch"
	case OutcomeNoneIssued:
		return "none_issued"
	default:
		return "unknown"
	}
}

// ErrRandomSource is returned when the random source cannot produce enough
// bytes for a code.
var ErrRandomSource = errors.New("otp: random source exhausted")

// Digester turns a code into the form kept at rest.
type Digester interface {
	Digest(code string) string
}

// CodecConfig configures NewCodec. Zero values fall back to DefaultDigits,
// DefaultLifetime and crypto/rand.
type CodecConfig struct {
	Digits   int
	Lifetime time.Duration
	Random   io.Reader
	// Digester is optional. When set, Issued.Digest holds the digest of the
	// code instead of the code itself.
	Digester Digester
}

// Issued is a freshly generated code. Code goes to the user, Digest and
// ExpiresAt go to the store.
type Issued struct {
	Code      string
	Digest    string
	ExpiresAt time.Time
}

// Codec issues and checks numeric one-time codes.
type Codec struct {
	digits   int
	lifetime time.Duration
	random   io.Reader
	digester Digester
}

func NewCodec(cfg CodecConfig) *Codec {
	if cfg.Digits <= 0 {
		cfg.Digits = DefaultDigits
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = DefaultLifetime
	}
	if cfg.Random == nil {
		cfg.Random = rand.Reader
	}

	return &Codec{
		digits:   cfg.Digits,
		lifetime: cfg.Lifetime,
		random:   cfg.Random,
		digester: cfg.Digester,
	}
}

// Lifetime returns how long issued codes stay valid.
func (c *Codec) Lifetime() time.Duration {
	return c.lifetime
}

// Issue generates a code that expires at now plus the lifetime.
func (c *Codec) Issue(now time.Time) (Issued, error) {
	code, err := c.generate()
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		Code:      code,
		Digest:    c.digest(code),
		ExpiresAt: now.Add(c.lifetime),
	}, nil
}

// Validate checks submitted against the stored digest and expiry. Expiry is
// strict: a code is still valid at exactly its expiry instant. Validate does
// not touch any state; the caller clears the stored pair on OutcomeValid.
func (c *Codec) Validate(storedDigest *string, storedExpiry *time.Time, submitted string, now time.Time) Outcome {
	if storedDigest == nil || storedExpiry == nil {
		return OutcomeNoneIssued
	}

	if now.After(*storedExpiry) {
		return OutcomeExpired
	}

	if subtle.ConstantTimeCompare([]byte(*storedDigest), []byte(c.digest(submitted))) != 1 {
		return OutcomeMismatch
	}

	return OutcomeValid
}

func (c *Codec) digest(code string) string {
	if c.digester == nil {
		return code
	}
	return c.digester.Digest(code)
}

// generate draws one byte per digit and rejects bytes >= 250 so every digit
// is uniform over 0-9.
func (c *Codec) generate() (string, error) {
	out := make([]byte, 0, c.digits)
	buf := make([]byte, c.digits)

	for len(out) < c.digits {
		n, err := io.ReadFull(c.random, buf[:c.digits-len(out)])
		if err != nil && n == 0 {
			return "", fmt.Errorf("%w: %w", ErrRandomSource, err)
		}

		for _, b := range buf[:n] {
			if b >= 250 {
				continue
			}
			out = append(out, '0'+b%10)
		}
	}

	return string(out), nil
}
