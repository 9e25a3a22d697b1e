package otp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Verifier checks time-based codes against an enrolled secret.
type Verifier interface {
	// Generate creates a secret and an otpauth provisioning URI for the label.
	Generate(label string) (secret string, uri string, err error)
	// Validate checks code against secret at the given time using the
	// configured drift window.
	Validate(code, secret string, at time.Time) bool
	// ValidateWindow checks code against secret allowing window steps of
	// drift on either side. A window of 0 accepts only the current step.
	ValidateWindow(code, secret string, at time.Time, window uint) bool
	// Render turns a provisioning URI into a scannable PNG data URL.
	Render(uri string, size int) (string, error)
}

// TOTPConfig configures NewTOTP. Zero Period means 30 seconds; Digits other
// than 6 or 8 mean 6.
type TOTPConfig struct {
	Issuer string
	Period uint
	Window uint
	Digits otp.Digits
}

// TOTP is a Verifier backed by pquerna/otp with SHA1 and 160-bit secrets.
type TOTP struct {
	issuer string
	period uint
	window uint
	digits otp.Digits
}

func NewTOTP(cfg TOTPConfig) *TOTP {
	if cfg.Digits != otp.DigitsSix && cfg.Digits != otp.DigitsEight {
		cfg.Digits = otp.DigitsSix
	}

	if cfg.Period == 0 {
		cfg.Period = 30
	}

	return &TOTP{
		issuer: cfg.Issuer,
		period: cfg.Period,
		window: cfg.Window,
		digits: cfg.Digits,
	}
}

func (o *TOTP) Generate(label string) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      o.issuer,
		AccountName: label,
		Period:      o.period,
		SecretSize:  20,
		Digits:      o.digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}

	return key.Secret(), key.URL(), nil
}

func (o *TOTP) Validate(code, secret string, at time.Time) bool {
	return o.ValidateWindow(code, secret, at, o.window)
}

func (o *TOTP) ValidateWindow(code, secret string, at time.Time, window uint) bool {
	ok, err := totp.ValidateCustom(code, secret, at.UTC(), o.opts(window))
	return ok && err == nil
}

// GenerateCode returns the code for secret at the given time.
func (o *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at.UTC(), o.opts(0))
}

func (o *TOTP) Render(uri string, size int) (string, error) {
	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return "", fmt.Errorf("otp: parse provisioning uri: %w", err)
	}

	if size <= 0 {
		size = 200
	}

	img, err := key.Image(size, size)
	if err != nil {
		return "", fmt.Errorf("otp: render qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("otp: encode qr code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (o *TOTP) opts(window uint) totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    o.period,
		Skew:      window,
		Digits:    o.digits,
		Algorithm: otp.AlgorithmSHA1,
	}
}
