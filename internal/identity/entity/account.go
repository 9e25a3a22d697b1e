package entity

import (
	"time"

	"github.com/samber/lo"
)

// Account is the identity record driven through the lifecycle.
//
// EmailVerifyOTP and LoginOTP hold the stored form of the code, which is a
// digest when hashing at rest is enabled. Each is set together with its
// expiry or not at all. TOTPSecret is ciphertext.
type Account struct {
	ID            int64
	Email         string
	PasswordHash  string
	Status        AccountStatus
	EmailVerified bool
	OTPMethod     OTPMethod

	EmailVerifyOTP          *string
	EmailVerifyOTPExpiresAt *time.Time
	LoginOTP                *string
	LoginOTPExpiresAt       *time.Time

	TOTPSecret        []byte
	LoginPendingUntil *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

func (a *Account) HasAuthenticator() bool {
	return len(a.TOTPSecret) > 0
}

func (a *Account) SetEmailVerifyOTP(digest string, expiresAt time.Time) {
	a.EmailVerifyOTP = lo.ToPtr(digest)
	a.EmailVerifyOTPExpiresAt = lo.ToPtr(expiresAt)
}

func (a *Account) ClearEmailVerifyOTP() {
	a.EmailVerifyOTP = nil
	a.EmailVerifyOTPExpiresAt = nil
}

func (a *Account) SetLoginOTP(digest string, expiresAt time.Time) {
	a.LoginOTP = lo.ToPtr(digest)
	a.LoginOTPExpiresAt = lo.ToPtr(expiresAt)
}

// ClearLogin drops any pending login challenge, emailed or authenticator.
func (a *Account) ClearLogin() {
	a.LoginOTP = nil
	a.LoginOTPExpiresAt = nil
	a.LoginPendingUntil = nil
}

// Activate marks the account ACTIVE. It keeps Status = ACTIVE implying
// EmailVerified.
func (a *Account) Activate() {
	a.EmailVerified = true
	a.Status = AccountStatusActive
}
