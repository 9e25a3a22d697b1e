package entity

import "strings"

type AccountStatus int16

const (
	// AccountStatusUnknown is mean status is not known / not set.
	AccountStatusUnknown AccountStatus = 0

	// AccountStatusUnverified mean account exists but has not completed
	// email verification or authenticator enrollment.
	AccountStatusUnverified AccountStatus = 1

	// AccountStatusActive mean account may log in.
	AccountStatusActive AccountStatus = 2
)

func (s AccountStatus) String() string {
	switch s {
	case AccountStatusUnverified:
		return "UNVERIFIED"
	case AccountStatusActive:
		return "ACTIVE"
	default:
		return "UNKNOWN"
	}
}

func (s AccountStatus) IsUnknown() bool {
	switch s {
	case AccountStatusUnverified, AccountStatusActive:
		return false
	default:
		return true
	}
}

// OTPMethod is the second factor chosen at registration.
type OTPMethod int16

const (
	OTPMethodUnknown       OTPMethod = 0
	OTPMethodAuthenticator OTPMethod = 1
	OTPMethodEmail         OTPMethod = 2
)

func (m OTPMethod) String() string {
	switch m {
	case OTPMethodAuthenticator:
		return "AUTHENTICATOR"
	case OTPMethodEmail:
		return "EMAIL"
	default:
		return "UNKNOWN"
	}
}

// ParseOTPMethod accepts the names returned by String, case-insensitively.
func ParseOTPMethod(s string) OTPMethod {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AUTHENTICATOR":
		return OTPMethodAuthenticator
	case "EMAIL":
		return OTPMethodEmail
	default:
		return OTPMethodUnknown
	}
}
