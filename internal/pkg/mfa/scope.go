package mfa

type Purpose string

// PurposeTOTPSecret scopes ciphertext to an account's authenticator secret.
const PurposeTOTPSecret Purpose = "totp_secret"

// Scope is bound to every ciphertext as GCM additional data, so a secret
// sealed for one account cannot be opened for another.
type Scope struct {
	AccountID int64
	Purpose   Purpose
}

func TOTPScope(accountID int64) Scope {
	return Scope{AccountID: accountID, Purpose: PurposeTOTPSecret}
}
