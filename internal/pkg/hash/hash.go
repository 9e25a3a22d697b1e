package hash

import "strings"

// Hash hashes plaintext and verifies plaintext against a stored hash.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}

// Algorithm names accepted by NewPassword.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// Password hashes new passwords with the configured algorithm and verifies
// stored hashes with whichever algorithm produced them, so switching the
// algorithm does not lock out existing accounts.
type Password struct {
	primary  Hash
	bcrypt   *Bcrypt
	argon2id *Argon2id
}

// NewPassword builds a password hasher. Unknown algorithm names fall back to
// bcrypt.
func NewPassword(algorithm string, b *Bcrypt, a *Argon2id) *Password {
	p := &Password{primary: b, bcrypt: b, argon2id: a}
	if strings.EqualFold(strings.TrimSpace(algorithm), AlgorithmArgon2id) && a != nil {
		p.primary = a
	}
	return p
}

func (p *Password) Hash(plaintext string) ([]byte, error) {
	return p.primary.Hash(plaintext)
}

func (p *Password) Verify(hashed, plaintext string) bool {
	switch {
	case strings.HasPrefix(hashed, argon2idPrefix) && p.argon2id != nil:
		return p.argon2id.Verify(hashed, plaintext)
	case strings.HasPrefix(hashed, "$2") && p.bcrypt != nil:
		return p.bcrypt.Verify(hashed, plaintext)
	default:
		return false
	}
}
