package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when the configured cost is outside the range
// accepted by bcrypt.
const DefaultBcryptCost = 10

// Bcrypt hashes with bcrypt.
//
// A non-empty pepper keys an HMAC-SHA256 of the plaintext, and bcrypt hashes
// that 44-byte digest, so the pepper never pushes input past bcrypt's 72-byte
// limit. The pepper lives in configuration, never in the database.
type Bcrypt struct {
	cost   int
	pepper string
}

// NewBcrypt returns a bcrypt hasher. A cost below bcrypt.MinCost or above
// bcrypt.MaxCost becomes DefaultBcryptCost.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Bcrypt{cost: cost, pepper: pepper}
}

// Cost returns the effective work factor.
func (h *Bcrypt) Cost() int {
	return h.cost
}

func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword(h.input(plaintext), h.cost)
}

func (h *Bcrypt) Verify(hashed, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), h.input(plaintext)) == nil
}

func (h *Bcrypt) input(plaintext string) []byte {
	if h.pepper == "" {
		return []byte(plaintext)
	}

	mac := hmac.New(sha256.New, []byte(h.pepper))
	mac.Write([]byte(plaintext))
	return []byte(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}
