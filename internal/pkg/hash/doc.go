// Package hash hashes and verifies secrets.
//
// Passwords go through a slow salted hash (bcrypt by default, Argon2id on
// request). Short-lived codes and bearer tokens go through a keyed
// HMAC-SHA256 digest so that they can be compared without storing the
// plaintext.
package hash
