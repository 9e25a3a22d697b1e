// Package otp implements the two kinds of one-time codes used for second
// factor checks.
//
// Codec issues short numeric codes that are delivered out of band (email)
// and checked for an exact match before they expire. TOTP enrolls and checks
// RFC 6238 time-based codes produced by an authenticator app.
package otp
