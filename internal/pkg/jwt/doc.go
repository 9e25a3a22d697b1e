// Package jwt signs and verifies session tokens.
//
// Tokens are HS512 JWTs carrying the account ID, the email and the standard
// registered claims. Verified claims travel through the request context with
// SetAuth and GetAuth.
package jwt
