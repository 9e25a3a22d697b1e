// Package mail sends email. SMTP is the production transport; Memory
// records messages for tests and local runs; Disabled refuses every send so
// callers take their fallback path.
package mail
