// Package clock provides a tiny time abstraction.
//
// Code that checks expiry depends on Clocker instead of calling time.Now, so
// tests can pin the current instant with Manual.
package clock
