// Package messaging publishes and consumes broker messages behind one
// interface. Drivers: an in-process memory queue, NATS core subjects and
// NSQ topics.
package messaging
