package messaging

import "time"

type consumeOptions struct {
	concurrency  int
	autoAck      bool
	channel      string // NSQ
	queueGroup   string // NATS
	maxInFlight  int
	maxAttempts  uint16
	requeueDelay time.Duration
}

type ConsumeOption func(*consumeOptions)

func newConsumeOptions(opts ...ConsumeOption) consumeOptions {
	co := consumeOptions{concurrency: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}
	if co.concurrency < 1 {
		co.concurrency = 1
	}
	if co.maxInFlight < co.concurrency {
		co.maxInFlight = co.concurrency
	}
	return co
}

// WithConcurrency sets how many handlers run in parallel.
func WithConcurrency(n int) ConsumeOption {
	return func(o *consumeOptions) { o.concurrency = n }
}

func WithAutoAck(autoAck bool) ConsumeOption {
	return func(o *consumeOptions) { o.autoAck = autoAck }
}

// WithChannel names the NSQ channel. Consumers sharing a channel split
// the topic's messages.
func WithChannel(channel string) ConsumeOption {
	return func(o *consumeOptions) { o.channel = channel }
}

// WithQueueGroup names the NATS queue group.
func WithQueueGroup(group string) ConsumeOption {
	return func(o *consumeOptions) { o.queueGroup = group }
}

func WithMaxInFlight(n int) ConsumeOption {
	return func(o *consumeOptions) { o.maxInFlight = n }
}

// WithMaxAttempts drops a message after n deliveries. Zero means no limit.
func WithMaxAttempts(n uint16) ConsumeOption {
	return func(o *consumeOptions) { o.maxAttempts = n }
}

// WithRequeueDelay sets the delay auto-ack uses when a handler fails.
func WithRequeueDelay(d time.Duration) ConsumeOption {
	return func(o *consumeOptions) { o.requeueDelay = d }
}
