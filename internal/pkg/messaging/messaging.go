package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrUnsupported       = errors.New("messaging: unsupported operation")
	ErrClosed            = errors.New("messaging: client closed")
	ErrDestinationNeeded = errors.New("messaging: destination is required")
	ErrHandlerNeeded     = errors.New("messaging: handler is required")
)

type Messaging interface {
	io.Closer
	Publisher
	Consumer
}

type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) error
}

// Consumer blocks delivering messages from source to handler until ctx is
// done or the client is closed.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes one message. With WithAutoAck a nil return acks and an
// error nacks; otherwise the handler responds itself.
type Handler func(ctx context.Context, msg Message) error

type OutgoingMessage struct {
	Body    []byte
	Headers []Header
	// Delay defers delivery on drivers that support it.
	Delay time.Duration
}

type Header struct {
	Key   string
	Value []byte
}

type Message interface {
	Body() []byte
	Headers() []Header
	ID() string
	// Source is the topic or subject the message arrived on.
	Source() string
	// Attempts counts deliveries including this one, when the driver
	// tracks it, and is 1 otherwise.
	Attempts() uint16
	Ack(ctx context.Context) error
	// Nack asks for redelivery after delay. Drivers without redelivery
	// drop the message.
	Nack(ctx context.Context, delay time.Duration) error
}

// HeaderValue returns the first header named key.
func HeaderValue(msg Message, key string) (string, bool) {
	for _, h := range msg.Headers() {
		if h.Key == key {
			return string(h.Value), true
		}
	}
	return "", false
}
