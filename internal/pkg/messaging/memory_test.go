package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func consumeAsync(t *testing.T, m *Memory, topic string, h Handler, opts ...ConsumeOption) context.CancelFunc {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Consume(ctx, topic, h, opts...)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestMemory_PublishConsume(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	// published before the consumer starts
	require.NoError(t, m.Publish(context.Background(), "otp", OutgoingMessage{
		Body:    []byte(`{"a":1}`),
		Headers: []Header{{Key: "cID", Value: []byte("c-1")}},
	}))

	got := make(chan Message, 1)
	consumeAsync(t, m, "otp", func(_ context.Context, msg Message) error {
		got <- msg
		return nil
	}, WithAutoAck(true))

	select {
	case msg := <-got:
		assert.Equal(t, `{"a":1}`, string(msg.Body()))
		assert.Equal(t, "otp", msg.Source())
		assert.Equal(t, uint16(1), msg.Attempts())
		cid, ok := HeaderValue(msg, "cID")
		assert.True(t, ok)
		assert.Equal(t, "c-1", cid)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	assert.Eventually(t, func() bool {
		_, acked, _ := m.Stats()
		return acked == 1
	}, time.Second, 5*time.Millisecond)
}

func TestMemory_RedeliversUntilMaxAttempts(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	var mu sync.Mutex
	var attempts []uint16

	consumeAsync(t, m, "jobs", func(_ context.Context, msg Message) error {
		mu.Lock()
		attempts = append(attempts, msg.Attempts())
		mu.Unlock()
		return errors.New("fail")
	}, WithAutoAck(true), WithMaxAttempts(3), WithRequeueDelay(time.Millisecond))

	require.NoError(t, m.Publish(context.Background(), "jobs", OutgoingMessage{Body: []byte("x")}))

	assert.Eventually(t, func() bool {
		_, acked, _ := m.Stats()
		return acked == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint16{1, 2, 3}, attempts)

	_, _, nacked := m.Stats()
	assert.Equal(t, int64(2), nacked)
}

func TestMemory_PanicIsNacked(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	calls := make(chan uint16, 2)
	consumeAsync(t, m, "p", func(_ context.Context, msg Message) error {
		calls <- msg.Attempts()
		if msg.Attempts() == 1 {
			panic("boom")
		}
		return nil
	}, WithAutoAck(true), WithRequeueDelay(time.Millisecond))

	require.NoError(t, m.Publish(context.Background(), "p", OutgoingMessage{Body: []byte("x")}))

	assert.Equal(t, uint16(1), <-calls)
	assert.Equal(t, uint16(2), <-calls)
}

func TestMemory_Errors(t *testing.T) {
	m := NewMemory(MemoryConfig{Buffer: 1})

	assert.ErrorIs(t, m.Publish(context.Background(), "", OutgoingMessage{}), ErrDestinationNeeded)
	assert.ErrorIs(t, m.Consume(context.Background(), "t", nil), ErrHandlerNeeded)

	require.NoError(t, m.Publish(context.Background(), "t", OutgoingMessage{}))
	assert.ErrorIs(t, m.Publish(context.Background(), "t", OutgoingMessage{}), ErrMemoryQueueFull)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Publish(context.Background(), "t", OutgoingMessage{}), ErrClosed)
}

func TestNewFromDriver(t *testing.T) {
	c, err := NewFromDriver("memory", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = NewFromDriver("kafka", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = NewFromDriver("nats", FactoryOptions{})
	assert.ErrorIs(t, err, ErrNATSURLRequired)
}

func TestNSQEnvelope(t *testing.T) {
	raw, err := encodeNSQ(OutgoingMessage{
		Body:    []byte("payload"),
		Headers: []Header{{Key: "cID", Value: []byte("c-9")}},
	})
	require.NoError(t, err)

	env := decodeNSQ(raw)
	assert.Equal(t, []byte("payload"), env.Body)
	assert.Equal(t, map[string]string{"cID": "c-9"}, env.Headers)

	foreign := decodeNSQ([]byte("plain text"))
	assert.Equal(t, []byte("plain text"), foreign.Body)
}

func TestNewConsumeOptions(t *testing.T) {
	co := newConsumeOptions(WithConcurrency(0), nil, WithMaxInFlight(0))
	assert.Equal(t, 1, co.concurrency)
	assert.Equal(t, 1, co.maxInFlight)

	co = newConsumeOptions(WithConcurrency(10), WithMaxInFlight(4), WithChannel("c"), WithQueueGroup("g"))
	assert.Equal(t, 10, co.maxInFlight)
	assert.Equal(t, "c", co.channel)
	assert.Equal(t, "g", co.queueGroup)
}
