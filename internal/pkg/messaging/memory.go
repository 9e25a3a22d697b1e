package messaging

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
)

var ErrMemoryQueueFull = errors.New("messaging: memory queue full")

const defaultMemoryBuffer = 1024

type MemoryConfig struct {
	// Buffer is the per-topic queue capacity.
	Buffer int
}

// Memory is an in-process broker. Every consumer of a topic competes for
// the same queue, and messages published before a consumer starts wait in
// the queue.
type Memory struct {
	buffer int
	seq    atomic.Uint64
	closed atomic.Bool
	done   chan struct{}

	mu     sync.Mutex
	topics map[string]chan *memoryMessage
	timers sync.WaitGroup

	published atomic.Int64
	acked     atomic.Int64
	nacked    atomic.Int64
}

func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultMemoryBuffer
	}
	return &Memory{
		buffer: cfg.Buffer,
		done:   make(chan struct{}),
		topics: make(map[string]chan *memoryMessage),
	}
}

func (m *Memory) queue(topic string) chan *memoryMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.topics[topic]
	if !ok {
		q = make(chan *memoryMessage, m.buffer)
		m.topics[topic] = q
	}
	return q
}

func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationNeeded
	}
	if m.closed.Load() {
		return ErrClosed
	}

	mm := &memoryMessage{
		broker:  m,
		id:      strconv.FormatUint(m.seq.Inc(), 10),
		topic:   destination,
		body:    append([]byte(nil), msg.Body...),
		headers: append([]Header(nil), msg.Headers...),
	}

	if msg.Delay > 0 {
		m.later(msg.Delay, mm)
		m.published.Inc()
		return nil
	}

	select {
	case m.queue(destination) <- mm:
		m.published.Inc()
		return nil
	default:
		return ErrMemoryQueueFull
	}
}

// later enqueues mm after d unless the broker closes first.
func (m *Memory) later(d time.Duration, mm *memoryMessage) {
	m.mu.Lock()
	if m.closed.Load() {
		m.mu.Unlock()
		return
	}
	m.timers.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.timers.Done()

		t := time.NewTimer(d)
		defer t.Stop()

		select {
		case <-t.C:
			select {
			case m.queue(mm.topic) <- mm:
			case <-m.done:
			}
		case <-m.done:
		}
	}()
}

func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if source == "" {
		return ErrDestinationNeeded
	}
	if handler == nil {
		return ErrHandlerNeeded
	}
	if m.closed.Load() {
		return ErrClosed
	}

	co := newConsumeOptions(opts...)
	q := m.queue(source)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-m.done:
					return
				case mm := <-q:
					mm.attempts.Inc()
					mm.responded.Store(false)
					dispatch(ctx, DriverMemory, handler, mm, co)
				}
			}
		}()
	}

	wg.Wait()

	if m.closed.Load() {
		return nil
	}
	return ctx.Err()
}

// Stats reports lifetime counters: published, acked and nacked messages.
func (m *Memory) Stats() (published, acked, nacked int64) {
	return m.published.Load(), m.acked.Load(), m.nacked.Load()
}

func (m *Memory) Close() error {
	m.mu.Lock()
	if m.closed.Swap(true) {
		m.mu.Unlock()
		return nil
	}
	close(m.done)
	m.mu.Unlock()

	m.timers.Wait()
	return nil
}

type memoryMessage struct {
	broker    *Memory
	id        string
	topic     string
	body      []byte
	headers   []Header
	attempts  atomic.Uint32
	responded atomic.Bool
}

func (mm *memoryMessage) Body() []byte      { return mm.body }
func (mm *memoryMessage) Headers() []Header { return mm.headers }
func (mm *memoryMessage) ID() string        { return mm.id }
func (mm *memoryMessage) Source() string    { return mm.topic }
func (mm *memoryMessage) Attempts() uint16  { return uint16(mm.attempts.Load()) }

func (mm *memoryMessage) Ack(context.Context) error {
	if mm.responded.Swap(true) {
		return nil
	}
	mm.broker.acked.Inc()
	return nil
}

func (mm *memoryMessage) Nack(_ context.Context, delay time.Duration) error {
	if mm.responded.Swap(true) {
		return nil
	}
	if mm.broker.closed.Load() {
		return ErrClosed
	}

	mm.broker.nacked.Inc()
	mm.broker.later(max(delay, time.Millisecond), mm)
	return nil
}
