package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	nsq "github.com/nsqio/go-nsq"
	"go.uber.org/atomic"
)

var (
	ErrNSQChannelRequired  = errors.New("messaging: nsq channel is required")
	ErrNSQProducerRequired = errors.New("messaging: nsq producer address is required")
	ErrNSQConsumerRequired = errors.New("messaging: nsq nsqd or lookupd addresses are required")
)

type NSQConfig struct {
	ProducerAddr string
	NSQDAddrs    []string
	LookupdAddrs []string
}

// NSQ has no message headers, so bodies travel inside nsqEnvelope.
type NSQ struct {
	cfg      NSQConfig
	producer *nsq.Producer
	closed   atomic.Bool
}

type nsqEnvelope struct {
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body"`
}

func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	n := &NSQ{cfg: cfg}
	if cfg.ProducerAddr == "" {
		return n, nil
	}

	p, err := nsq.NewProducer(cfg.ProducerAddr, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)
	n.producer = p

	return n, nil
}

func encodeNSQ(msg OutgoingMessage) ([]byte, error) {
	env := nsqEnvelope{Body: msg.Body}
	if len(msg.Headers) > 0 {
		env.Headers = make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			env.Headers[h.Key] = string(h.Value)
		}
	}
	return json.Marshal(env)
}

func decodeNSQ(raw []byte) nsqEnvelope {
	var env nsqEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Body == nil {
		// published by a foreign producer without the envelope
		return nsqEnvelope{Body: raw}
	}
	return env
}

func (n *NSQ) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationNeeded
	}
	if n.producer == nil {
		return ErrNSQProducerRequired
	}

	body, err := encodeNSQ(msg)
	if err != nil {
		return err
	}

	if msg.Delay > 0 {
		err = n.producer.DeferredPublish(destination, msg.Delay, body)
	} else {
		err = n.producer.Publish(destination, body)
	}
	if err != nil {
		return fmt.Errorf("messaging: nsq publish: %w", err)
	}

	return nil
}

func (n *NSQ) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if source == "" {
		return ErrDestinationNeeded
	}
	if handler == nil {
		return ErrHandlerNeeded
	}
	if len(n.cfg.NSQDAddrs) == 0 && len(n.cfg.LookupdAddrs) == 0 {
		return ErrNSQConsumerRequired
	}
	if n.closed.Load() {
		return ErrClosed
	}

	co := newConsumeOptions(opts...)
	if co.channel == "" {
		return ErrNSQChannelRequired
	}

	ncfg := nsq.NewConfig()
	ncfg.MaxInFlight = co.maxInFlight
	if co.maxAttempts > 0 {
		// dispatch drops the message itself on the last attempt
		ncfg.MaxAttempts = co.maxAttempts + 1
	}

	consumer, err := nsq.NewConsumer(source, co.channel, ncfg)
	if err != nil {
		return fmt.Errorf("messaging: nsq consumer: %w", err)
	}
	consumer.SetLoggerLevel(nsq.LogLevelError)

	consumer.AddConcurrentHandlers(nsq.HandlerFunc(func(m *nsq.Message) error {
		m.DisableAutoResponse()
		dispatch(ctx, DriverNSQ, handler, newNSQMessage(source, m), co)
		return nil
	}), co.concurrency)

	if len(n.cfg.LookupdAddrs) > 0 {
		err = consumer.ConnectToNSQLookupds(n.cfg.LookupdAddrs)
	} else {
		err = consumer.ConnectToNSQDs(n.cfg.NSQDAddrs)
	}
	if err != nil {
		consumer.Stop()
		<-consumer.StopChan
		return fmt.Errorf("messaging: nsq connect: %w", err)
	}

	select {
	case <-ctx.Done():
		consumer.Stop()
		<-consumer.StopChan
		return ctx.Err()
	case <-consumer.StopChan:
		return nil
	}
}

func (n *NSQ) Close() error {
	if n.closed.Swap(true) {
		return nil
	}
	if n.producer != nil {
		n.producer.Stop()
	}
	return nil
}

type nsqMessage struct {
	topic     string
	msg       *nsq.Message
	env       nsqEnvelope
	responded atomic.Bool
}

func newNSQMessage(topic string, m *nsq.Message) *nsqMessage {
	return &nsqMessage{topic: topic, msg: m, env: decodeNSQ(m.Body)}
}

func (m *nsqMessage) Body() []byte { return m.env.Body }

func (m *nsqMessage) Headers() []Header {
	out := make([]Header, 0, len(m.env.Headers))
	for k, v := range m.env.Headers {
		out = append(out, Header{Key: k, Value: []byte(v)})
	}
	return out
}

func (m *nsqMessage) ID() string       { return string(m.msg.ID[:]) }
func (m *nsqMessage) Source() string   { return m.topic }
func (m *nsqMessage) Attempts() uint16 { return m.msg.Attempts }

func (m *nsqMessage) Ack(context.Context) error {
	if !m.responded.Swap(true) {
		m.msg.Finish()
	}
	return nil
}

func (m *nsqMessage) Nack(_ context.Context, delay time.Duration) error {
	if !m.responded.Swap(true) {
		m.msg.Requeue(delay)
	}
	return nil
}
