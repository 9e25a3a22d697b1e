package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/secureauth/internal/pkg/config"
	"github.com/shandysiswandi/secureauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/secureauth/internal/pkg/instrument"
	"github.com/shandysiswandi/secureauth/internal/pkg/messaging"
	"github.com/shandysiswandi/secureauth/internal/pkg/uid"
	"github.com/shandysiswandi/secureauth/internal/shared/event"
)

// RegisterMQConsumer starts every consumer named in
// modules.notification.consumer_names. It returns the names it started.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) []string {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")

	concurrency := cfg.GetInt("modules.notification.consumer.concurrency")
	if concurrency < 1 {
		concurrency = 10
	}

	var consumers = []struct {
		name             string
		topic            string // destination where publisher sent message
		nsqConsumerName  string // for nsq
		natsConsumerName string // for nats
		handler          messaging.Handler
	}{
		{
			name:             event.OTPDeliveryDestinationConsumerNotification,
			topic:            event.OTPDeliveryDestination,
			nsqConsumerName:  event.OTPDeliveryDestinationConsumerNotification,
			natsConsumerName: event.OTPDeliveryDestinationConsumerNotification,
			handler:          mqHandler.OTPDelivery,
		},
	}

	var started []string
	for _, consumer := range consumers {
		if !slices.Contains(enableConsumerNames, consumer.name) {
			continue
		}

		ok := routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
			return messenger.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithChannel(consumer.nsqConsumerName),
				messaging.WithQueueGroup(consumer.natsConsumerName),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(concurrency),
				messaging.WithMaxInFlight(concurrency),
				messaging.WithMaxAttempts(uint16(cfg.GetUint("modules.notification.consumer.max_attempts"))),
				messaging.WithRequeueDelay(cfg.GetSecond("modules.notification.consumer.requeue_delay_seconds")),
			)
		})
		if ok {
			started = append(started, consumer.name)
		}
	}

	return started
}
