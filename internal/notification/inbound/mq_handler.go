package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/secureauth/internal/notification/usecase"
	"github.com/shandysiswandi/secureauth/internal/pkg/instrument"
	"github.com/shandysiswandi/secureauth/internal/pkg/messaging"
	"github.com/shandysiswandi/secureauth/internal/pkg/uid"
	"github.com/shandysiswandi/secureauth/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID, ok := messaging.HeaderValue(msg, keyOfCorrelationID); ok && cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) OTPDelivery(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OTPDelivery")
	defer span.End()

	// the body carries the code, so only its size is logged
	body := msg.Body()
	slog.InfoContext(ctx, "consume: otp delivery", "msg_id", msg.ID(), "attempts", msg.Attempts(), "msg_size", len(body))

	var payload event.OTPDeliveryMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp delivery", "msg_id", msg.ID(), "error", err)
		return nil
	}

	if err := h.uc.DeliverOTP(ctx, usecase.DeliverOTPInput{
		DeliveryID: payload.DeliveryID,
		AccountID:  payload.AccountID,
		Email:      payload.Email,
		Subject:    payload.Subject,
		Body:       payload.Body,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp delivery", "delivery_id", payload.DeliveryID, "error", err)
		return err
	}

	return nil
}
