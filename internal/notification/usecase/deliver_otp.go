package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sethvargo/go-retry"

	"github.com/shandysiswandi/secureauth/internal/pkg/idempotency"
	"github.com/shandysiswandi/secureauth/internal/pkg/mail"
)

type DeliverOTPInput struct {
	DeliveryID string `validate:"required"`
	AccountID  int64  `validate:"required,gt=0"`
	Email      string `validate:"required,email"`
	Subject    string `validate:"required"`
	Body       string `validate:"required"`
}

// DeliverOTP mails a queued one-time code at most once per DeliveryID.
// A returned error asks the broker to redeliver the message later.
func (s *Usecase) DeliverOTP(ctx context.Context, in DeliverOTPInput) error {
	ctx, span := s.startSpan(ctx, "DeliverOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "invalid otp delivery, dropping", "delivery_id", in.DeliveryID, "error", err)
		return nil
	}

	err := s.idempotency.Exec(ctx, "otp-delivery:"+in.DeliveryID, func(ctx context.Context) error {
		return s.sendWithRetry(ctx, in)
	})
	switch {
	case err == nil:
		slog.InfoContext(ctx, "otp delivered", "delivery_id", in.DeliveryID, "account_id", in.AccountID)
		return nil
	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		slog.InfoContext(ctx, "otp already delivered", "delivery_id", in.DeliveryID)
		return nil
	case errors.Is(err, mail.ErrNotConfigured):
		slog.ErrorContext(ctx, "mail transport not configured, dropping otp delivery", "delivery_id", in.DeliveryID)
		return nil
	default:
		slog.ErrorContext(ctx, "failed to deliver otp", "delivery_id", in.DeliveryID, "account_id", in.AccountID, "error", err)
		return err
	}
}

func (s *Usecase) sendWithRetry(ctx context.Context, in DeliverOTPInput) error {
	b := retry.NewExponential(s.retry.Base)
	b = retry.WithMaxRetries(s.retry.MaxAttempts-1, b)
	b = retry.WithMaxDuration(s.retry.MaxDuration, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := s.repoMail.SendOTP(ctx, in.Email, in.Subject, in.Body)
		if err == nil || errors.Is(err, mail.ErrNotConfigured) {
			return err
		}

		slog.WarnContext(ctx, "otp delivery attempt failed", "delivery_id", in.DeliveryID, "error", err)
		return retry.RetryableError(err)
	})
}
