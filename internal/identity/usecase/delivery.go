package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/shandysiswandi/secureauth/internal/identity/entity"
	"github.com/shandysiswandi/secureauth/internal/pkg/goerror"
)

const (
	subjectEmailVerify = "SecureAuth - Email Verification OTP"
	subjectLogin       = "SecureAuth - Login OTP"
)

// Delivery reports how a one-time code reached, or will reach, the user.
// DemoOTP is only set when demo disclosure is on and the notifier failed.
type Delivery struct {
	Delivered bool
	Queued    bool
	DemoOTP   string
}

func (s *Usecase) emailVerifyBody(code string) string {
	return fmt.Sprintf("Your Email Verification OTP is: %s\n\nValid for %d minutes.", code, s.lifetimeMinutes())
}

func (s *Usecase) loginBody(code string) string {
	return fmt.Sprintf("Your Login OTP is: %s\n\nValid for %d minutes.", code, s.lifetimeMinutes())
}

func (s *Usecase) lifetimeMinutes() int {
	return int(math.Ceil(s.codec.Lifetime().Minutes()))
}

// deliverOTP sends code to the account right away. When the notifier fails
// the code is either disclosed (demo) or queued for retry. A failure to
// queue is a retryable service error.
func (s *Usecase) deliverOTP(ctx context.Context, acc *entity.Account, subject, body, code string) (Delivery, error) {
	err := s.notifier.Send(ctx, acc.Email, subject, body)
	if err == nil {
		return Delivery{Delivered: true}, nil
	}

	slog.WarnContext(ctx, "notifier unavailable", "account_id", acc.ID, "demo_disclosure", s.opts.DemoDisclosure, "error", err)

	if s.opts.DemoDisclosure {
		return Delivery{DemoOTP: code}, nil
	}

	if err := s.repoMessaging.PublishOTPDelivery(ctx, OTPDeliveryEvent{
		DeliveryID: s.uuid.Generate(),
		AccountID:  acc.ID,
		Email:      acc.Email,
		Subject:    subject,
		Body:       body,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp delivery", "account_id", acc.ID, "error", err)
		return Delivery{}, goerror.NewUnavailable(err, "Unable to deliver OTP, try again later")
	}

	return Delivery{Queued: true}, nil
}
