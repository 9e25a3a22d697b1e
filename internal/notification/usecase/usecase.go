package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/secureauth/internal/pkg/idempotency"
	"github.com/shandysiswandi/secureauth/internal/pkg/instrument"
	"github.com/shandysiswandi/secureauth/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoMail interface {
	SendOTP(ctx context.Context, to, subject, body string) error
}

// RetryConfig bounds the exponential backoff around one delivery attempt
// set. Zero values fall back to the defaults below.
type RetryConfig struct {
	Base        time.Duration
	MaxAttempts uint64
	MaxDuration time.Duration
}

const (
	defaultRetryBase        = 500 * time.Millisecond
	defaultRetryMaxAttempts = 5
	defaultRetryMaxDuration = 30 * time.Second
)

type Usecase struct {
	repoMail    repoMail
	idempotency idempotency.Idempotency
	validator   validator.Validator
	ins         instrument.Instrumentation
	retry       RetryConfig
}

type Dependency struct {
	RepoMail    repoMail
	Idempotency idempotency.Idempotency
	Validator   validator.Validator
	Instrument  instrument.Instrumentation
	Retry       RetryConfig
}

func NewNotification(dep Dependency) *Usecase {
	if dep.Retry.Base <= 0 {
		dep.Retry.Base = defaultRetryBase
	}
	if dep.Retry.MaxAttempts == 0 {
		dep.Retry.MaxAttempts = defaultRetryMaxAttempts
	}
	if dep.Retry.MaxDuration <= 0 {
		dep.Retry.MaxDuration = defaultRetryMaxDuration
	}

	return &Usecase{
		repoMail:    dep.RepoMail,
		idempotency: dep.Idempotency,
		validator:   dep.Validator,
		ins:         dep.Instrument,
		retry:       dep.Retry,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}
