package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/secureauth/internal/pkg/instrument"
	"github.com/shandysiswandi/secureauth/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

// ErrUnavailable wraps every transport failure, including an unconfigured
// transport.
var ErrUnavailable = errors.New("notifier: unavailable")

// defaultTimeout bounds one synchronous send so a slow SMTP server does not
// hold the request.
const defaultTimeout = 10 * time.Second

type Notifier struct {
	client  mail.Mail
	ins     instrument.Instrumentation
	timeout time.Duration
}

func New(client mail.Mail, ins instrument.Instrumentation) *Notifier {
	return &Notifier{client: client, ins: ins, timeout: defaultTimeout}
}

func (n *Notifier) Send(ctx context.Context, to, subject, body string) error {
	ctx, span := n.ins.Tracer("identity.outbound.notifier").Start(ctx, "Send")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.client.Send(ctx, mail.Message{
		To:       []string{to},
		Subject:  subject,
		TextBody: body,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return nil
}
