package email

import (
	"bytes"
	"context"
	"html/template"

	"github.com/shandysiswandi/secureauth/internal/pkg/instrument"
	"github.com/shandysiswandi/secureauth/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<!doctype html>
<html>
  <body style="font-family:sans-serif">
    <h3>{{.Subject}}</h3>
    <p style="white-space:pre-line">{{.Body}}</p>
  </body>
</html>
`))

type Mail struct {
	client mail.Mail
	from   string
	ins    instrument.Instrumentation
}

// New returns the queued OTP mailer. An empty from keeps the transport's
// default sender.
func New(client mail.Mail, from string, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, from: from, ins: ins}
}

// SendOTP sends body as plain text with an HTML alternative.
func (m *Mail) SendOTP(ctx context.Context, to, subject, body string) error {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "SendOTP")
	defer span.End()

	span.SetAttributes(attribute.String("mail.subject", subject))

	var html bytes.Buffer
	if err := otpTemplate.Execute(&html, struct{ Subject, Body string }{subject, body}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.client.Send(ctx, mail.Message{
		From:     m.from,
		To:       []string{to},
		Subject:  subject,
		TextBody: body,
		HTMLBody: html.String(),
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
