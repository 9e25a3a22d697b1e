package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/secureauth/internal/pkg/instrument"
	"github.com/shandysiswandi/secureauth/internal/pkg/mail"
)

func TestNotifier_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("Delivered", func(t *testing.T) {
		client := mail.NewMemory()
		n := New(client, instrument.NewNoop())

		require.NoError(t, n.Send(ctx, "a@x.com", "SecureAuth - Login OTP", "Your Login OTP is: 123456"))

		sent := client.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, []string{"a@x.com"}, sent[0].To)
		assert.Equal(t, "SecureAuth - Login OTP", sent[0].Subject)
		assert.Equal(t, "Your Login OTP is: 123456", sent[0].TextBody)
	})

	t.Run("NotConfigured", func(t *testing.T) {
		n := New(mail.Disabled{}, instrument.NewNoop())

		err := n.Send(ctx, "a@x.com", "s", "b")

		assert.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorIs(t, err, mail.ErrNotConfigured)
	})

	t.Run("TransportFailure", func(t *testing.T) {
		client := mail.NewMemory()
		client.Fail(errors.New("connection refused"))
		n := New(client, instrument.NewNoop())

		assert.ErrorIs(t, n.Send(ctx, "a@x.com", "s", "b"), ErrUnavailable)
	})
}
