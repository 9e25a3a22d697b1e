package otp

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOTP(t *testing.T) {
	o := NewTOTP(TOTPConfig{Issuer: "SecureAuth", Window: 1})
	now := time.Date(2026, 1, 2, 3, 4, 15, 0, time.UTC)

	secret, uri, err := o.Generate("a@x.com")
	require.NoError(t, err)

	t.Run("Enrollment", func(t *testing.T) {
		assert.Len(t, secret, 32)
		assert.True(t, strings.HasPrefix(uri, "otpauth://totp/"))
		assert.Contains(t, uri, "a@x.com")
		assert.Contains(t, uri, "issuer=SecureAuth")
		assert.Contains(t, uri, "secret="+secret)
	})

	t.Run("CurrentStep", func(t *testing.T) {
		code, err := o.GenerateCode(secret, now)
		require.NoError(t, err)

		assert.True(t, o.Validate(code, secret, now))
		assert.True(t, o.ValidateWindow(code, secret, now, 0))
	})

	t.Run("PreviousStepNeedsWindow", func(t *testing.T) {
		// Arrange
		code, err := o.GenerateCode(secret, now.Add(-30*time.Second))
		require.NoError(t, err)

		// Act & Assert
		assert.True(t, o.ValidateWindow(code, secret, now, 1))
		assert.True(t, o.ValidateWindow(code, secret, now, 2))
		assert.False(t, o.ValidateWindow(code, secret, now, 0))
	})

	t.Run("TwoStepsAwayRejectedWithDefaultWindow", func(t *testing.T) {
		code, err := o.GenerateCode(secret, now.Add(-60*time.Second))
		require.NoError(t, err)

		assert.False(t, o.Validate(code, secret, now))
	})

	t.Run("DifferentSecret", func(t *testing.T) {
		other, _, err := o.Generate("a@x.com")
		require.NoError(t, err)
		code, err := o.GenerateCode(other, now)
		require.NoError(t, err)

		assert.False(t, o.ValidateWindow(code, secret, now, 0))
	})

	t.Run("Render", func(t *testing.T) {
		dataURL, err := o.Render(uri, 0)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))
	})

	t.Run("RenderRejectsGarbage", func(t *testing.T) {
		_, err := o.Render("://nope", 100)

		assert.Error(t, err)
	})
}
