package instrument

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	ctx := SetCorrelationID(context.Background(), "cid-1")

	assert.Equal(t, "cid-1", GetCorrelationID(ctx))
	assert.Empty(t, GetCorrelationID(context.Background()))
}

func TestMasker(t *testing.T) {
	m := NewMasker([]string{" Password ", "code", ""})

	t.Run("Data", func(t *testing.T) {
		got := m.Data(map[string]any{
			"email":    "a@x.com",
			"PASSWORD": "pw123",
			"nested":   []any{map[string]any{"code": "123456"}},
		})

		assert.Equal(t, map[string]any{
			"email":    "a@x.com",
			"PASSWORD": "***",
			"nested":   []any{map[string]any{"code": "***"}},
		}, got)
	})

	t.Run("JSON", func(t *testing.T) {
		got, ok := m.JSON([]byte(`{"code":"123456","email":"a@x.com"}`))
		require.True(t, ok)
		assert.JSONEq(t, `{"code":"***","email":"a@x.com"}`, got)

		_, ok = m.JSON([]byte("not json"))
		assert.False(t, ok)
	})

	t.Run("Header", func(t *testing.T) {
		h := http.Header{"Code": {"1"}, "Accept": {"json"}}
		got := m.Header(h)

		assert.Equal(t, "***", got.Get("Code"))
		assert.Equal(t, "json", got.Get("Accept"))
		assert.Equal(t, "1", h.Get("Code"))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.True(t, NewMasker(nil).Empty())
		assert.False(t, NewMasker(nil).Has("password"))
	})
}

func TestNewExporters(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	te, me, le, err := newExporters(ctx, &Config{OTLPEndpoint: "127.0.0.1:4317"})
	require.NoError(t, err)
	require.NotNil(t, te)
	require.NotNil(t, me)
	require.NotNil(t, le)

	assert.NoError(t, te.Shutdown(ctx))
	assert.NoError(t, me.Shutdown(ctx))
	assert.NoError(t, le.Shutdown(ctx))
}
