package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/secureauth/internal/pkg/goerror"
	"github.com/shandysiswandi/secureauth/internal/pkg/jwt"
	"github.com/shandysiswandi/secureauth/internal/pkg/session"
	"github.com/shandysiswandi/secureauth/internal/pkg/validator"
)

type fakeSessions map[string]error

func (f fakeSessions) Verify(_ context.Context, token string) (jwt.Claims, error) {
	if err, ok := f[token]; ok {
		return jwt.Claims{}, err
	}
	return jwt.Claims{AccountID: 7, Email: "a@x.com"}, nil
}

type created struct {
	ID int64 `json:"id"`
}

func (created) StatusCode() int { return http.StatusCreated }
func (created) Message() string { return "created" }

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	r := NewRouter(Config{
		Sessions: fakeSessions{
			"revoked": session.ErrRevoked,
			"expired": jwt.ErrTokenExpired,
		},
		Public: map[string][]string{
			http.MethodPost: {"/public", "/public/fail/:kind"},
		},
	})

	r.POST("/public", func(req *Request) (any, error) {
		var in struct {
			Email string `json:"email"`
		}
		if err := req.DecodeBody(&in); err != nil {
			return nil, err
		}
		return created{ID: 1}, nil
	})

	r.POST("/public/fail/:kind", func(req *Request) (any, error) {
		switch req.GetParam("kind") {
		case "otp":
			return nil, goerror.NewBusiness("Invalid one-time code", goerror.CodeInvalidOTP)
		case "unavailable":
			return nil, goerror.NewUnavailable(errors.New("smtp down"), "Delivery unavailable")
		case "validation":
			return nil, goerror.NewInvalidInput(validator.V10ValidationError{"email": "Email is required"})
		case "panic":
			panic("boom")
		default:
			return nil, errors.New("raw")
		}
	})

	r.GET("/me", func(req *Request) (any, error) {
		claims := jwt.GetAuth(req.Context())
		return map[string]any{"email": claims.Email, "token": req.BearerToken()}, nil
	})

	return r
}

type envelope struct {
	Message string            `json:"message"`
	Data    map[string]any    `json:"data"`
	Error   map[string]string `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}

	return rec, env
}

func TestRouter_Authentication(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name       string
		token      string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{name: "NoToken", wantStatus: http.StatusUnauthorized, wantMsg: "No token provided"},
		{name: "Malformed", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantMsg: "No token provided"},
		{name: "Revoked", token: "revoked", wantStatus: http.StatusUnauthorized, wantMsg: "Token has been revoked"},
		{name: "Expired", token: "expired", wantStatus: http.StatusUnauthorized, wantMsg: "Invalid or expired token"},
		{name: "Valid", token: "good", wantStatus: http.StatusOK, wantMsg: "request has been successfully"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			// Act
			r.ServeHTTP(rec, req)

			// Assert
			var env envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			if rec.Code != tt.wantStatus || env.Message != tt.wantMsg {
				t.Fatalf("got %d %q, want %d %q", rec.Code, env.Message, tt.wantStatus, tt.wantMsg)
			}
			if tt.name == "Valid" {
				assert.Equal(t, "a@x.com", env.Data["email"])
				assert.Equal(t, "good", env.Data["token"])
			}
		})
	}
}

func TestRouter_Responses(t *testing.T) {
	r := newTestRouter(t)

	t.Run("CreatedEnvelope", func(t *testing.T) {
		rec, env := do(t, r, http.MethodPost, "/public", `{"email":"a@x.com"}`, "")

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "created", env.Message)
	})

	t.Run("UnknownField", func(t *testing.T) {
		rec, env := do(t, r, http.MethodPost, "/public", `{"email":"a@x.com","x":1}`, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", env.Message)
	})

	t.Run("BusinessError", func(t *testing.T) {
		rec, env := do(t, r, http.MethodPost, "/public/fail/otp", "", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid one-time code", env.Message)
	})

	t.Run("Unavailable", func(t *testing.T) {
		rec, env := do(t, r, http.MethodPost, "/public/fail/unavailable", "", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "Delivery unavailable", env.Message)
		assert.Equal(t, "5", rec.Header().Get("Retry-After"))
	})

	t.Run("ValidationFields", func(t *testing.T) {
		rec, env := do(t, r, http.MethodPost, "/public/fail/validation", "", "")

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, map[string]string{"email": "Email is required"}, env.Error)
	})

	t.Run("RawError", func(t *testing.T) {
		rec, env := do(t, r, http.MethodPost, "/public/fail/raw", "", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", env.Message)
	})

	t.Run("Panic", func(t *testing.T) {
		rec, env := do(t, r, http.MethodPost, "/public/fail/panic", "", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", env.Message)
	})

	t.Run("NotFound", func(t *testing.T) {
		rec, env := do(t, r, http.MethodGet, "/nope", "", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "endpoint not found", env.Message)
	})

	t.Run("Welcome", func(t *testing.T) {
		rec, env := do(t, r, http.MethodGet, "/", "", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Welcome to SecureAuth API", env.Message)
	})
}

func TestRouter_CorrelationID(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(HeaderCorrelationID))
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("a"), mw("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "handler"}, order)
}
