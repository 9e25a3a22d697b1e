package router

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shandysiswandi/secureauth/internal/pkg/jwt"
	"github.com/shandysiswandi/secureauth/internal/pkg/session"
)

// SessionVerifier resolves a bearer token to its claims. It returns
// session.ErrRevoked for tokens on the revocation ledger.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (jwt.Claims, error)
}

const (
	msgNoToken      = "No token provided"
	msgRevoked      = "Token has been revoked"
	msgInvalidToken = "Invalid or expired token"
)

// bearerToken returns the token of an "Authorization: Bearer <token>"
// header, or "" when the header is absent or malformed.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func middlewareAuthentication(verifier SessionVerifier, public map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := public[r.Method][matchedRoutePath(r)]; skip {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				writeJSON(w, errorResponse{Message: msgNoToken}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			switch {
			case errors.Is(err, session.ErrRevoked):
				writeJSON(w, errorResponse{Message: msgRevoked}, http.StatusUnauthorized)
				return
			case err != nil:
				writeJSON(w, errorResponse{Message: msgInvalidToken}, http.StatusUnauthorized)
				return
			}

			ctx := jwt.SetAuth(r.Context(), claims)
			ctx = setToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type tokenKey struct{}

func setToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// GetToken returns the bearer token accepted by the authentication
// middleware for the current request.
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
