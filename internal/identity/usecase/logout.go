package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/secureauth/internal/pkg/goerror"
	"github.com/shandysiswandi/secureauth/internal/pkg/jwt"
)

type LogoutInput struct {
	Token string
}

// Logout puts the bearer token on the revocation ledger.
func (s *Usecase) Logout(ctx context.Context, in LogoutInput) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil || in.Token == "" {
		return goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	err := s.session.Revoke(ctx, in.Token)
	if errors.Is(err, jwt.ErrInvalidToken) {
		return goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to revoke session token", "account_id", clm.AccountID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
