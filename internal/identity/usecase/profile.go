package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/secureauth/internal/pkg/goerror"
	"github.com/shandysiswandi/secureauth/internal/pkg/jwt"
)

type ProfileOutput struct {
	ID            int64
	Email         string
	Status        string
	OTPMethod     string
	EmailVerified bool
}

func (s *Usecase) Profile(ctx context.Context) (*ProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	acc, err := s.repoDB.GetAccountByID(ctx, clm.AccountID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found", "account_id", clm.AccountID)
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by id", "account_id", clm.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ProfileOutput{
		ID:            acc.ID,
		Email:         acc.Email,
		Status:        acc.Status.String(),
		OTPMethod:     acc.OTPMethod.String(),
		EmailVerified: acc.EmailVerified,
	}, nil
}
