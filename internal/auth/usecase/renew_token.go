package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tasklet-app/tasklet/internal/pkg/goerror"
	"github.com/tasklet-app/tasklet/internal/pkg/jwt"
)

type RenewTokenInput struct {
	RefreshToken string `validate:"required"`
}

type RenewTokenOutput struct {
	AccessToken     string
	AccessExpiresAt time.Time
}

// RenewToken exchanges a valid outstanding refresh token for a fresh access
// token. The refresh token itself is left untouched; it stays valid until it
// expires or gets blacklisted by a later login.
func (s *Usecase) RenewToken(ctx context.Context, in RenewTokenInput) (*RenewTokenOutput, error) {
	ctx, span := s.startSpan(ctx, "RenewToken")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	claims, err := s.jwt.Verify(in.RefreshToken, jwt.TypeRefresh)
	if errors.Is(err, jwt.ErrTokenExpired) {
		slog.WarnContext(ctx, "refresh token is expired")
		return nil, goerror.NewBusiness("refresh token is expired or blacklisted", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.WarnContext(ctx, "refresh token is malformed", "error", err)
		return nil, goerror.NewBusiness("refresh token is invalid", goerror.CodeForbidden)
	}

	tokenHash, err := s.hmac.Hash(in.RefreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	rec, err := s.repoDB.GetRefreshToken(ctx, string(tokenHash))
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "refresh token is not outstanding")
		return nil, goerror.NewBusiness("refresh token is expired or blacklisted", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	if rec.IsBlacklisted() || s.clock.Now().After(rec.ExpiresAt) {
		slog.WarnContext(ctx, "refresh token is expired or blacklisted", "refresh_token_id", rec.ID)
		return nil, goerror.NewBusiness("refresh token is expired or blacklisted", goerror.CodeUnauthorized)
	}

	if claims.UserID == 0 {
		slog.WarnContext(ctx, "refresh token carries no subject claim")
		return nil, goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}

	user, err := s.repoDB.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user referenced by refresh token not found", "user_id", claims.UserID)
		return nil, goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", claims.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	// No account status check here on purpose: an inactive user can never
	// complete a login, so their refresh tokens are already blacklisted.
	acToken, acExpiresAt, err := s.jwt.GenerateAccess(user.ID, user.Phone)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &RenewTokenOutput{
		AccessToken:     acToken,
		AccessExpiresAt: acExpiresAt,
	}, nil
}
