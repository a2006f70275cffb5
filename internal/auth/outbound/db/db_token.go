package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/tasklet-app/tasklet/internal/auth/entity"
)

const queryGetRefreshToken = `
SELECT id, user_id, token_hash, expires_at, blacklisted_at, created_at
FROM auth_refresh_tokens
WHERE token_hash = $1
`

func (s *DB) GetRefreshToken(ctx context.Context, tokenHash string) (rec *entity.RefreshRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetRefreshToken")
	defer func() { s.endSpan(span, err) }()

	var r entity.RefreshRecord
	err = s.conn.QueryRow(ctx, queryGetRefreshToken, tokenHash).
		Scan(&r.ID, &r.UserID, &r.TokenHash, &r.ExpiresAt, &r.BlacklistedAt, &r.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &r, nil
}

const queryBlacklistUserTokens = `
UPDATE auth_refresh_tokens
SET blacklisted_at = now()
WHERE user_id = $1 AND blacklisted_at IS NULL
`

const queryCreateRefreshToken = `
INSERT INTO auth_refresh_tokens (id, user_id, token_hash, expires_at)
VALUES ($1, $2, $3, $4)
`

// RotateUserSessions blacklists every outstanding refresh token of the user
// and records the new one in a single transaction. If anything fails the old
// tokens stay valid and the new one is never outstanding.
func (s *DB) RotateUserSessions(ctx context.Context, userID int64, rec entity.RefreshRecord) (err error) {
	ctx, span := s.startSpan(ctx, "RotateUserSessions")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	if _, err = tx.Exec(ctx, queryBlacklistUserTokens, userID); err != nil {
		return s.mapError(err)
	}

	if _, err = tx.Exec(ctx, queryCreateRefreshToken,
		rec.ID, rec.UserID, rec.TokenHash, rec.ExpiresAt,
	); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}
