package auth

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// ResetTokenDTO carries the fields needed to persist a password reset token.
// Only the hash is stored; the raw token travels in the reset email.
type ResetTokenDTO struct {
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
}

type ResetTokenLookup struct {
	ID        int64
	UserID    int64
	ExpiresAt time.Time
}

type ResetTokenRepo interface {
	Create(ctx context.Context, dto ResetTokenDTO) (int64, error)
	FindActiveByHash(ctx context.Context, tokenHash string, now time.Time) (*ResetTokenLookup, error)
	MarkUsed(ctx context.Context, id int64) error
	InvalidateForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, now time.Time) error
}

const (
	insertResetTokenQuery = `
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id
		`
	findActiveResetTokenQuery = `
		SELECT id, user_id, expires_at
		FROM password_reset_tokens
		WHERE token_hash = $1
		  AND used_at IS NULL
		  AND expires_at > $2
		LIMIT 1
		`
	markResetTokenUsedQuery = `
		UPDATE password_reset_tokens
		SET used_at = COALESCE(used_at, now())
		WHERE id = $1 AND used_at IS NULL
		`
	invalidateUserTokensQuery = `
		UPDATE password_reset_tokens
		SET used_at = COALESCE(used_at, now())
		WHERE user_id = $1 AND used_at IS NULL
		`
	deleteExpiredTokensQuery = `
		DELETE FROM password_reset_tokens WHERE expires_at < $1
		`
)

type resetTokenRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewResetTokenRepo(db *sql.DB, logger *zap.Logger) ResetTokenRepo {
	return &resetTokenRepo{db: db, logger: logger}
}

func (r *resetTokenRepo) Create(ctx context.Context, dto ResetTokenDTO) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, insertResetTokenQuery,
		dto.UserID, dto.TokenHash, dto.ExpiresAt,
	).Scan(&id)
	if err != nil {
		r.logger.Error("failed to insert reset token", zap.Error(err))
		return 0, err
	}
	return id, nil
}

func (r *resetTokenRepo) FindActiveByHash(ctx context.Context, tokenHash string, now time.Time) (*ResetTokenLookup, error) {
	var rec ResetTokenLookup
	err := r.db.QueryRowContext(ctx, findActiveResetTokenQuery, tokenHash, now).
		Scan(&rec.ID, &rec.UserID, &rec.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("failed to lookup reset token by hash", zap.Error(err))
		return nil, err
	}
	return &rec, nil
}

func (r *resetTokenRepo) MarkUsed(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, markResetTokenUsedQuery, id)
	if err != nil {
		r.logger.Error("failed to mark reset token used", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// no-op if already used or not found
		r.logger.Debug("no reset token marked (not found or already used)", zap.Int64("id", id))
	}
	return nil
}

func (r *resetTokenRepo) InvalidateForUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, invalidateUserTokensQuery, userID)
	if err != nil {
		r.logger.Error("failed to invalidate user reset tokens", zap.Int64("user_id", userID), zap.Error(err))
	}
	return err
}

func (r *resetTokenRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, deleteExpiredTokensQuery, now)
	if err != nil {
		r.logger.Error("failed to delete expired reset tokens", zap.Error(err))
	}
	return err
}
