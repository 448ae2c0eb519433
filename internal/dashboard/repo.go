package dashboard

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

type Repo interface {
	UserStats(ctx context.Context, userID int64) (*UserStats, error)
	TenantStats(ctx context.Context, tenantID int64, today time.Time) (*TenantStats, error)
	GlobalStats(ctx context.Context, today time.Time) (*GlobalStats, error)
	TenantActivity(ctx context.Context, offset, limit int) ([]TenantActivity, error)
}

const (
	userStatsQuery = `
		SELECT count(*),
			count(*) FILTER (WHERE status = 'PENDING'),
			count(*) FILTER (WHERE status = 'APPROVED'),
			count(*) FILTER (WHERE status = 'REJECTED')
		FROM visitor_passes
		WHERE created_by = $1
		`
	tenantStatsQuery = `
		SELECT
			(SELECT count(*) FROM users WHERE tenant_id = $1),
			(SELECT count(*) FROM users WHERE tenant_id = $1 AND is_active),
			count(*),
			count(*) FILTER (WHERE status = 'PENDING'),
			count(*) FILTER (WHERE status = 'APPROVED'),
			count(*) FILTER (WHERE status = 'CHECKED_IN' AND updated_at >= $2)
		FROM visitor_passes
		WHERE tenant_id = $1
		`
	globalStatsQuery = `
		SELECT
			(SELECT count(*) FROM tenants),
			(SELECT count(*) FROM users),
			count(*),
			count(*) FILTER (WHERE created_at >= $1),
			count(*) FILTER (WHERE status = 'PENDING')
		FROM visitor_passes
		`
	tenantActivityQuery = `
		SELECT t.id, t.name,
			(SELECT count(*) FROM users u WHERE u.tenant_id = t.id),
			(SELECT count(*) FROM visitor_passes vp WHERE vp.tenant_id = t.id),
			COALESCE((SELECT max(vp.created_at) FROM visitor_passes vp WHERE vp.tenant_id = t.id), t.created_at),
			t.created_at
		FROM tenants t
		ORDER BY t.created_at DESC
		OFFSET $1 LIMIT $2
		`
)

type repo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &repo{db: db, logger: logger}
}

func (r *repo) UserStats(ctx context.Context, userID int64) (*UserStats, error) {
	var s UserStats
	err := r.db.QueryRowContext(ctx, userStatsQuery, userID).
		Scan(&s.TotalPasses, &s.PendingPasses, &s.ApprovedPasses, &s.RejectedPasses)
	if err != nil {
		r.logger.Error("failed to load user stats", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *repo) TenantStats(ctx context.Context, tenantID int64, today time.Time) (*TenantStats, error) {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	var s TenantStats
	err := r.db.QueryRowContext(ctx, tenantStatsQuery, tenantID, start).Scan(
		&s.TotalUsers, &s.ActiveUsers, &s.TotalPasses,
		&s.PendingPasses, &s.ApprovedPasses, &s.CheckedInToday,
	)
	if err != nil {
		r.logger.Error("failed to load tenant stats", zap.Int64("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *repo) GlobalStats(ctx context.Context, today time.Time) (*GlobalStats, error) {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	var s GlobalStats
	err := r.db.QueryRowContext(ctx, globalStatsQuery, start).Scan(
		&s.TotalTenants, &s.TotalUsers, &s.TotalPasses, &s.PassesToday, &s.PendingApproval,
	)
	if err != nil {
		r.logger.Error("failed to load global stats", zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *repo) TenantActivity(ctx context.Context, offset, limit int) ([]TenantActivity, error) {
	rows, err := r.db.QueryContext(ctx, tenantActivityQuery, offset, limit)
	if err != nil {
		r.logger.Error("failed to load tenant activity", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []TenantActivity
	for rows.Next() {
		var a TenantActivity
		if err := rows.Scan(&a.TenantID, &a.TenantName, &a.UserCount, &a.PassCount, &a.LastPassAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
