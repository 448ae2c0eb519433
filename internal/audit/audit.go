package audit

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/httpx"
)

// Entry is one append-only audit record. User and pass references are
// optional; system actions (e.g. the expiry sweep) carry no user.
type Entry struct {
	ID        int64     `json:"id"`
	TenantID  *int64    `json:"tenant_id,omitempty"`
	UserID    *int64    `json:"user_id,omitempty"`
	PassID    *int64    `json:"pass_id,omitempty"`
	Action    string    `json:"action"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Repo interface {
	Create(ctx context.Context, e Entry) (int64, error)
	ListByTenant(ctx context.Context, tenantID int64, limit int) ([]Entry, error)
}

const (
	insertEntryQuery = `
		INSERT INTO audit_logs (tenant_id, user_id, pass_id, action, ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
		`
	listByTenantQuery = `
		SELECT id, tenant_id, user_id, pass_id, action, ip, user_agent, created_at
		FROM audit_logs
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
		`
)

type repo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &repo{db: db, logger: logger}
}

func (r *repo) Create(ctx context.Context, e Entry) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, insertEntryQuery,
		e.TenantID, e.UserID, e.PassID, e.Action, e.IP, e.UserAgent,
	).Scan(&id)
	if err != nil {
		r.logger.Error("failed to create audit entry", zap.String("action", e.Action), zap.Error(err))
		return 0, err
	}
	return id, nil
}

func (r *repo) ListByTenant(ctx context.Context, tenantID int64, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, listByTenantQuery, tenantID, limit)
	if err != nil {
		r.logger.Error("failed to list audit entries", zap.Int64("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.UserID, &e.PassID, &e.Action, &e.IP, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Recorder logs audit events without failing the surrounding operation.
type Recorder struct {
	repo   Repo
	logger *zap.Logger
}

func NewRecorder(repo Repo, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record writes an audit entry; persistence failures are logged, never returned.
// Audit is observability, not part of the transaction it describes.
func (rec *Recorder) Record(ctx context.Context, action string, userID, tenantID, passID *int64) {
	meta, _ := httpx.MetaFromContext(ctx)
	_, err := rec.repo.Create(ctx, Entry{
		TenantID:  tenantID,
		UserID:    userID,
		PassID:    passID,
		Action:    action,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	})
	if err != nil {
		rec.logger.Warn("audit entry dropped", zap.String("action", action), zap.Error(err))
	}
}
