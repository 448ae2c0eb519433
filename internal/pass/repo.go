package pass

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type CreateDTO struct {
	TenantID     int64
	VisitorName  string
	VisitorEmail string
	VisitorPhone string
	Purpose      string
	VisitAt      time.Time
	PassCode     string
	CreatedByID  int64
}

type Repo interface {
	Create(ctx context.Context, dto *CreateDTO) (*VisitorPass, error)
	GetByID(ctx context.Context, id int64) (*VisitorPass, error)
	GetByTenantAndCode(ctx context.Context, tenantID int64, passCode string) (*VisitorPass, error)
	ListByTenant(ctx context.Context, tenantID int64, offset, limit int) (*Page, error)
	ListByCreator(ctx context.Context, creatorID int64, offset, limit int) (*Page, error)
	ListTodayByTenant(ctx context.Context, tenantID int64, day time.Time) ([]TodayVisitor, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status) (*VisitorPass, error)
	SetDecision(ctx context.Context, id int64, to Status, approverID int64, reason string) (*VisitorPass, error)
	ListOverdueApproved(ctx context.Context, before time.Time) ([]VisitorPass, error)
}

const passColumns = `vp.id, vp.tenant_id, vp.visitor_name, vp.visitor_email, vp.visitor_phone,
		vp.purpose, vp.visit_at, vp.pass_code, vp.status, vp.created_by, cu.name, cu.email,
		vp.approved_by, COALESCE(au.name, ''), vp.rejection_reason, vp.created_at, vp.updated_at`

const passJoins = `
		FROM visitor_passes vp
		JOIN users cu ON cu.id = vp.created_by
		LEFT JOIN users au ON au.id = vp.approved_by`

const (
	insertPassQuery = `
		INSERT INTO visitor_passes
			(tenant_id, visitor_name, visitor_email, visitor_phone, purpose, visit_at, pass_code, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'PENDING', $8)
		RETURNING id
		`
	selectPassByIDQuery   = `SELECT ` + passColumns + passJoins + ` WHERE vp.id = $1`
	selectPassByCodeQuery = `SELECT ` + passColumns + passJoins + ` WHERE vp.tenant_id = $1 AND vp.pass_code = $2`

	selectPassesByTenantQuery = `SELECT ` + passColumns + passJoins + `
		WHERE vp.tenant_id = $1
		ORDER BY vp.created_at DESC
		OFFSET $2 LIMIT $3`

	selectPassesByCreatorQuery = `SELECT ` + passColumns + passJoins + `
		WHERE vp.created_by = $1
		ORDER BY vp.created_at DESC
		OFFSET $2 LIMIT $3`

	selectTodayVisitorsQuery = `
		SELECT vp.id, vp.visitor_name, vp.pass_code, vp.status, vp.visit_at, cu.name
		FROM visitor_passes vp
		JOIN users cu ON cu.id = vp.created_by
		WHERE vp.tenant_id = $1
		  AND vp.visit_at >= $2 AND vp.visit_at < $3
		  AND vp.status IN ('APPROVED', 'CHECKED_IN', 'CHECKED_OUT')
		ORDER BY vp.visit_at
		`

	// Guarded transition: the row moves only when it is still in the expected
	// source state, so concurrent check-ins cannot double-apply.
	updateStatusQuery = `
		UPDATE visitor_passes SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		`
	setDecisionQuery = `
		UPDATE visitor_passes
		SET status = $2, approved_by = $3, rejection_reason = $4, updated_at = now()
		WHERE id = $1 AND status = 'PENDING'
		`
	selectOverdueQuery = `SELECT ` + passColumns + passJoins + `
		WHERE vp.status = 'APPROVED' AND vp.visit_at < $1`

	countByTenantQuery  = `SELECT count(*) FROM visitor_passes WHERE tenant_id = $1`
	countByCreatorQuery = `SELECT count(*) FROM visitor_passes WHERE created_by = $1`
)

type repo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &repo{db: db, logger: logger}
}

func (r *repo) Create(ctx context.Context, dto *CreateDTO) (*VisitorPass, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, insertPassQuery,
		dto.TenantID,
		dto.VisitorName,
		dto.VisitorEmail,
		dto.VisitorPhone,
		dto.Purpose,
		dto.VisitAt,
		dto.PassCode,
		dto.CreatedByID,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrDuplicatePassCode
		}
		r.logger.Error("failed to insert visitor pass", zap.Error(err))
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *repo) GetByID(ctx context.Context, id int64) (*VisitorPass, error) {
	p, err := scanPass(r.db.QueryRowContext(ctx, selectPassByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to get pass by id", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *repo) GetByTenantAndCode(ctx context.Context, tenantID int64, passCode string) (*VisitorPass, error) {
	p, err := scanPass(r.db.QueryRowContext(ctx, selectPassByCodeQuery, tenantID, passCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to get pass by code", zap.String("pass_code", passCode), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *repo) ListByTenant(ctx context.Context, tenantID int64, offset, limit int) (*Page, error) {
	return r.list(ctx, selectPassesByTenantQuery, countByTenantQuery, tenantID, offset, limit)
}

func (r *repo) ListByCreator(ctx context.Context, creatorID int64, offset, limit int) (*Page, error) {
	return r.list(ctx, selectPassesByCreatorQuery, countByCreatorQuery, creatorID, offset, limit)
}

func (r *repo) list(ctx context.Context, query, countQuery string, key int64, offset, limit int) (*Page, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, key).Scan(&total); err != nil {
		r.logger.Error("failed to count passes", zap.Error(err))
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, key, offset, limit)
	if err != nil {
		r.logger.Error("failed to list passes", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := make([]VisitorPass, 0, limit)
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &Page{Items: items, TotalCount: total, Offset: offset, Limit: limit}, nil
}

func (r *repo) ListTodayByTenant(ctx context.Context, tenantID int64, day time.Time) ([]TodayVisitor, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	rows, err := r.db.QueryContext(ctx, selectTodayVisitorsQuery, tenantID, start, end)
	if err != nil {
		r.logger.Error("failed to list today's visitors", zap.Int64("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []TodayVisitor
	for rows.Next() {
		var v TodayVisitor
		if err := rows.Scan(&v.PassID, &v.VisitorName, &v.PassCode, &v.Status, &v.VisitAt, &v.CreatedByName); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repo) UpdateStatus(ctx context.Context, id int64, from, to Status) (*VisitorPass, error) {
	res, err := r.db.ExecContext(ctx, updateStatusQuery, id, from, to)
	if err != nil {
		r.logger.Error("failed to update pass status", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, r.transitionError(ctx, id, from)
	}
	return r.GetByID(ctx, id)
}

func (r *repo) SetDecision(ctx context.Context, id int64, to Status, approverID int64, reason string) (*VisitorPass, error) {
	res, err := r.db.ExecContext(ctx, setDecisionQuery, id, to, approverID, reason)
	if err != nil {
		r.logger.Error("failed to record pass decision", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, r.transitionError(ctx, id, StatusPending)
	}
	return r.GetByID(ctx, id)
}

func (r *repo) ListOverdueApproved(ctx context.Context, before time.Time) ([]VisitorPass, error) {
	rows, err := r.db.QueryContext(ctx, selectOverdueQuery, before)
	if err != nil {
		r.logger.Error("failed to list overdue passes", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []VisitorPass
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// transitionError distinguishes "no such pass" from "pass not in the expected
// state" after a guarded update matched zero rows.
func (r *repo) transitionError(ctx context.Context, id int64, expected Status) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	switch expected {
	case StatusApproved:
		return ErrNotApproved
	case StatusCheckedIn:
		return ErrNotCheckedIn
	default:
		return ErrAlreadyFinalized
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPass(row rowScanner) (*VisitorPass, error) {
	var p VisitorPass
	err := row.Scan(
		&p.ID, &p.TenantID, &p.VisitorName, &p.VisitorEmail, &p.VisitorPhone,
		&p.Purpose, &p.VisitAt, &p.PassCode, &p.Status, &p.CreatedByID, &p.CreatedByName,
		&p.CreatedByEmail, &p.ApprovedByID, &p.ApprovedByName, &p.RejectionReason,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
