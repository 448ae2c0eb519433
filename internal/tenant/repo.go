package tenant

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/role"
	"github.com/AhilyaKokare/visitor-pass-service/internal/user"
)

var ErrNotFound = errors.New("tenant not found")

type CreateWithAdminDTO struct {
	TenantName      string
	LocationDetails string
	CreatedBy       string
	AdminName       string
	AdminEmail      string
	AdminPassword   string // bcrypt hash
	AdminContact    string
}

type Repo interface {
	CreateWithAdmin(ctx context.Context, dto *CreateWithAdminDTO) (*Tenant, *user.User, error)
	GetByID(ctx context.Context, id int64) (*Tenant, error)
	ListWithAdmins(ctx context.Context) ([]Info, error)
}

const (
	insertTenantQuery = `
		INSERT INTO tenants (name, location_details, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, name, location_details, created_by, created_at
		`
	insertAdminQuery = `
		INSERT INTO users (unique_id, tenant_id, name, email, password, contact, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true)
		RETURNING id, unique_id, tenant_id, name, email, password, contact, role, is_active,
			joining_date, address, gender, department, created_at, updated_at
		`
	selectTenantQuery = `
		SELECT id, name, location_details, created_by, created_at FROM tenants WHERE id = $1
		`
	listWithAdminsQuery = `
		SELECT t.id, t.name, t.location_details, t.created_by, t.created_at,
			COALESCE(a.name, ''), COALESCE(a.email, ''), COALESCE(a.contact, ''),
			COALESCE(a.is_active, false)
		FROM tenants t
		LEFT JOIN LATERAL (
			SELECT name, email, contact, is_active
			FROM users u
			WHERE u.tenant_id = t.id AND u.role = $1
			ORDER BY u.id
			LIMIT 1
		) a ON true
		ORDER BY t.created_at DESC
		`
)

type repo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &repo{db: db, logger: logger}
}

// CreateWithAdmin inserts the tenant and its first admin atomically; a tenant
// without an admin is unreachable, so the pair commits or rolls back together.
func (r *repo) CreateWithAdmin(ctx context.Context, dto *CreateWithAdminDTO) (*Tenant, *user.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var t Tenant
	err = tx.QueryRowContext(ctx, insertTenantQuery,
		strings.TrimSpace(dto.TenantName), dto.LocationDetails, dto.CreatedBy,
	).Scan(&t.ID, &t.Name, &t.LocationDetails, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		r.logger.Error("failed to insert tenant", zap.Error(err))
		return nil, nil, err
	}

	var u user.User
	err = tx.QueryRowContext(ctx, insertAdminQuery,
		uuid.NewString(),
		t.ID,
		strings.TrimSpace(dto.AdminName),
		strings.ToLower(strings.TrimSpace(dto.AdminEmail)),
		dto.AdminPassword,
		dto.AdminContact,
		role.TenantAdmin,
	).Scan(
		&u.ID, &u.UniqueID, &u.TenantID, &u.Name, &u.Email, &u.Password, &u.Contact,
		&u.Role, &u.IsActive, &u.JoiningDate, &u.Address, &u.Gender, &u.Department,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, nil, user.ErrDuplicateEmail
		}
		r.logger.Error("failed to insert tenant admin", zap.Error(err))
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &t, &u, nil
}

func (r *repo) GetByID(ctx context.Context, id int64) (*Tenant, error) {
	var t Tenant
	err := r.db.QueryRowContext(ctx, selectTenantQuery, id).
		Scan(&t.ID, &t.Name, &t.LocationDetails, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to get tenant", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &t, nil
}

func (r *repo) ListWithAdmins(ctx context.Context) ([]Info, error) {
	rows, err := r.db.QueryContext(ctx, listWithAdminsQuery, role.TenantAdmin)
	if err != nil {
		r.logger.Error("failed to list tenants", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		err := rows.Scan(
			&info.TenantID, &info.TenantName, &info.LocationDetails, &info.CreatedBy,
			&info.CreatedAt, &info.AdminName, &info.AdminEmail, &info.AdminContact,
			&info.AdminIsActive,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
