package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/role"
)

type CreateDTO struct {
	UniqueID    string
	TenantID    *int64
	Name        string
	Email       string
	Password    string
	Contact     string
	Role        role.Role
	JoiningDate *time.Time
	Address     string
	Gender      string
	Department  string
}

type ProfileDTO struct {
	Email   string
	Contact string
	Address string
}

type Repo interface {
	Create(ctx context.Context, dto *CreateDTO) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListByTenant(ctx context.Context, tenantID int64) ([]User, error)
	FindFirstByTenantAndRole(ctx context.Context, tenantID int64, role role.Role) (*User, error)
	UpdateStatus(ctx context.Context, id int64, active bool) (*User, error)
	UpdateProfile(ctx context.Context, id int64, dto ProfileDTO) (*User, error)
	UpdatePassword(ctx context.Context, id int64, hashed string) error
	DeleteByTenantAndRole(ctx context.Context, tenantID int64, role role.Role) (int64, error)
}

const userColumns = `id, unique_id, tenant_id, name, email, password, contact, role, is_active,
		joining_date, address, gender, department, created_at, updated_at`

const (
	insertUserQuery = `
		INSERT INTO users (unique_id, tenant_id, name, email, password, contact, role, is_active,
			joining_date, address, gender, department)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8, $9, $10, $11)
		RETURNING ` + userColumns

	selectUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	selectUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	selectUsersByTenant    = `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 ORDER BY created_at`
	selectFirstByRoleQuery = `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND role = $2 ORDER BY id LIMIT 1`

	updateStatusQuery = `
		UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1
		RETURNING ` + userColumns

	updateProfileQuery = `
		UPDATE users SET email = $2, contact = $3, address = $4, updated_at = now() WHERE id = $1
		RETURNING ` + userColumns

	updatePasswordQuery = `UPDATE users SET password = $2, updated_at = now() WHERE id = $1`

	deleteByTenantRoleQuery = `DELETE FROM users WHERE tenant_id = $1 AND role = $2`
)

type repo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &repo{db: db, logger: logger}
}

func (r *repo) Create(ctx context.Context, dto *CreateDTO) (*User, error) {
	row := r.db.QueryRowContext(ctx, insertUserQuery,
		dto.UniqueID,
		dto.TenantID,
		strings.TrimSpace(dto.Name),
		strings.ToLower(strings.TrimSpace(dto.Email)),
		dto.Password,
		dto.Contact,
		dto.Role,
		dto.JoiningDate,
		dto.Address,
		dto.Gender,
		dto.Department,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			r.logger.Warn("create user canceled/timed out", zap.Error(err))
			return nil, err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			r.logger.Debug("duplicate email", zap.String("email", dto.Email))
			return nil, ErrDuplicateEmail
		}

		r.logger.Error("failed to insert user", zap.Error(err))
		return nil, err
	}

	r.logger.Debug("user created", zap.Int64("id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

func (r *repo) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUserByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to get user by id", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (r *repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUserByEmailQuery, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to get user by email", zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (r *repo) ListByTenant(ctx context.Context, tenantID int64) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, selectUsersByTenant, tenantID)
	if err != nil {
		r.logger.Error("failed to list users", zap.Int64("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *repo) FindFirstByTenantAndRole(ctx context.Context, tenantID int64, role role.Role) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectFirstByRoleQuery, tenantID, role))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *repo) UpdateStatus(ctx context.Context, id int64, active bool) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, updateStatusQuery, id, active))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to update user status", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (r *repo) UpdateProfile(ctx context.Context, id int64, dto ProfileDTO) (*User, error) {
	row := r.db.QueryRowContext(ctx, updateProfileQuery, id,
		strings.ToLower(strings.TrimSpace(dto.Email)), dto.Contact, dto.Address)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrDuplicateEmail
		}
		r.logger.Error("failed to update profile", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (r *repo) UpdatePassword(ctx context.Context, id int64, hashed string) error {
	_, err := r.db.ExecContext(ctx, updatePasswordQuery, id, hashed)
	if err != nil {
		r.logger.Error("failed to update password", zap.Int64("id", id), zap.Error(err))
	}
	return err
}

func (r *repo) DeleteByTenantAndRole(ctx context.Context, tenantID int64, role role.Role) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteByTenantRoleQuery, tenantID, role)
	if err != nil {
		r.logger.Error("failed to delete users", zap.Int64("tenant_id", tenantID), zap.Error(err))
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.UniqueID, &u.TenantID, &u.Name, &u.Email, &u.Password, &u.Contact,
		&u.Role, &u.IsActive, &u.JoiningDate, &u.Address, &u.Gender, &u.Department,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
