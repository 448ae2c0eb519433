package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AhilyaKokare/visitor-pass-service/internal/audit"
	"github.com/AhilyaKokare/visitor-pass-service/internal/events"
	"github.com/AhilyaKokare/visitor-pass-service/internal/role"
)

// TenantNameFunc resolves a tenant's display name for notification payloads.
// Declared here to keep the user package from depending on the tenant package.
type TenantNameFunc func(ctx context.Context, tenantID int64) (string, error)

type CreateUserRequest struct {
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

type UpdateProfileRequest struct {
	Email   string
	Contact string
	Address string
}

type Service interface {
	Create(ctx context.Context, tenantID int64, actorID int64, req CreateUserRequest) (*User, error)
	ListByTenant(ctx context.Context, tenantID int64) ([]User, error)
	UpdateStatus(ctx context.Context, tenantID, userID, actorID int64, active bool) (*User, error)
	Profile(ctx context.Context, userID int64) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*User, error)
}

type service struct {
	repo       Repo
	recorder   *audit.Recorder
	publisher  events.Publisher
	tenantName TenantNameFunc
	loginURL   string
	logger     *zap.Logger
}

func NewService(repo Repo, recorder *audit.Recorder, publisher events.Publisher, tenantName TenantNameFunc, loginURL string, logger *zap.Logger) Service {
	return &service{
		repo:       repo,
		recorder:   recorder,
		publisher:  publisher,
		tenantName: tenantName,
		loginURL:   loginURL,
		logger:     logger,
	}
}

func (s *service) Create(ctx context.Context, tenantID int64, actorID int64, req CreateUserRequest) (*User, error) {
	// Tenant admins may only mint tenant-scoped roles; super admins are
	// created out of band.
	if !req.Role.Valid() || req.Role == role.SuperAdmin {
		return nil, ErrInvalidRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u, err := s.repo.Create(ctx, &CreateDTO{
		UniqueID:    uuid.NewString(),
		TenantID:    &tenantID,
		Name:        req.Name,
		Email:       req.Email,
		Password:    string(hashed),
		Contact:     req.Contact,
		Role:        req.Role,
		JoiningDate: req.JoiningDate,
		Address:     req.Address,
		Gender:      req.Gender,
		Department:  req.Department,
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, "USER_CREATED", &u.ID, &tenantID, nil)

	tenantName, err := s.tenantName(ctx, tenantID)
	if err != nil {
		tenantName = ""
	}
	if err := s.publisher.Publish(ctx, events.RoutingKeyUserCreated, events.UserCreated{
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		TenantName: tenantName,
		LoginURL:   s.loginURL,
	}); err != nil {
		s.logger.Warn("user created event dropped", zap.Error(err))
	}

	return u, nil
}

func (s *service) ListByTenant(ctx context.Context, tenantID int64) ([]User, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *service) UpdateStatus(ctx context.Context, tenantID, userID, actorID int64, active bool) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.TenantID == nil || *u.TenantID != tenantID {
		return nil, ErrWrongTenant
	}

	updated, err := s.repo.UpdateStatus(ctx, userID, active)
	if err != nil {
		return nil, err
	}

	action := "USER_DEACTIVATED"
	if active {
		action = "USER_ACTIVATED"
	}
	s.recorder.Record(ctx, action, &actorID, &tenantID, nil)
	return updated, nil
}

func (s *service) Profile(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*User, error) {
	u, err := s.repo.UpdateProfile(ctx, userID, ProfileDTO{
		Email:   req.Email,
		Contact: req.Contact,
		Address: req.Address,
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, "PROFILE_UPDATED", &u.ID, u.TenantID, nil)
	return u, nil
}
