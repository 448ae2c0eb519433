package tenant

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AhilyaKokare/visitor-pass-service/internal/audit"
	"github.com/AhilyaKokare/visitor-pass-service/internal/events"
	"github.com/AhilyaKokare/visitor-pass-service/internal/role"
	"github.com/AhilyaKokare/visitor-pass-service/internal/user"
)

type CreateTenantAndAdminRequest struct {
	TenantName      string
	LocationDetails string
	AdminName       string
	AdminEmail      string
	AdminPassword   string
	AdminContact    string
}

type Service interface {
	CreateWithAdmin(ctx context.Context, creatorName string, req CreateTenantAndAdminRequest) (*Info, error)
	List(ctx context.Context) ([]Info, error)
	Name(ctx context.Context, tenantID int64) (string, error)
	DeleteAdmin(ctx context.Context, tenantID int64) (int64, error)
}

type service struct {
	repo      Repo
	users     user.Repo
	recorder  *audit.Recorder
	publisher events.Publisher
	loginURL  string
	logger    *zap.Logger
}

func NewService(repo Repo, users user.Repo, recorder *audit.Recorder, publisher events.Publisher, loginURL string, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		users:     users,
		recorder:  recorder,
		publisher: publisher,
		loginURL:  loginURL,
		logger:    logger,
	}
}

func (s *service) CreateWithAdmin(ctx context.Context, creatorName string, req CreateTenantAndAdminRequest) (*Info, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash admin password", zap.Error(err))
		return nil, err
	}

	t, admin, err := s.repo.CreateWithAdmin(ctx, &CreateWithAdminDTO{
		TenantName:      req.TenantName,
		LocationDetails: req.LocationDetails,
		CreatedBy:       creatorName,
		AdminName:       req.AdminName,
		AdminEmail:      req.AdminEmail,
		AdminPassword:   string(hashed),
		AdminContact:    req.AdminContact,
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, "TENANT_CREATED", nil, &t.ID, nil)
	s.recorder.Record(ctx, "TENANT_ADMIN_CREATED", &admin.ID, &t.ID, nil)

	if err := s.publisher.Publish(ctx, events.RoutingKeyUserCreated, events.UserCreated{
		Name:       admin.Name,
		Email:      admin.Email,
		Role:       string(admin.Role),
		TenantName: t.Name,
		LoginURL:   s.loginURL,
	}); err != nil {
		s.logger.Warn("tenant admin created event dropped", zap.Error(err))
	}

	return &Info{
		TenantID:        t.ID,
		TenantName:      t.Name,
		LocationDetails: t.LocationDetails,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
		AdminName:       admin.Name,
		AdminEmail:      admin.Email,
		AdminContact:    admin.Contact,
		AdminIsActive:   admin.IsActive,
	}, nil
}

func (s *service) List(ctx context.Context) ([]Info, error) {
	return s.repo.ListWithAdmins(ctx)
}

func (s *service) Name(ctx context.Context, tenantID int64) (string, error) {
	t, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return "", err
	}
	return t.Name, nil
}

func (s *service) DeleteAdmin(ctx context.Context, tenantID int64) (int64, error) {
	if _, err := s.repo.GetByID(ctx, tenantID); err != nil {
		return 0, err
	}
	n, err := s.users.DeleteByTenantAndRole(ctx, tenantID, role.TenantAdmin)
	if err != nil {
		return 0, err
	}
	s.recorder.Record(ctx, "TENANT_ADMIN_DELETED", nil, &tenantID, nil)
	return n, nil
}
