package pass

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/audit"
	"github.com/AhilyaKokare/visitor-pass-service/internal/events"
	"github.com/AhilyaKokare/visitor-pass-service/internal/role"
	"github.com/AhilyaKokare/visitor-pass-service/internal/user"
)

type CreateRequest struct {
	VisitorName  string
	VisitorEmail string
	VisitorPhone string
	Purpose      string
	VisitAt      time.Time
}

type Service interface {
	Create(ctx context.Context, tenantID, creatorID int64, req CreateRequest) (*VisitorPass, error)
	Approve(ctx context.Context, passID, approverID int64) (*VisitorPass, error)
	Reject(ctx context.Context, passID, approverID int64, reason string) (*VisitorPass, error)
	CheckIn(ctx context.Context, passID int64, securityUserID int64) (*VisitorPass, error)
	CheckOut(ctx context.Context, passID int64, securityUserID int64) (*VisitorPass, error)
	FindByCode(ctx context.Context, tenantID int64, passCode string) (*VisitorPass, error)
	ListByTenant(ctx context.Context, tenantID int64, offset, limit int) (*Page, error)
	History(ctx context.Context, creatorID int64, offset, limit int) (*Page, error)
	TodayVisitors(ctx context.Context, tenantID int64) ([]TodayVisitor, error)
	ExpireOverdue(ctx context.Context) (int, error)
}

type service struct {
	repo      Repo
	users     user.Repo
	recorder  *audit.Recorder
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo Repo, users user.Repo, recorder *audit.Recorder, publisher events.Publisher, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		users:     users,
		recorder:  recorder,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *service) Create(ctx context.Context, tenantID, creatorID int64, req CreateRequest) (*VisitorPass, error) {
	p, err := s.repo.Create(ctx, &CreateDTO{
		TenantID:     tenantID,
		VisitorName:  req.VisitorName,
		VisitorEmail: req.VisitorEmail,
		VisitorPhone: req.VisitorPhone,
		Purpose:      req.Purpose,
		VisitAt:      req.VisitAt,
		PassCode:     generatePassCode(),
		CreatedByID:  creatorID,
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, "PASS_CREATED", &creatorID, &tenantID, &p.ID)
	s.publish(ctx, events.RoutingKeyPassCreated, events.PassCreated{
		PassID:       p.ID,
		TenantID:     p.TenantID,
		VisitorName:  p.VisitorName,
		CreatorEmail: p.CreatedByEmail,
		VisitAt:      p.VisitAt,
	})
	return p, nil
}

func (s *service) Approve(ctx context.Context, passID, approverID int64) (*VisitorPass, error) {
	p, err := s.repo.SetDecision(ctx, passID, StatusApproved, approverID, "")
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, "PASS_APPROVED", &approverID, &p.TenantID, &p.ID)
	s.publish(ctx, events.RoutingKeyPassApproved, events.PassApproved{
		PassID:       p.ID,
		TenantID:     p.TenantID,
		VisitorName:  p.VisitorName,
		VisitorEmail: p.VisitorEmail,
		CreatorEmail: p.CreatedByEmail,
		PassCode:     p.PassCode,
		VisitAt:      p.VisitAt,
	})
	return p, nil
}

func (s *service) Reject(ctx context.Context, passID, approverID int64, reason string) (*VisitorPass, error) {
	p, err := s.repo.SetDecision(ctx, passID, StatusRejected, approverID, reason)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, "PASS_REJECTED", &approverID, &p.TenantID, &p.ID)
	s.publish(ctx, events.RoutingKeyPassRejected, events.PassRejected{
		PassID:       p.ID,
		VisitorName:  p.VisitorName,
		CreatorEmail: p.CreatedByEmail,
		Reason:       reason,
	})
	return p, nil
}

func (s *service) CheckIn(ctx context.Context, passID int64, securityUserID int64) (*VisitorPass, error) {
	p, err := s.repo.UpdateStatus(ctx, passID, StatusApproved, StatusCheckedIn)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, "PASS_CHECKED_IN", &securityUserID, &p.TenantID, &p.ID)
	return p, nil
}

func (s *service) CheckOut(ctx context.Context, passID int64, securityUserID int64) (*VisitorPass, error) {
	p, err := s.repo.UpdateStatus(ctx, passID, StatusCheckedIn, StatusCheckedOut)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, "PASS_CHECKED_OUT", &securityUserID, &p.TenantID, &p.ID)
	return p, nil
}

func (s *service) FindByCode(ctx context.Context, tenantID int64, passCode string) (*VisitorPass, error) {
	return s.repo.GetByTenantAndCode(ctx, tenantID, strings.ToUpper(strings.TrimSpace(passCode)))
}

func (s *service) ListByTenant(ctx context.Context, tenantID int64, offset, limit int) (*Page, error) {
	return s.repo.ListByTenant(ctx, tenantID, offset, limit)
}

func (s *service) History(ctx context.Context, creatorID int64, offset, limit int) (*Page, error) {
	return s.repo.ListByCreator(ctx, creatorID, offset, limit)
}

func (s *service) TodayVisitors(ctx context.Context, tenantID int64) ([]TodayVisitor, error) {
	return s.repo.ListTodayByTenant(ctx, tenantID, s.now())
}

// ExpireOverdue moves approved passes whose visit time has passed into the
// EXPIRED state and notifies the creating employee and the tenant admin.
func (s *service) ExpireOverdue(ctx context.Context) (int, error) {
	overdue, err := s.repo.ListOverdueApproved(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if len(overdue) == 0 {
		return 0, nil
	}

	expired := 0
	for _, p := range overdue {
		if _, err := s.repo.UpdateStatus(ctx, p.ID, StatusApproved, StatusExpired); err != nil {
			// A concurrent check-in may have won the race; skip and move on.
			s.logger.Warn("skipping pass during expiry sweep", zap.Int64("pass_id", p.ID), zap.Error(err))
			continue
		}
		expired++

		s.recorder.Record(ctx, "PASS_EXPIRED_SYSTEM", nil, &p.TenantID, &p.ID)

		adminEmail := ""
		if admin, err := s.users.FindFirstByTenantAndRole(ctx, p.TenantID, role.TenantAdmin); err == nil {
			adminEmail = admin.Email
		}
		s.publish(ctx, events.RoutingKeyPassExpired, events.PassExpired{
			PassID:           p.ID,
			TenantID:         p.TenantID,
			VisitorName:      p.VisitorName,
			VisitAt:          p.VisitAt,
			CreatorEmail:     p.CreatedByEmail,
			TenantAdminEmail: adminEmail,
		})
	}

	s.logger.Info("expired overdue passes", zap.Int("count", expired))
	return expired, nil
}

func (s *service) publish(ctx context.Context, key string, event any) {
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.Warn("notification event dropped", zap.String("routing_key", key), zap.Error(err))
	}
}

func generatePassCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
