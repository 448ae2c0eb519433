package pass

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/audit"
	"github.com/AhilyaKokare/visitor-pass-service/internal/events"
	"github.com/AhilyaKokare/visitor-pass-service/internal/role"
	"github.com/AhilyaKokare/visitor-pass-service/internal/user"
)

type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	passes map[int64]*VisitorPass
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, passes: map[int64]*VisitorPass{}}
}

func (f *fakeRepo) Create(_ context.Context, dto *CreateDTO) (*VisitorPass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &VisitorPass{
		ID:           f.nextID,
		TenantID:     dto.TenantID,
		VisitorName:  dto.VisitorName,
		VisitorEmail: dto.VisitorEmail,
		VisitorPhone: dto.VisitorPhone,
		Purpose:      dto.Purpose,
		VisitAt:      dto.VisitAt,
		PassCode:     dto.PassCode,
		Status:       StatusPending,
		CreatedByID:  dto.CreatedByID,
		CreatedAt:    time.Now(),
	}
	f.nextID++
	f.passes[p.ID] = p
	return copyPass(p), nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*VisitorPass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.passes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyPass(p), nil
}

func (f *fakeRepo) GetByTenantAndCode(_ context.Context, tenantID int64, passCode string) (*VisitorPass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.passes {
		if p.TenantID == tenantID && p.PassCode == passCode {
			return copyPass(p), nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) ListByTenant(_ context.Context, tenantID int64, offset, limit int) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []VisitorPass
	for _, p := range f.passes {
		if p.TenantID == tenantID {
			items = append(items, *p)
		}
	}
	return &Page{Items: items, TotalCount: int64(len(items)), Offset: offset, Limit: limit}, nil
}

func (f *fakeRepo) ListByCreator(_ context.Context, creatorID int64, offset, limit int) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []VisitorPass
	for _, p := range f.passes {
		if p.CreatedByID == creatorID {
			items = append(items, *p)
		}
	}
	return &Page{Items: items, TotalCount: int64(len(items)), Offset: offset, Limit: limit}, nil
}

func (f *fakeRepo) ListTodayByTenant(_ context.Context, tenantID int64, _ time.Time) ([]TodayVisitor, error) {
	return nil, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, from, to Status) (*VisitorPass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.passes[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Status != from {
		switch from {
		case StatusApproved:
			return nil, ErrNotApproved
		case StatusCheckedIn:
			return nil, ErrNotCheckedIn
		default:
			return nil, ErrAlreadyFinalized
		}
	}
	p.Status = to
	return copyPass(p), nil
}

func (f *fakeRepo) SetDecision(_ context.Context, id int64, to Status, approverID int64, reason string) (*VisitorPass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.passes[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Status != StatusPending {
		return nil, ErrAlreadyFinalized
	}
	p.Status = to
	p.ApprovedByID = &approverID
	p.RejectionReason = reason
	return copyPass(p), nil
}

func (f *fakeRepo) ListOverdueApproved(_ context.Context, before time.Time) ([]VisitorPass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []VisitorPass
	for _, p := range f.passes {
		if p.Status == StatusApproved && p.VisitAt.Before(before) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func copyPass(p *VisitorPass) *VisitorPass {
	cp := *p
	return &cp
}

type fakeUserRepo struct {
	user.Repo
	admin *user.User
}

func (f *fakeUserRepo) FindFirstByTenantAndRole(_ context.Context, _ int64, _ role.Role) (*user.User, error) {
	if f.admin == nil {
		return nil, user.ErrNotFound
	}
	return f.admin, nil
}

type nopAuditRepo struct{}

func (nopAuditRepo) Create(context.Context, audit.Entry) (int64, error) { return 1, nil }
func (nopAuditRepo) ListByTenant(context.Context, int64, int) ([]audit.Entry, error) {
	return nil, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func newTestService(repo Repo, pub events.Publisher) Service {
	return NewService(repo, &fakeUserRepo{admin: &user.User{Email: "admin@acme.test"}},
		audit.NewRecorder(nopAuditRepo{}, zap.NewNop()), pub, zap.NewNop())
}

func TestService_CreateStartsPending(t *testing.T) {
	repo := newFakeRepo()
	pub := &recordingPublisher{}
	svc := newTestService(repo, pub)

	p, err := svc.Create(context.Background(), 1, 10, CreateRequest{
		VisitorName: "Ada Visitor",
		VisitAt:     time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	assert.Len(t, p.PassCode, 8)
	assert.Equal(t, []string{events.RoutingKeyPassCreated}, pub.published())
}

func TestService_ApproveThenCheckInThenCheckOut(t *testing.T) {
	repo := newFakeRepo()
	pub := &recordingPublisher{}
	svc := newTestService(repo, pub)

	created, err := svc.Create(context.Background(), 1, 10, CreateRequest{
		VisitorName: "Ada Visitor",
		VisitAt:     time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), created.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)

	checkedIn, err := svc.CheckIn(context.Background(), created.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, checkedIn.Status)

	checkedOut, err := svc.CheckOut(context.Background(), created.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedOut, checkedOut.Status)
}

func TestService_CheckInRequiresApproval(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingPublisher{})

	created, err := svc.Create(context.Background(), 1, 10, CreateRequest{
		VisitorName: "Ada Visitor",
		VisitAt:     time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), created.ID, 30)
	assert.ErrorIs(t, err, ErrNotApproved)
}

func TestService_CheckOutRequiresCheckIn(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingPublisher{})

	created, err := svc.Create(context.Background(), 1, 10, CreateRequest{
		VisitorName: "Ada Visitor",
		VisitAt:     time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), created.ID, 20)
	require.NoError(t, err)

	_, err = svc.CheckOut(context.Background(), created.ID, 30)
	assert.ErrorIs(t, err, ErrNotCheckedIn)
}

func TestService_DecisionIsFinal(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingPublisher{})

	created, err := svc.Create(context.Background(), 1, 10, CreateRequest{
		VisitorName: "Ada Visitor",
		VisitAt:     time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), created.ID, 20, "no host available")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), created.ID, 20)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestService_RejectRecordsReason(t *testing.T) {
	repo := newFakeRepo()
	pub := &recordingPublisher{}
	svc := newTestService(repo, pub)

	created, err := svc.Create(context.Background(), 1, 10, CreateRequest{
		VisitorName: "Ada Visitor",
		VisitAt:     time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), created.ID, 20, "no host available")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "no host available", rejected.RejectionReason)
	assert.Contains(t, pub.published(), events.RoutingKeyPassRejected)
}

func TestService_FindByCodeNormalizesInput(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &recordingPublisher{})

	created, err := svc.Create(context.Background(), 1, 10, CreateRequest{
		VisitorName: "Ada Visitor",
		VisitAt:     time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	found, err := svc.FindByCode(context.Background(), 1, "  "+created.PassCode+" ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.FindByCode(context.Background(), 2, created.PassCode)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ExpireOverdue(t *testing.T) {
	repo := newFakeRepo()
	pub := &recordingPublisher{}
	svc := newTestService(repo, pub)

	overdue, err := svc.Create(context.Background(), 1, 10, CreateRequest{
		VisitorName: "Late Visitor",
		VisitAt:     time.Now().Add(-2 * time.Hour),
	})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), overdue.ID, 20)
	require.NoError(t, err)

	upcoming, err := svc.Create(context.Background(), 1, 10, CreateRequest{
		VisitorName: "Punctual Visitor",
		VisitAt:     time.Now().Add(2 * time.Hour),
	})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), upcoming.ID, 20)
	require.NoError(t, err)

	expired, err := svc.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	got, err := repo.GetByID(context.Background(), overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)

	got, err = repo.GetByID(context.Background(), upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)

	assert.Contains(t, pub.published(), events.RoutingKeyPassExpired)
}
