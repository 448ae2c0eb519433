package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AhilyaKokare/visitor-pass-service/internal/audit"
	"github.com/AhilyaKokare/visitor-pass-service/internal/events"
	"github.com/AhilyaKokare/visitor-pass-service/internal/token"
	"github.com/AhilyaKokare/visitor-pass-service/internal/user"
)

const resetTokenTTL = 15 * time.Minute

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *user.User
}

type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	InitiatePasswordReset(ctx context.Context, email, resetBaseURL string) error
	ResetPassword(ctx context.Context, rawToken, newPassword, confirmPassword string) error
}

type service struct {
	users      user.Repo
	tokens     token.Service
	resets     ResetTokenRepo
	recorder   *audit.Recorder
	publisher  events.Publisher
	tenantName user.TenantNameFunc
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(users user.Repo, tokens token.Service, resets ResetTokenRepo,
	recorder *audit.Recorder, publisher events.Publisher, tenantName user.TenantNameFunc,
	logger *zap.Logger) Service {
	return &service{
		users:      users,
		tokens:     tokens,
		resets:     resets,
		recorder:   recorder,
		publisher:  publisher,
		tenantName: tenantName,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Burn a comparison so missing and mismatched accounts take the
			// same time.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$000000000000000000000uGyUvPdQ35dVzzZu9aH4kHbi6GG7ZUfO"), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrUserNotActive
	}

	issued, err := s.tokens.Issue(token.Identity{
		UserID:   u.ID,
		UniqueID: u.UniqueID,
		Role:     u.Role,
		TenantID: u.TenantID,
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, "USER_LOGIN", &u.ID, u.TenantID, nil)
	return &LoginResult{
		AccessToken: issued.AccessToken,
		ExpiresAt:   issued.ExpiresAt,
		User:        u,
	}, nil
}

func (s *service) InitiatePasswordReset(ctx context.Context, email, resetBaseURL string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Do not leak which addresses have accounts.
			s.logger.Debug("password reset requested for unknown email")
			return nil
		}
		return err
	}

	if err := s.resets.InvalidateForUser(ctx, u.ID); err != nil {
		return err
	}

	raw, err := generateSecureToken()
	if err != nil {
		return err
	}

	_, err = s.resets.Create(ctx, ResetTokenDTO{
		UserID:    u.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: s.now().Add(resetTokenTTL),
	})
	if err != nil {
		return err
	}

	tenantName := "Visitor Pass System"
	if u.TenantID != nil {
		if name, err := s.tenantName(ctx, *u.TenantID); err == nil && name != "" {
			tenantName = name
		}
	}

	if err := s.publisher.Publish(ctx, events.RoutingKeyPasswordReset, events.PasswordResetRequested{
		Email:      u.Email,
		Name:       u.Name,
		ResetURL:   resetBaseURL + "/" + raw,
		TenantName: tenantName,
	}); err != nil {
		s.logger.Error("failed to send password reset event", zap.Error(err))
		return err
	}

	s.recorder.Record(ctx, "PASSWORD_RESET_REQUESTED", &u.ID, u.TenantID, nil)
	return nil
}

func (s *service) ResetPassword(ctx context.Context, rawToken, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	now := s.now()
	rec, err := s.resets.FindActiveByHash(ctx, hashToken(rawToken), now)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrInvalidResetToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, rec.UserID, string(hashed)); err != nil {
		return err
	}
	if err := s.resets.MarkUsed(ctx, rec.ID); err != nil {
		return err
	}

	// Housekeeping; failures here are harmless.
	_ = s.resets.DeleteExpired(ctx, now)

	s.recorder.Record(ctx, "PASSWORD_RESET", &rec.UserID, nil, nil)
	return nil
}

func generateSecureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(str string) string {
	h := sha256.Sum256([]byte(str))
	return base64.RawURLEncoding.EncodeToString(h[:])
}
