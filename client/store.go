// Package client is the Go client for the visitor pass service. It keeps
// the caller's access token, decides which views a session may open, and
// guards every outgoing request with the stored credential.
package client

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role mirrors the server-side role set.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleEmployee    Role = "employee"
	RoleApprover    Role = "approver"
	RoleSecurity    Role = "security"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleTenantAdmin, RoleEmployee, RoleApprover, RoleSecurity:
		return true
	}
	return false
}

// Session is the decoded view of a stored credential. The decode is
// unverified: the client holds no signing key, and the server re-validates
// the token on every request anyway.
type Session struct {
	UserID    int64
	Subject   string
	Role      Role
	TenantID  *int64
	ExpiresAt time.Time
}

// Expired reports whether the session's token lifetime has passed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// CredentialVault is the persistence behind a TokenStore. The in-memory
// vault suits tests and short-lived processes; callers with a durable
// keychain can plug in their own.
type CredentialVault interface {
	Load() (string, bool)
	Store(token string)
	Delete()
}

type memoryVault struct {
	mu    sync.Mutex
	token string
	set   bool
}

func NewMemoryVault() CredentialVault {
	return &memoryVault{}
}

func (v *memoryVault) Load() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.token, v.set
}

func (v *memoryVault) Store(token string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.token = token
	v.set = true
}

func (v *memoryVault) Delete() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.token = ""
	v.set = false
}

// TokenStore holds the current credential and answers session questions
// about it. All methods are safe for concurrent use.
type TokenStore struct {
	mu    sync.Mutex
	vault CredentialVault
	epoch uint64
	now   func() time.Time
}

// NewTokenStore wraps vault; a nil vault gets an in-memory one.
func NewTokenStore(vault CredentialVault) *TokenStore {
	if vault == nil {
		vault = NewMemoryVault()
	}
	return &TokenStore{vault: vault, now: time.Now}
}

// SetCredential stores a fresh token and starts a new credential epoch,
// re-arming the transport's redirect latch.
func (s *TokenStore) SetCredential(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vault.Store(token)
	s.epoch++
}

// ClearCredential removes the stored token. Clearing an empty store is a
// no-op, so concurrent clears are harmless.
func (s *TokenStore) ClearCredential() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vault.Delete()
}

// CurrentCredential returns the raw token, if one is stored.
func (s *TokenStore) CurrentCredential() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vault.Load()
}

// Decode parses the stored token into a Session. A missing or malformed
// token yields ok == false, never an error: the caller treats both the
// same way, as "not signed in".
func (s *TokenStore) Decode() (*Session, bool) {
	raw, ok := s.CurrentCredential()
	if !ok || raw == "" {
		return nil, false
	}
	return decodeToken(raw)
}

// IsValid reports whether a live, unexpired session exists. Expired and
// malformed credentials are evicted from the vault as a side effect, so a
// dead token never lingers past its first inspection.
func (s *TokenStore) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.vault.Load()
	if !ok || raw == "" {
		return false
	}
	sess, ok := decodeToken(raw)
	if !ok || sess.Expired(s.now()) {
		s.vault.Delete()
		return false
	}
	return true
}

// Role returns the session role, or "" when no valid session exists.
func (s *TokenStore) Role() Role {
	if !s.IsValid() {
		return ""
	}
	sess, ok := s.Decode()
	if !ok {
		return ""
	}
	return sess.Role
}

// TenantID returns the session tenant, nil for super admins and for
// missing sessions.
func (s *TokenStore) TenantID() *int64 {
	if !s.IsValid() {
		return nil
	}
	sess, ok := s.Decode()
	if !ok {
		return nil
	}
	return sess.TenantID
}

// currentEpoch is read by the transport's redirect latch.
func (s *TokenStore) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

type tokenClaims struct {
	UID      int64  `json:"uid"`
	Role     string `json:"role"`
	TenantID *int64 `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

func decodeToken(raw string) (*Session, bool) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, false
	}

	sess := &Session{
		UserID:   claims.UID,
		Subject:  claims.Subject,
		Role:     Role(claims.Role),
		TenantID: claims.TenantID,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, true
}
