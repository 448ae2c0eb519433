package client

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, uid int64, role Role, tenantID *int64, expiresAt time.Time) string {
	t.Helper()
	claims := tokenClaims{
		UID:      uid,
		Role:     string(role),
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("user-%d", uid),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestTokenStore_DecodeValidToken(t *testing.T) {
	store := NewTokenStore(nil)
	tenantID := int64(42)
	store.SetCredential(signedToken(t, 7, RoleApprover, &tenantID, time.Now().Add(time.Hour)))

	sess, ok := store.Decode()
	require.True(t, ok)
	assert.Equal(t, int64(7), sess.UserID)
	assert.Equal(t, "user-7", sess.Subject)
	assert.Equal(t, RoleApprover, sess.Role)
	require.NotNil(t, sess.TenantID)
	assert.Equal(t, int64(42), *sess.TenantID)
}

func TestTokenStore_DecodeMalformedToken(t *testing.T) {
	store := NewTokenStore(nil)
	store.SetCredential("not-a-jwt")

	sess, ok := store.Decode()
	assert.False(t, ok)
	assert.Nil(t, sess)
}

func TestTokenStore_DecodeEmptyStore(t *testing.T) {
	store := NewTokenStore(nil)

	sess, ok := store.Decode()
	assert.False(t, ok)
	assert.Nil(t, sess)
}

func TestTokenStore_IsValidEvictsExpired(t *testing.T) {
	store := NewTokenStore(nil)
	store.SetCredential(signedToken(t, 7, RoleEmployee, nil, time.Now().Add(-time.Minute)))

	assert.False(t, store.IsValid())

	// The expired credential must be gone, not merely reported invalid.
	_, ok := store.CurrentCredential()
	assert.False(t, ok)
}

func TestTokenStore_IsValidEvictsMalformed(t *testing.T) {
	store := NewTokenStore(nil)
	store.SetCredential("garbage")

	assert.False(t, store.IsValid())
	_, ok := store.CurrentCredential()
	assert.False(t, ok)
}

func TestTokenStore_IsValidLiveToken(t *testing.T) {
	store := NewTokenStore(nil)
	store.SetCredential(signedToken(t, 7, RoleSecurity, nil, time.Now().Add(time.Hour)))

	assert.True(t, store.IsValid())

	tok, ok := store.CurrentCredential()
	assert.True(t, ok)
	assert.NotEmpty(t, tok)
}

func TestTokenStore_ClearIsIdempotent(t *testing.T) {
	store := NewTokenStore(nil)
	store.SetCredential(signedToken(t, 7, RoleEmployee, nil, time.Now().Add(time.Hour)))

	store.ClearCredential()
	store.ClearCredential()
	store.ClearCredential()

	_, ok := store.CurrentCredential()
	assert.False(t, ok)
	assert.False(t, store.IsValid())
}

func TestTokenStore_RoleAndTenant(t *testing.T) {
	store := NewTokenStore(nil)

	assert.Equal(t, Role(""), store.Role())
	assert.Nil(t, store.TenantID())

	tenantID := int64(3)
	store.SetCredential(signedToken(t, 7, RoleTenantAdmin, &tenantID, time.Now().Add(time.Hour)))
	assert.Equal(t, RoleTenantAdmin, store.Role())
	require.NotNil(t, store.TenantID())
	assert.Equal(t, int64(3), *store.TenantID())

	// Super admin tokens carry no tenant.
	store.SetCredential(signedToken(t, 1, RoleSuperAdmin, nil, time.Now().Add(time.Hour)))
	assert.Equal(t, RoleSuperAdmin, store.Role())
	assert.Nil(t, store.TenantID())
}

func TestTokenStore_ConcurrentAccess(t *testing.T) {
	store := NewTokenStore(nil)
	token := signedToken(t, 7, RoleEmployee, nil, time.Now().Add(time.Hour))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				store.SetCredential(token)
			case 1:
				store.IsValid()
			case 2:
				store.Decode()
			case 3:
				store.ClearCredential()
			}
		}(i)
	}
	wg.Wait()
}
