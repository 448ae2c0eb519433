package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoutes() map[string][]Role {
	return map[string][]Role{
		"home":      {},
		"passes":    {RoleEmployee, RoleTenantAdmin},
		"approvals": {RoleApprover, RoleTenantAdmin},
		"security":  {RoleSecurity, RoleTenantAdmin},
		"admin":     {RoleTenantAdmin},
	}
}

func TestNewRouteGuard_RejectsUnknownRole(t *testing.T) {
	store := NewTokenStore(nil)

	_, err := NewRouteGuard(store, map[string][]Role{
		"passes": {Role("emplyee")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "emplyee")
}

func TestNewRouteGuard_RejectsEmptyRouteName(t *testing.T) {
	store := NewTokenStore(nil)

	_, err := NewRouteGuard(store, map[string][]Role{"": {RoleEmployee}})
	require.Error(t, err)
}

func TestNewRouteGuard_RejectsNilStore(t *testing.T) {
	_, err := NewRouteGuard(nil, testRoutes())
	require.Error(t, err)
}

func TestRouteGuard_NoSessionDeniesToLogin(t *testing.T) {
	store := NewTokenStore(nil)
	guard, err := NewRouteGuard(store, testRoutes())
	require.NoError(t, err)

	assert.Equal(t, DenyToLogin, guard.Authorize("passes"))
	assert.Equal(t, DenyToLogin, guard.Authorize("home"))
}

func TestRouteGuard_ExpiredSessionDeniesToLogin(t *testing.T) {
	store := NewTokenStore(nil)
	store.SetCredential(signedToken(t, 7, RoleApprover, nil, time.Now().Add(-time.Minute)))
	guard, err := NewRouteGuard(store, testRoutes())
	require.NoError(t, err)

	assert.Equal(t, DenyToLogin, guard.Authorize("approvals"))
}

func TestRouteGuard_RoleScenarios(t *testing.T) {
	tests := []struct {
		name  string
		role  Role
		route string
		want  Decision
	}{
		{"approver opens approvals", RoleApprover, "approvals", Allow},
		{"approver denied admin", RoleApprover, "admin", DenyToDefault},
		{"employee opens passes", RoleEmployee, "passes", Allow},
		{"employee denied security", RoleEmployee, "security", DenyToDefault},
		{"tenant admin opens admin", RoleTenantAdmin, "admin", Allow},
		{"tenant admin opens approvals", RoleTenantAdmin, "approvals", Allow},
		{"security opens security", RoleSecurity, "security", Allow},
		{"any role opens home", RoleSecurity, "home", Allow},
		{"unlisted route denied", RoleTenantAdmin, "billing", DenyToDefault},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := NewTokenStore(nil)
			store.SetCredential(signedToken(t, 7, tc.role, nil, time.Now().Add(time.Hour)))
			guard, err := NewRouteGuard(store, testRoutes())
			require.NoError(t, err)

			assert.Equal(t, tc.want, guard.Authorize(tc.route))
		})
	}
}
