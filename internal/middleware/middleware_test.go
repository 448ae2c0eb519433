package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/config"
	"github.com/AhilyaKokare/visitor-pass-service/internal/role"
	"github.com/AhilyaKokare/visitor-pass-service/internal/token"
)

func testTokenService() token.Service {
	return token.NewService(zap.NewNop(), &config.JWTConfig{
		Secret:      "test-secret",
		AccessTTL:   time.Hour,
		JWTIssuer:   "visitor-pass-service",
		JWTAudience: "visitor-pass-app",
	})
}

func mintToken(t *testing.T, svc token.Service, rl role.Role, tenantID *int64) string {
	t.Helper()
	issued, err := svc.Issue(token.Identity{UserID: 9, UniqueID: "u-9", Role: rl, TenantID: tenantID})
	require.NoError(t, err)
	return issued.AccessToken
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	svc := testTokenService()
	handler := Authenticate(svc, zap.NewNop())(okHandler())

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token injects claims", func(t *testing.T) {
		var got *token.Claims
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = ClaimsFromContext(r.Context())
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, svc, role.Employee, nil))
		rec := httptest.NewRecorder()
		Authenticate(svc, zap.NewNop())(inner).ServeHTTP(rec, req)

		require.NotNil(t, got)
		assert.Equal(t, int64(9), got.UID)
		assert.Equal(t, role.Employee, got.Role)
	})
}

func TestRequireRoles(t *testing.T) {
	svc := testTokenService()

	serve := func(t *testing.T, rl role.Role, allowed ...role.Role) int {
		t.Helper()
		handler := Authenticate(svc, zap.NewNop())(RequireRoles(allowed...)(okHandler()))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, svc, rl, nil))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve(t, role.Approver, role.Approver, role.TenantAdmin))
	assert.Equal(t, http.StatusForbidden, serve(t, role.Employee, role.Approver, role.TenantAdmin))
	assert.Equal(t, http.StatusOK, serve(t, role.Security))

	t.Run("unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireRoles(role.Approver)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestTenantGuard(t *testing.T) {
	svc := testTokenService()

	serve := func(t *testing.T, rl role.Role, claimTenant *int64, urlTenant string) int {
		t.Helper()
		r := chi.NewRouter()
		r.Route("/tenants/{tenantID}", func(r chi.Router) {
			r.Use(Authenticate(svc, zap.NewNop()))
			r.Use(TenantGuard)
			r.Get("/passes", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		})

		req := httptest.NewRequest(http.MethodGet, "/tenants/"+urlTenant+"/passes", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, svc, rl, claimTenant))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	tenant5 := int64(5)
	assert.Equal(t, http.StatusOK, serve(t, role.Employee, &tenant5, "5"))
	assert.Equal(t, http.StatusForbidden, serve(t, role.Employee, &tenant5, "6"))
	assert.Equal(t, http.StatusForbidden, serve(t, role.Employee, nil, "5"))
	assert.Equal(t, http.StatusOK, serve(t, role.SuperAdmin, nil, "5"))
	assert.Equal(t, http.StatusBadRequest, serve(t, role.Employee, &tenant5, "abc"))
}

func TestRequestID(t *testing.T) {
	t.Run("generates one when absent", func(t *testing.T) {
		var got string
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = RequestIDFromContext(r.Context())
		})
		rec := httptest.NewRecorder()
		RequestID(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, got)
		assert.Equal(t, got, rec.Header().Get("X-Request-ID"))
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		var got string
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = RequestIDFromContext(r.Context())
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rec := httptest.NewRecorder()
		RequestID(inner).ServeHTTP(rec, req)

		assert.Equal(t, "req-123", got)
	})
}
