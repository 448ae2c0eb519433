package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AhilyaKokare/visitor-pass-service/internal/httpx"
	"github.com/AhilyaKokare/visitor-pass-service/internal/role"
)

// RequireRoles admits only sessions whose role is in the allowed set.
// An empty set means any authenticated role. Must run after Authenticate.
func RequireRoles(roles ...role.Role) func(http.Handler) http.Handler {
	allowed := make(map[role.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}
			if len(allowed) > 0 {
				if _, ok := allowed[claims.Role]; !ok {
					forbidden(w, "role not permitted for this resource")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TenantGuard rejects requests whose URL tenant does not match the tenant in
// the caller's claims. Super admins carry no tenant and are exempt.
func TenantGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			unauthorized(w, "missing bearer token")
			return
		}

		tenantID, err := strconv.ParseInt(chi.URLParam(r, "tenantID"), 10, 64)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
				Code:    httpx.ErrInvalidJSON,
				Message: "invalid tenant id",
			})
			return
		}

		if claims.Role != role.SuperAdmin {
			if claims.TenantID == nil || *claims.TenantID != tenantID {
				forbidden(w, "you do not have permission to access resources for this location")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func forbidden(w http.ResponseWriter, msg string) {
	httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse[any]{
		Code:    httpx.ErrForbidden,
		Message: msg,
	})
}
