package token

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/AhilyaKokare/visitor-pass-service/internal/role"
)

// Claims is the access token payload. TenantID is absent for super admins,
// who operate above any single tenant.
type Claims struct {
	UID      int64     `json:"uid"`
	Role     role.Role `json:"role"`
	TenantID *int64    `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the minimal account view a token is minted from. Keeping it
// local avoids a dependency on the user package.
type Identity struct {
	UserID   int64
	UniqueID string
	Role     role.Role
	TenantID *int64
}
