// Package role defines the closed set of account roles. It sits below the
// user, token, and middleware packages so all three can share the type.
package role

type Role string

const (
	SuperAdmin  Role = "super_admin"
	TenantAdmin Role = "tenant_admin"
	Employee    Role = "employee"
	Approver    Role = "approver"
	Security    Role = "security"
)

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case SuperAdmin, TenantAdmin, Employee, Approver, Security:
		return true
	}
	return false
}
