package tenant

import "time"

type Tenant struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	LocationDetails string    `json:"location_details" db:"location_details"`
	CreatedBy       string    `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Info is a tenant with its admin summary, as shown on the super admin board.
type Info struct {
	TenantID        int64     `json:"tenant_id"`
	TenantName      string    `json:"tenant_name"`
	LocationDetails string    `json:"location_details"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	AdminName       string    `json:"admin_name"`
	AdminEmail      string    `json:"admin_email"`
	AdminContact    string    `json:"admin_contact"`
	AdminIsActive   bool      `json:"admin_is_active"`
}
