package dashboard

import "time"

// UserStats summarizes the passes created by one user.
type UserStats struct {
	TotalPasses    int64 `json:"total_passes"`
	PendingPasses  int64 `json:"pending_passes"`
	ApprovedPasses int64 `json:"approved_passes"`
	RejectedPasses int64 `json:"rejected_passes"`
}

// TenantStats is the tenant admin's overview of one location.
type TenantStats struct {
	TotalUsers     int64 `json:"total_users"`
	ActiveUsers    int64 `json:"active_users"`
	TotalPasses    int64 `json:"total_passes"`
	PendingPasses  int64 `json:"pending_passes"`
	ApprovedPasses int64 `json:"approved_passes"`
	CheckedInToday int64 `json:"checked_in_today"`
}

// GlobalStats aggregates across every tenant for the super admin board.
type GlobalStats struct {
	TotalTenants    int64 `json:"total_tenants"`
	TotalUsers      int64 `json:"total_users"`
	TotalPasses     int64 `json:"total_passes"`
	PassesToday     int64 `json:"passes_today"`
	PendingApproval int64 `json:"pending_approval"`
}

type TenantActivity struct {
	TenantID   int64     `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	UserCount  int64     `json:"user_count"`
	PassCount  int64     `json:"pass_count"`
	LastPassAt time.Time `json:"last_pass_at"`
	CreatedAt  time.Time `json:"created_at"`
}
