package events

import "time"

// Routing keys on the service exchange. The notification service binds
// queues to these to fan out emails.
const (
	RoutingKeyPassCreated   = "pass.event.created"
	RoutingKeyPassApproved  = "pass.event.approved"
	RoutingKeyPassRejected  = "pass.event.rejected"
	RoutingKeyPassExpired   = "pass.event.expired"
	RoutingKeyUserCreated   = "user.event.created"
	RoutingKeyPasswordReset = "password.reset"
)

type PassCreated struct {
	PassID       int64     `json:"pass_id"`
	TenantID     int64     `json:"tenant_id"`
	VisitorName  string    `json:"visitor_name"`
	CreatorEmail string    `json:"creator_email"`
	VisitAt      time.Time `json:"visit_at"`
}

type PassApproved struct {
	PassID       int64     `json:"pass_id"`
	TenantID     int64     `json:"tenant_id"`
	VisitorName  string    `json:"visitor_name"`
	VisitorEmail string    `json:"visitor_email"`
	CreatorEmail string    `json:"creator_email"`
	PassCode     string    `json:"pass_code"`
	VisitAt      time.Time `json:"visit_at"`
}

type PassRejected struct {
	PassID       int64  `json:"pass_id"`
	VisitorName  string `json:"visitor_name"`
	CreatorEmail string `json:"creator_email"`
	Reason       string `json:"reason"`
}

type PassExpired struct {
	PassID           int64     `json:"pass_id"`
	TenantID         int64     `json:"tenant_id"`
	VisitorName      string    `json:"visitor_name"`
	VisitAt          time.Time `json:"visit_at"`
	CreatorEmail     string    `json:"creator_email"`
	TenantAdminEmail string    `json:"tenant_admin_email,omitempty"`
}

type UserCreated struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	TenantName string `json:"tenant_name"`
	LoginURL   string `json:"login_url"`
}

type PasswordResetRequested struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	ResetURL   string `json:"reset_url"`
	TenantName string `json:"tenant_name"`
}
