package pass

import "time"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusApproved   Status = "APPROVED"
	StatusRejected   Status = "REJECTED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusExpired    Status = "EXPIRED"
)

type VisitorPass struct {
	ID              int64     `json:"id" db:"id"`
	TenantID        int64     `json:"tenant_id" db:"tenant_id"`
	VisitorName     string    `json:"visitor_name" db:"visitor_name"`
	VisitorEmail    string    `json:"visitor_email" db:"visitor_email"`
	VisitorPhone    string    `json:"visitor_phone" db:"visitor_phone"`
	Purpose         string    `json:"purpose" db:"purpose"`
	VisitAt         time.Time `json:"visit_at" db:"visit_at"`
	PassCode        string    `json:"pass_code" db:"pass_code"`
	Status          Status    `json:"status" db:"status"`
	CreatedByID     int64     `json:"-" db:"created_by"`
	CreatedByName   string    `json:"created_by_name"`
	CreatedByEmail  string    `json:"-"`
	ApprovedByID    *int64    `json:"-" db:"approved_by"`
	ApprovedByName  string    `json:"approved_by_name,omitempty"`
	RejectionReason string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Page is a limit/offset window over a pass listing.
type Page struct {
	Items      []VisitorPass `json:"items"`
	TotalCount int64         `json:"total_count"`
	Offset     int           `json:"offset"`
	Limit      int           `json:"limit"`
}

// TodayVisitor is the security desk's view of one expected visitor.
type TodayVisitor struct {
	PassID        int64     `json:"pass_id"`
	VisitorName   string    `json:"visitor_name"`
	PassCode      string    `json:"pass_code"`
	Status        Status    `json:"status"`
	VisitAt       time.Time `json:"visit_at"`
	CreatedByName string    `json:"created_by_name"`
}
