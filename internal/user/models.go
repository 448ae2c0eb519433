package user

import (
	"time"

	"github.com/AhilyaKokare/visitor-pass-service/internal/role"
)

type User struct {
	ID          int64      `json:"id" db:"id"`
	UniqueID    string     `json:"unique_id" db:"unique_id"`
	TenantID    *int64     `json:"tenant_id,omitempty" db:"tenant_id"`
	Name        string     `json:"name" db:"name"`
	Email       string     `json:"email" db:"email"`
	Password    string     `json:"-" db:"password"`
	Contact     string     `json:"contact" db:"contact"`
	Role        role.Role  `json:"role" db:"role"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	JoiningDate *time.Time `json:"joining_date,omitempty" db:"joining_date"`
	Address     string     `json:"address" db:"address"`
	Gender      string     `json:"gender" db:"gender"`
	Department  string     `json:"department" db:"department"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
