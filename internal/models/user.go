package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin       UserRole = "SuperAdmin"
	RoleAdmin            UserRole = "Admin"
	RoleDigitalMarketing UserRole = "DigitalMarketing"
	RoleAdmission        UserRole = "Admission"
	RoleAccountant       UserRole = "Accountant"
	RoleRecruitment      UserRole = "Recruitment"
	RoleMotionGraphics   UserRole = "MotionGraphics"
)

// Valid reports whether the role belongs to the closed role set.
func (r UserRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleDigitalMarketing, RoleAdmission, RoleAccountant, RoleRecruitment, RoleMotionGraphics:
		return true
	}
	return false
}

// IsManagement reports whether the role may act on any lead regardless of ownership.
func (r UserRole) IsManagement() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserRef is the display-safe identity projection embedded in lead and fee views.
type UserRef struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
