package models

import "time"

// RoleKind represents the access-control role attached to a principal.
type RoleKind string

const (
	RoleAdmin      RoleKind = "Admin"
	RoleInstructor RoleKind = "Instructor"
	RoleStudent    RoleKind = "Student"
)

// AccountStatus tracks the soft lifecycle of a principal. Accounts are never
// physically deleted; they move between these states.
type AccountStatus string

const (
	StatusInactive  AccountStatus = "inactive"
	StatusActive    AccountStatus = "active"
	StatusGraduated AccountStatus = "graduated"
	StatusSuspended AccountStatus = "suspended"
)

// Principal represents an authenticated identity stored in the principals table.
// MajorID and LevelID are nil for staff and for students that have not been
// classified yet.
type Principal struct {
	ID           string        `db:"id" json:"id"`
	AcademicID   string        `db:"academic_id" json:"academic_id"`
	IDCardNumber string        `db:"id_card_number" json:"id_card_number"`
	FullName     string        `db:"full_name" json:"full_name"`
	Email        *string       `db:"email" json:"email,omitempty"`
	PasswordHash string        `db:"password_hash" json:"-"`
	Role         RoleKind      `db:"role" json:"role"`
	MajorID      *string       `db:"major_id" json:"major_id,omitempty"`
	LevelID      *string       `db:"level_id" json:"level_id,omitempty"`
	Status       AccountStatus `db:"account_status" json:"account_status"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// PrincipalFilter captures filtering criteria for listing principals.
type PrincipalFilter struct {
	Role      RoleKind
	Status    AccountStatus
	MajorID   string
	LevelID   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// PrincipalDetail contains a principal with resolved classification names.
type PrincipalDetail struct {
	Principal
	MajorName   *string `db:"major_name" json:"major_name,omitempty"`
	LevelName   *string `db:"level_name" json:"level_name,omitempty"`
	LevelNumber *int    `db:"level_number" json:"level_number,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
