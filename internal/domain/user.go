package domain

import "time"

type StaffRole string

const (
	StaffRoleAdmin StaffRole = "ADMIN"
	StaffRoleStaff StaffRole = "STAFF"
)

// StaffUser is a terminal operator. Passwords are stored as bcrypt hashes.
type StaffUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         StaffRole `json:"role"`
	CreatedOn    time.Time `json:"created_on"`
}
