package models

import (
	"time"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent  UserRole = "student"
	RoleClassRep UserRole = "class_representative"
	RoleAdmin    UserRole = "admin"
)

// IsPrivileged reports whether the role belongs to the privileged tier that
// may create course servers. class_representative and admin are treated as
// the same tier.
func (r UserRole) IsPrivileged() bool {
	return r == RoleClassRep || r == RoleAdmin
}

// User is owned by the identity provider; the membership service only reads
// it. Role is assigned at registration and never mutated here.
type User struct {
	ID       string   `json:"id"`
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`

	// Profile info
	AvatarURL *string `json:"avatar_url"`

	// Status
	EmailVerified bool `json:"email_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
