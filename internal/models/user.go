package models

import "time"

// Role determines what a user is allowed to do with expense records
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

var validRoles = map[Role]bool{
	RoleEmployee: true,
	RoleManager:  true,
	RoleAdmin:    true,
}

// IsValid returns true if the role is a known role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// CanReview returns true if the role carries approval authority
func (r Role) CanReview() bool {
	return r == RoleManager || r == RoleAdmin
}

// User is an authenticated principal in the system
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Department   string    `json:"department"`
	AvatarURL    string    `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasAnyRole returns true if the user's role is one of the given roles.
// A nil user never matches.
func (u *User) HasAnyRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}
