package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is a member of the closed role set.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// RoleAllowed reports whether role is one of the allowed roles.
func RoleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
