package models

import "time"

// Operator roles
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// Operator represents an admin or manager account acting on creators
type Operator struct {
	ID            int64
	Email         string
	PasswordHash  string
	Name          string
	Role          string
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsAdmin reports whether the operator has the admin role
func (o *Operator) IsAdmin() bool {
	return o.Role == RoleAdmin
}

// Session represents an authenticated operator session
type Session struct {
	ID         string
	OperatorID int64
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
