package domain

import (
	"strings"
	"time"
)

// Role is the closed set of roles a user can hold. Authorization decisions
// compare against these constants only; free-form role strings are rejected
// at every boundary.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleBusiness Role = "business"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleBusiness, RoleAdmin:
		return true
	}
	return false
}

// User models a registered account. PasswordHash never crosses the JSON
// boundary; the store is the only collaborator that sees it.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	Active        bool      `json:"is_active"`
	EmailVerified bool      `json:"is_email_verified"`
	Profile       Profile   `json:"profile"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LastLogin     time.Time `json:"last_login,omitempty"`
}

// Profile holds optional contact details attached to a user.
type Profile struct {
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// NormalizeEmail lowercases and trims an email address so that uniqueness
// checks and lookups use a canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
