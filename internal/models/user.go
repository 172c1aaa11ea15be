package models

import "time"

// Role is the coarse authorization level carried by a user and its token.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is a stored account. The hash never leaves the process.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // don’t expose hash
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the decoded claim of a verified bearer token.
// It lives only for the duration of one request.
type Identity struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the identity carries the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// UserInput carries the writable fields of create and update.
type UserInput struct {
	Name     string
	Email    string
	Password string
}

// SeedAccount is a fixed account provisioned by the seed command.
type SeedAccount struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Role     Role   `mapstructure:"role"`
}
