package model

import "time"

// Roles carried in the users.role column and in the token's role claim.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents a row of the `users` table. Email is stored trimmed and
// lower-cased so uniqueness is case-insensitive.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PhoneNumber  string    // users.phone_number
	PasswordHash string    // users.password_hash (bcrypt)
	Role         string    // users.role: USER | ADMIN
	CreatedAt    time.Time // users.created_at
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// NormalizeRole maps empty or unknown input to USER.
func NormalizeRole(role string) string {
	if role == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}
