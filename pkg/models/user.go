package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles a user can hold within a tenant.
const (
	RoleTherapist = "therapist"
	RoleAssistant = "assistant"
	RoleOwner     = "owner"
)

// User is a staff member of a tenant. Passwords are stored as bcrypt hashes;
// the raw password never leaves the auth service.
type User struct {
	ID                uuid.UUID `db:"id"                 json:"id"`
	TenantID          uuid.UUID `db:"tenant_id"          json:"tenant_id"`
	Email             string    `db:"email"              json:"email"`
	PasswordHash      string    `db:"password_hash"      json:"-"`
	Role              string    `db:"role"               json:"role"`
	Locale            string    `db:"locale"             json:"locale"`
	IsVerified        bool      `db:"is_verified"        json:"is_verified"`
	VerificationToken *string   `db:"verification_token" json:"-"`
	CreatedAt         time.Time `db:"created_at"         json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"         json:"updated_at"`
}

// ValidRole reports whether r is a known user role.
func ValidRole(r string) bool {
	return r == RoleTherapist || r == RoleAssistant || r == RoleOwner
}
