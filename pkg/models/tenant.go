package models

import (
	"time"

	"github.com/google/uuid"
)

// Plans a tenant can be on.
const (
	PlanFree = "free"
	PlanPro  = "pro"
	PlanOrg  = "org"
)

// Tenant represents a therapy practice. Every other entity belongs to a tenant.
type Tenant struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Plan      string    `db:"plan"       json:"plan"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ValidPlan reports whether p is a known tenant plan.
func ValidPlan(p string) bool {
	return p == PlanFree || p == PlanPro || p == PlanOrg
}
