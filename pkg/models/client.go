package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a person receiving therapy at a tenant's practice.
type Client struct {
	ID        uuid.UUID  `db:"id"         json:"id"`
	TenantID  uuid.UUID  `db:"tenant_id"  json:"tenant_id"`
	FullName  string     `db:"full_name"  json:"full_name"`
	Birthday  *time.Time `db:"birthday"   json:"birthday,omitempty"`
	Tags      []string   `db:"tags"       json:"tags"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
