package models

import (
	"time"

	"github.com/google/uuid"
)

// Session lifecycle statuses.
const (
	SessionPlanned    = "planned"
	SessionInProgress = "in_progress"
	SessionDone       = "done"
)

// Session is a scheduled therapy session for a client.
type Session struct {
	ID          uuid.UUID `db:"id"           json:"id"`
	ClientID    uuid.UUID `db:"client_id"    json:"client_id"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
	DurationMin int       `db:"duration_min" json:"duration_min"`
	Status      string    `db:"status"       json:"status"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}
