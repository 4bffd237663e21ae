package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a markdown note written by a user, optionally attached to a session.
type Note struct {
	ID        uuid.UUID  `db:"id"         json:"id"`
	SessionID *uuid.UUID `db:"session_id" json:"session_id,omitempty"`
	AuthorID  uuid.UUID  `db:"author_id"  json:"author_id"`
	BodyMD    string     `db:"body_md"    json:"body_md"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
