package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Media attachment types.
const (
	MediaAudio = "audio"
	MediaVideo = "video"
	MediaImage = "image"
)

// Media is a file attached to a session, referenced by URL. Transcriptions
// are stored as opaque JSON produced by an external pipeline.
type Media struct {
	ID            uuid.UUID       `db:"id"            json:"id"`
	SessionID     uuid.UUID       `db:"session_id"    json:"session_id"`
	Type          string          `db:"type"          json:"type"`
	URL           string          `db:"url"           json:"url"`
	Transcription json.RawMessage `db:"transcription" json:"transcription,omitempty"`
	CreatedAt     time.Time       `db:"created_at"    json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"    json:"updated_at"`
}

// ValidMediaType reports whether t is a known media type.
func ValidMediaType(t string) bool {
	return t == MediaAudio || t == MediaVideo || t == MediaImage
}
