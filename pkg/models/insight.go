package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Insight kinds.
const (
	InsightSummary = "summary"
	InsightTrigger = "trigger"
	InsightTodo    = "todo"
)

// Insight is an AI-generated artifact derived from a session. The embedding
// is optional and only present for insights indexed for similarity search.
type Insight struct {
	ID        uuid.UUID       `db:"id"         json:"id"`
	SessionID uuid.UUID       `db:"session_id" json:"session_id"`
	Kind      string          `db:"kind"       json:"kind"`
	Content   json.RawMessage `db:"content"    json:"content"`
	Embedding []float32       `db:"embedding"  json:"embedding,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// ValidInsightKind reports whether k is a known insight kind.
func ValidInsightKind(k string) bool {
	return k == InsightSummary || k == InsightTrigger || k == InsightTodo
}
