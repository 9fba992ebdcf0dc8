package entities

import (
	"encoding/json"
	"time"
)

// EntityState is an entity resolved to one of its revisions.
// Data is nil when the revision deleted the entity.
type EntityState struct {
	Entity   Entity      `json:"entity"`
	Revision Revision    `json:"revision"`
	Data     *EntityData `json:"data"`
}

// IsDeleted reports whether the resolved revision deleted the entity.
func (s *EntityState) IsDeleted() bool {
	return s.Data == nil
}

// RelationshipState is a relationship resolved to one of its revisions.
type RelationshipState struct {
	Relationship Relationship      `json:"relationship"`
	Revision     Revision          `json:"revision"`
	Data         *RelationshipData `json:"data"`
}

// SearchDocument is what gets pushed to the search index for an entity.
type SearchDocument struct {
	BBID           string
	Kind           EntityKind
	Name           string
	Disambiguation string
	Text           string
	RevisionID     int64
	Embedding      []float32
}

// SearchHit is one search result.
type SearchHit struct {
	BBID  string     `json:"bbid"`
	Kind  EntityKind `json:"kind"`
	Name  string     `json:"name"`
	Score float32    `json:"score"`
}

// Event types published after a commit.
const (
	EventEntityCreated       = "entity.created"
	EventEntityUpdated       = "entity.updated"
	EventEntityDeleted       = "entity.deleted"
	EventRelationshipCreated = "relationship.created"
	EventRelationshipUpdated = "relationship.updated"
	EventRelationshipDeleted = "relationship.deleted"
)

// RevisionEvent announces a committed revision.
type RevisionEvent struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	TargetID      string          `json:"target_id"`
	EntityKind    EntityKind      `json:"entity_kind,omitempty"`
	RevisionID    int64           `json:"revision_id"`
	ParentID      *int64          `json:"parent_id"`
	EditorID      int64           `json:"editor_id"`
	FieldsChanged []string        `json:"fields_changed"`
	Patch         json.RawMessage `json:"patch,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
