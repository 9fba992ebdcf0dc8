// Package entities holds the domain model of the bibliographic database.
package entities

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the stable identity of a bibliographic subject. The row is never
// removed; deleting an entity points its master revision at a revision with
// no data.
type Entity struct {
	BBID             string     `json:"bbid"`
	Kind             EntityKind `json:"kind"`
	MasterRevisionID *int64     `json:"master_revision_id"`
	LastUpdated      time.Time  `json:"last_updated"`
}

// Relationship is the stable identity of an edge between entities.
type Relationship struct {
	ID               string    `json:"id"`
	MasterRevisionID *int64    `json:"master_revision_id"`
	LastUpdated      time.Time `json:"last_updated"`
}

// IsValidBBID reports whether s is a well-formed identifier.
func IsValidBBID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// NewBBID returns a fresh identifier for an entity or relationship.
func NewBBID() string {
	return uuid.New().String()
}
