package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

// RevisionKind tells which kind of target a revision edits.
type RevisionKind string

const (
	RevisionEntity       RevisionKind = "entity"
	RevisionRelationship RevisionKind = "relationship"
)

// Revision is one immutable node in the edit history of an entity or a
// relationship. IDs are globally increasing across all targets.
type Revision struct {
	ID        int64
	ParentID  *int64
	EditorID  int64
	Note      string
	CreatedAt time.Time
	Target    RevisionTarget
}

// RevisionTarget is either an EntityTarget or a RelationshipTarget.
type RevisionTarget interface {
	Kind() RevisionKind
	// TargetID is the BBID of the entity or the relationship ID.
	TargetID() string
	// SnapshotID is nil when the revision deletes its target.
	SnapshotID() *int64
}

// EntityTarget links a revision to an entity snapshot.
type EntityTarget struct {
	BBID   string
	DataID *int64
}

func (t EntityTarget) Kind() RevisionKind { return RevisionEntity }
func (t EntityTarget) TargetID() string   { return t.BBID }
func (t EntityTarget) SnapshotID() *int64 { return t.DataID }

// RelationshipTarget links a revision to a relationship snapshot.
type RelationshipTarget struct {
	RelationshipID string
	DataID         *int64
}

func (t RelationshipTarget) Kind() RevisionKind { return RevisionRelationship }
func (t RelationshipTarget) TargetID() string   { return t.RelationshipID }
func (t RelationshipTarget) SnapshotID() *int64 { return t.DataID }

// IsDeletion reports whether the revision removes its target's data.
func (r *Revision) IsDeletion() bool {
	return r.Target == nil || r.Target.SnapshotID() == nil
}

type revisionJSON struct {
	ID                 int64        `json:"revision_id"`
	ParentID           *int64       `json:"parent_id"`
	EditorID           int64        `json:"editor_id"`
	Note               string       `json:"note"`
	CreatedAt          time.Time    `json:"created_at"`
	Type               RevisionKind `json:"type"`
	EntityBBID         string       `json:"entity_bbid,omitempty"`
	EntityDataID       *int64       `json:"entity_data_id,omitempty"`
	RelationshipID     string       `json:"relationship_id,omitempty"`
	RelationshipDataID *int64       `json:"relationship_data_id,omitempty"`
}

// MarshalJSON flattens the target into the revision object.
func (r Revision) MarshalJSON() ([]byte, error) {
	out := revisionJSON{
		ID:        r.ID,
		ParentID:  r.ParentID,
		EditorID:  r.EditorID,
		Note:      r.Note,
		CreatedAt: r.CreatedAt,
	}
	switch t := r.Target.(type) {
	case EntityTarget:
		out.Type = RevisionEntity
		out.EntityBBID = t.BBID
		out.EntityDataID = t.DataID
	case RelationshipTarget:
		out.Type = RevisionRelationship
		out.RelationshipID = t.RelationshipID
		out.RelationshipDataID = t.DataID
	default:
		return nil, fmt.Errorf("revision %d has no target", r.ID)
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the target variant from the "type" discriminator.
func (r *Revision) UnmarshalJSON(b []byte) error {
	var aux revisionJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = Revision{
		ID:        aux.ID,
		ParentID:  aux.ParentID,
		EditorID:  aux.EditorID,
		Note:      aux.Note,
		CreatedAt: aux.CreatedAt,
	}
	switch aux.Type {
	case RevisionEntity:
		r.Target = EntityTarget{BBID: aux.EntityBBID, DataID: aux.EntityDataID}
	case RevisionRelationship:
		r.Target = RelationshipTarget{RelationshipID: aux.RelationshipID, DataID: aux.RelationshipDataID}
	default:
		return fmt.Errorf("unknown revision type %q", aux.Type)
	}
	return nil
}
