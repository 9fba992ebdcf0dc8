package ports

import (
	"context"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

// RelationalDB is the transactional store holding identities, revisions and
// snapshots. Find methods return nil, nil when the row does not exist.
type RelationalDB interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// Entity operations

	// FindEntity finds an entity by its BBID.
	FindEntity(ctx context.Context, bbid string) (*entities.Entity, error)

	// ListEntities lists entities by most recent modification first.
	// An empty kind lists every kind.
	ListEntities(ctx context.Context, kind entities.EntityKind, limit, offset int) ([]entities.Entity, error)

	// CountEntities returns the number of entities of a kind (all when empty).
	CountEntities(ctx context.Context, kind entities.EntityKind) (int, error)

	// FindEntityData loads a snapshot with its aliases, identifiers,
	// annotation and disambiguation.
	FindEntityData(ctx context.Context, id int64) (*entities.EntityData, error)

	// CommitEntity persists a new revision of an entity as one unit. New child
	// rows (ID zero) get their IDs assigned in place. Returns ErrConflict when
	// the master revision is no longer ExpectedMaster.
	CommitEntity(ctx context.Context, commit *EntityCommit) (*entities.Revision, error)

	// Relationship operations

	// FindRelationship finds a relationship by its ID.
	FindRelationship(ctx context.Context, id string) (*entities.Relationship, error)

	// FindRelationshipData loads a relationship snapshot.
	FindRelationshipData(ctx context.Context, id int64) (*entities.RelationshipData, error)

	// ListRelationshipsByEntity lists relationships whose current snapshot
	// involves the entity.
	ListRelationshipsByEntity(ctx context.Context, bbid string, limit, offset int) ([]entities.Relationship, error)

	// CommitRelationship is the relationship counterpart of CommitEntity.
	CommitRelationship(ctx context.Context, commit *RelationshipCommit) (*entities.Revision, error)

	// Revision operations

	// FindRevision finds a revision by ID.
	FindRevision(ctx context.Context, id int64) (*entities.Revision, error)

	// FindChildRevisions finds the revisions whose parent is id, oldest first.
	FindChildRevisions(ctx context.Context, id int64) ([]entities.Revision, error)

	// ListRevisions lists revisions newest first.
	ListRevisions(ctx context.Context, filter RevisionFilter) ([]entities.Revision, error)

	// FindEditor finds an editor and its counters.
	FindEditor(ctx context.Context, id int64) (*entities.Editor, error)

	// ListEditors lists editors in registration order.
	ListEditors(ctx context.Context, limit, offset int) ([]entities.Editor, error)

	// SaveEditor registers an editor (a zero ID assigns one) or updates the
	// profile of an existing one, leaving its counters untouched.
	SaveEditor(ctx context.Context, editor *entities.Editor) error

	// Type codes

	// SaveTypeCode saves or relabels a type code.
	SaveTypeCode(ctx context.Context, code *entities.TypeCode) error

	// ListTypeCodes lists type codes of a category (all when empty).
	ListTypeCodes(ctx context.Context, category entities.TypeCategory) ([]entities.TypeCode, error)
}

// EntityCommit describes one entity revision to persist.
type EntityCommit struct {
	// Entity carries the BBID and kind. LastUpdated and MasterRevisionID are
	// set by the store.
	Entity *entities.Entity
	// Create inserts the entity row instead of swapping its master pointer.
	Create bool
	// ExpectedMaster is the master revision the writer read.
	ExpectedMaster *int64
	// Data is nil for a deletion.
	Data     *entities.EntityData
	EditorID int64
	Note     string
}

// RelationshipCommit describes one relationship revision to persist.
type RelationshipCommit struct {
	Relationship   *entities.Relationship
	Create         bool
	ExpectedMaster *int64
	Data           *entities.RelationshipData
	EditorID       int64
	Note           string
}

// RevisionFilter narrows ListRevisions. Zero values mean no filter.
type RevisionFilter struct {
	EntityBBID     string
	RelationshipID string
	EditorID       int64
	Kind           entities.RevisionKind
	Limit          int
	Offset         int
}
