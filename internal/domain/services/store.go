package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

// EntityStore resolves entities and relationships to their revisions and
// snapshots.
type EntityStore struct {
	relationalDB ports.RelationalDB
	cache        ports.StateCache
	logger       *slog.Logger
}

// NewEntityStore creates a new EntityStore. cache may be nil.
func NewEntityStore(relationalDB ports.RelationalDB, cache ports.StateCache, logger *slog.Logger) *EntityStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &EntityStore{
		relationalDB: relationalDB,
		cache:        cache,
		logger:       logger,
	}
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %q: %w", what, id, entities.ErrNotFound)
}

// GetCurrentState resolves an entity to its master revision and snapshot.
// A deleted entity resolves with a nil Data.
func (s *EntityStore) GetCurrentState(ctx context.Context, bbid string) (*entities.EntityState, error) {
	if !entities.IsValidBBID(bbid) {
		return nil, notFound("entity", bbid)
	}

	if s.cache != nil {
		state, err := s.cache.GetState(ctx, bbid)
		if err != nil {
			s.logger.Warn("reading state cache", "bbid", bbid, "error", err)
		} else if state != nil && s.isCurrent(ctx, state) {
			return state, nil
		}
	}

	state, err := s.loadCurrent(ctx, bbid)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetState(ctx, state); err != nil {
			s.logger.Warn("writing state cache", "bbid", bbid, "error", err)
		}
	}
	return state, nil
}

// isCurrent reports whether a cached state still matches the master revision.
// The cached state is trusted when the database cannot be reached.
func (s *EntityStore) isCurrent(ctx context.Context, state *entities.EntityState) bool {
	entity, err := s.relationalDB.FindEntity(ctx, state.Entity.BBID)
	if err != nil {
		s.logger.Warn("checking cached state", "bbid", state.Entity.BBID, "error", err)
		return true
	}
	if entity == nil || entity.MasterRevisionID == nil || *entity.MasterRevisionID != state.Revision.ID {
		s.logger.Debug("stale cached state", "bbid", state.Entity.BBID, "revision_id", state.Revision.ID)
		return false
	}
	return true
}

// loadCurrent reads the current state from the database, bypassing the cache.
func (s *EntityStore) loadCurrent(ctx context.Context, bbid string) (*entities.EntityState, error) {
	entity, err := s.relationalDB.FindEntity(ctx, bbid)
	if err != nil {
		return nil, fmt.Errorf("finding entity: %w", err)
	}
	if entity == nil || entity.MasterRevisionID == nil {
		return nil, notFound("entity", bbid)
	}

	rev, err := s.relationalDB.FindRevision(ctx, *entity.MasterRevisionID)
	if err != nil {
		return nil, fmt.Errorf("finding master revision: %w", err)
	}
	if rev == nil {
		return nil, fmt.Errorf("entity %s points at missing revision %d", bbid, *entity.MasterRevisionID)
	}
	return s.resolve(ctx, entity, rev)
}

// GetStateAt resolves an entity at a historical revision. The revision must
// belong to the entity.
func (s *EntityStore) GetStateAt(ctx context.Context, bbid string, revisionID int64) (*entities.EntityState, error) {
	if !entities.IsValidBBID(bbid) {
		return nil, notFound("entity", bbid)
	}

	entity, err := s.relationalDB.FindEntity(ctx, bbid)
	if err != nil {
		return nil, fmt.Errorf("finding entity: %w", err)
	}
	if entity == nil {
		return nil, notFound("entity", bbid)
	}

	rev, err := s.relationalDB.FindRevision(ctx, revisionID)
	if err != nil {
		return nil, fmt.Errorf("finding revision: %w", err)
	}
	if rev == nil || rev.Target.Kind() != entities.RevisionEntity || rev.Target.TargetID() != bbid {
		return nil, notFound("revision", fmt.Sprint(revisionID))
	}
	return s.resolve(ctx, entity, rev)
}

func (s *EntityStore) resolve(ctx context.Context, entity *entities.Entity, rev *entities.Revision) (*entities.EntityState, error) {
	state := &entities.EntityState{Entity: *entity, Revision: *rev}
	if rev.IsDeletion() {
		return state, nil
	}
	data, err := s.relationalDB.FindEntityData(ctx, *rev.Target.SnapshotID())
	if err != nil {
		return nil, fmt.Errorf("loading entity data: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("revision %d points at missing entity data %d", rev.ID, *rev.Target.SnapshotID())
	}
	state.Data = data
	return state, nil
}

// ListCurrent lists entities most recently modified first. Pagination is by
// offset and is not stable across concurrent writes.
func (s *EntityStore) ListCurrent(ctx context.Context, kind entities.EntityKind, offset, limit int) ([]entities.Entity, error) {
	if kind != "" && !kind.IsValid() {
		return nil, &entities.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown entity kind %q", kind)}
	}
	list, err := s.relationalDB.ListEntities(ctx, kind, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	return list, nil
}

// CountCurrent returns the number of entities of a kind (all when empty).
func (s *EntityStore) CountCurrent(ctx context.Context, kind entities.EntityKind) (int, error) {
	count, err := s.relationalDB.CountEntities(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	return count, nil
}

// GetRelationship resolves a relationship to its master revision.
func (s *EntityStore) GetRelationship(ctx context.Context, id string) (*entities.RelationshipState, error) {
	if !entities.IsValidBBID(id) {
		return nil, notFound("relationship", id)
	}
	rel, err := s.relationalDB.FindRelationship(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding relationship: %w", err)
	}
	if rel == nil || rel.MasterRevisionID == nil {
		return nil, notFound("relationship", id)
	}
	rev, err := s.relationalDB.FindRevision(ctx, *rel.MasterRevisionID)
	if err != nil {
		return nil, fmt.Errorf("finding master revision: %w", err)
	}
	if rev == nil {
		return nil, fmt.Errorf("relationship %s points at missing revision %d", id, *rel.MasterRevisionID)
	}

	state := &entities.RelationshipState{Relationship: *rel, Revision: *rev}
	if rev.IsDeletion() {
		return state, nil
	}
	data, err := s.relationalDB.FindRelationshipData(ctx, *rev.Target.SnapshotID())
	if err != nil {
		return nil, fmt.Errorf("loading relationship data: %w", err)
	}
	state.Data = data
	return state, nil
}

// ListRelationships returns the live relationships an entity takes part in.
func (s *EntityStore) ListRelationships(ctx context.Context, bbid string, offset, limit int) ([]entities.RelationshipState, error) {
	if !entities.IsValidBBID(bbid) {
		return nil, notFound("entity", bbid)
	}
	rels, err := s.relationalDB.ListRelationshipsByEntity(ctx, bbid, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}

	states := make([]entities.RelationshipState, 0, len(rels))
	for _, rel := range rels {
		state, err := s.GetRelationship(ctx, rel.ID)
		if err != nil {
			return nil, err
		}
		states = append(states, *state)
	}
	return states, nil
}
