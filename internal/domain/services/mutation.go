package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

// DefaultMaxAttempts bounds how often a mutation is retried after losing the
// compare-and-swap on the master revision.
const DefaultMaxAttempts = 3

// EntityIndexer pushes current entity states to the search index.
type EntityIndexer interface {
	IndexState(ctx context.Context, state *entities.EntityState) error
	Remove(ctx context.Context, bbid string) error
}

// SideEffects are the best-effort collaborators run after a commit. Any of
// them may be nil.
type SideEffects struct {
	Cache   ports.StateCache
	Indexer EntityIndexer
	Events  ports.EventPublisher
}

// MutationOptions tunes the MutationService.
type MutationOptions struct {
	MaxAttempts int
}

// MutationService is the only component that creates revisions.
type MutationService struct {
	relationalDB ports.RelationalDB
	store        *EntityStore
	validator    *Validator
	effects      SideEffects
	maxAttempts  int
	logger       *slog.Logger
}

// NewMutationService creates a new MutationService.
func NewMutationService(
	relationalDB ports.RelationalDB,
	store *EntityStore,
	validator *Validator,
	effects SideEffects,
	opts MutationOptions,
	logger *slog.Logger,
) *MutationService {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MutationService{
		relationalDB: relationalDB,
		store:        store,
		validator:    validator,
		effects:      effects,
		maxAttempts:  opts.MaxAttempts,
		logger:       logger,
	}
}

// Create makes a new entity of the given kind with revision #1.
func (s *MutationService) Create(ctx context.Context, kind entities.EntityKind, in *entities.EntityInput, editorID int64) (*entities.EntityState, error) {
	start := time.Now()
	state, err := s.create(ctx, kind, in, editorID)
	s.observe("entity", "create", start, err)
	if err != nil {
		return nil, err
	}
	s.afterEntityCommit(ctx, entities.EventEntityCreated, nil, state)
	return state, nil
}

func (s *MutationService) create(ctx context.Context, kind entities.EntityKind, in *entities.EntityInput, editorID int64) (*entities.EntityState, error) {
	if err := checkEditor(editorID); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, &entities.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown entity kind %q", kind)}
	}
	if in == nil {
		in = &entities.EntityInput{}
	}

	var state *entities.EntityState
	err := s.retry(ctx, "entity", "create", func() error {
		data, err := CopyWith(kind, nil, in)
		if err != nil {
			return err
		}
		if err := s.validator.ValidateEntityData(ctx, data); err != nil {
			return err
		}

		entity := &entities.Entity{BBID: entities.NewBBID(), Kind: kind}
		rev, err := s.relationalDB.CommitEntity(ctx, &ports.EntityCommit{
			Entity:   entity,
			Create:   true,
			Data:     data,
			EditorID: editorID,
			Note:     in.Note,
		})
		if err != nil {
			return err
		}
		state = &entities.EntityState{Entity: *entity, Revision: *rev, Data: data}
		return nil
	})
	return state, err
}

// Update applies a partial update to the current snapshot of an entity.
func (s *MutationService) Update(ctx context.Context, bbid string, in *entities.EntityInput, editorID int64) (*entities.EntityState, error) {
	start := time.Now()
	prev, state, err := s.update(ctx, bbid, in, editorID)
	s.observe("entity", "update", start, err)
	if err != nil {
		return nil, err
	}
	s.afterEntityCommit(ctx, entities.EventEntityUpdated, prev, state)
	return state, nil
}

func (s *MutationService) update(ctx context.Context, bbid string, in *entities.EntityInput, editorID int64) (*entities.EntityData, *entities.EntityState, error) {
	if err := checkEditor(editorID); err != nil {
		return nil, nil, err
	}
	if in == nil {
		in = &entities.EntityInput{}
	}

	var prev *entities.EntityData
	var state *entities.EntityState
	err := s.retry(ctx, "entity", "update", func() error {
		current, err := s.loadEditable(ctx, bbid)
		if err != nil {
			return err
		}

		data, err := CopyWith(current.Entity.Kind, current.Data, in)
		if err != nil {
			return err
		}
		if err := s.validator.ValidateEntityData(ctx, data); err != nil {
			return err
		}

		entity := current.Entity
		rev, err := s.relationalDB.CommitEntity(ctx, &ports.EntityCommit{
			Entity:         &entity,
			ExpectedMaster: current.Entity.MasterRevisionID,
			Data:           data,
			EditorID:       editorID,
			Note:           in.Note,
		})
		if err != nil {
			return err
		}
		prev = current.Data
		state = &entities.EntityState{Entity: entity, Revision: *rev, Data: data}
		return nil
	})
	return prev, state, err
}

// Delete appends a revision without data. The entity and its history stay.
func (s *MutationService) Delete(ctx context.Context, bbid, note string, editorID int64) (*entities.EntityState, error) {
	start := time.Now()
	prev, state, err := s.delete(ctx, bbid, note, editorID)
	s.observe("entity", "delete", start, err)
	if err != nil {
		return nil, err
	}
	s.afterEntityCommit(ctx, entities.EventEntityDeleted, prev, state)
	return state, nil
}

func (s *MutationService) delete(ctx context.Context, bbid, note string, editorID int64) (*entities.EntityData, *entities.EntityState, error) {
	if err := checkEditor(editorID); err != nil {
		return nil, nil, err
	}

	var prev *entities.EntityData
	var state *entities.EntityState
	err := s.retry(ctx, "entity", "delete", func() error {
		current, err := s.loadEditable(ctx, bbid)
		if err != nil {
			return err
		}

		entity := current.Entity
		rev, err := s.relationalDB.CommitEntity(ctx, &ports.EntityCommit{
			Entity:         &entity,
			ExpectedMaster: current.Entity.MasterRevisionID,
			EditorID:       editorID,
			Note:           note,
		})
		if err != nil {
			return err
		}
		prev = current.Data
		state = &entities.EntityState{Entity: entity, Revision: *rev}
		return nil
	})
	return prev, state, err
}

// loadEditable reads the current state from the database and refuses deleted
// entities.
func (s *MutationService) loadEditable(ctx context.Context, bbid string) (*entities.EntityState, error) {
	if !entities.IsValidBBID(bbid) {
		return nil, notFound("entity", bbid)
	}
	current, err := s.store.loadCurrent(ctx, bbid)
	if err != nil {
		return nil, err
	}
	if current.IsDeleted() {
		return nil, fmt.Errorf("entity %s is deleted: %w", bbid, entities.ErrForbidden)
	}
	return current, nil
}

// CreateRelationship makes a new relationship with revision #1.
func (s *MutationService) CreateRelationship(ctx context.Context, in *entities.RelationshipInput, editorID int64) (*entities.RelationshipState, error) {
	start := time.Now()
	state, err := s.createRelationship(ctx, in, editorID)
	s.observe("relationship", "create", start, err)
	if err != nil {
		return nil, err
	}
	s.afterRelationshipCommit(ctx, entities.EventRelationshipCreated, nil, state)
	return state, nil
}

func (s *MutationService) createRelationship(ctx context.Context, in *entities.RelationshipInput, editorID int64) (*entities.RelationshipState, error) {
	if err := checkEditor(editorID); err != nil {
		return nil, err
	}
	if in == nil || in.TypeID == nil {
		return nil, &entities.ValidationError{Field: "relationship_type_id", Message: "is required"}
	}

	var state *entities.RelationshipState
	err := s.retry(ctx, "relationship", "create", func() error {
		data := CopyRelationshipWith(nil, in)
		if err := s.validator.ValidateRelationshipData(ctx, data); err != nil {
			return err
		}

		rel := &entities.Relationship{ID: entities.NewBBID()}
		rev, err := s.relationalDB.CommitRelationship(ctx, &ports.RelationshipCommit{
			Relationship: rel,
			Create:       true,
			Data:         data,
			EditorID:     editorID,
			Note:         in.Note,
		})
		if err != nil {
			return err
		}
		state = &entities.RelationshipState{Relationship: *rel, Revision: *rev, Data: data}
		return nil
	})
	return state, err
}

// UpdateRelationship applies a partial update to a relationship.
func (s *MutationService) UpdateRelationship(ctx context.Context, id string, in *entities.RelationshipInput, editorID int64) (*entities.RelationshipState, error) {
	start := time.Now()
	prev, state, err := s.changeRelationship(ctx, "update", id, in, "", editorID)
	s.observe("relationship", "update", start, err)
	if err != nil {
		return nil, err
	}
	s.afterRelationshipCommit(ctx, entities.EventRelationshipUpdated, prev, state)
	return state, nil
}

// DeleteRelationship appends a revision without data to a relationship.
func (s *MutationService) DeleteRelationship(ctx context.Context, id, note string, editorID int64) (*entities.RelationshipState, error) {
	start := time.Now()
	prev, state, err := s.changeRelationship(ctx, "delete", id, nil, note, editorID)
	s.observe("relationship", "delete", start, err)
	if err != nil {
		return nil, err
	}
	s.afterRelationshipCommit(ctx, entities.EventRelationshipDeleted, prev, state)
	return state, nil
}

// changeRelationship updates the relationship, or deletes it when in is nil.
func (s *MutationService) changeRelationship(ctx context.Context, op, id string, in *entities.RelationshipInput, note string, editorID int64) (*entities.RelationshipData, *entities.RelationshipState, error) {
	if err := checkEditor(editorID); err != nil {
		return nil, nil, err
	}
	if in != nil {
		note = in.Note
	}

	var prev *entities.RelationshipData
	var state *entities.RelationshipState
	err := s.retry(ctx, "relationship", op, func() error {
		current, err := s.store.GetRelationship(ctx, id)
		if err != nil {
			return err
		}
		if current.Data == nil {
			return fmt.Errorf("relationship %s is deleted: %w", id, entities.ErrForbidden)
		}

		var data *entities.RelationshipData
		if in != nil {
			data = CopyRelationshipWith(current.Data, in)
			if err := s.validator.ValidateRelationshipData(ctx, data); err != nil {
				return err
			}
		}

		rel := current.Relationship
		rev, err := s.relationalDB.CommitRelationship(ctx, &ports.RelationshipCommit{
			Relationship:   &rel,
			ExpectedMaster: current.Relationship.MasterRevisionID,
			Data:           data,
			EditorID:       editorID,
			Note:           note,
		})
		if err != nil {
			return err
		}
		prev = current.Data
		state = &entities.RelationshipState{Relationship: rel, Revision: *rev, Data: data}
		return nil
	})
	return prev, state, err
}

// retry runs fn until it succeeds, fails with anything but a conflict, or
// runs out of attempts.
func (s *MutationService) retry(ctx context.Context, target, op string, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, entities.ErrConflict) {
			return err
		}
		if attempt >= s.maxAttempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}
		mutationRetries.WithLabelValues(target, op).Inc()
		s.logger.Info("retrying after concurrent modification",
			"target", target,
			"op", op,
			"attempt", attempt,
		)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (s *MutationService) observe(target, op string, start time.Time, err error) {
	mutationDuration.WithLabelValues(target, op).Observe(time.Since(start).Seconds())
	mutationsTotal.WithLabelValues(target, op, ResultLabel(err)).Inc()
}

// ResultLabel classifies a mutation outcome.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, entities.ErrValidation):
		return "validation"
	case errors.Is(err, entities.ErrNotFound):
		return "not_found"
	case errors.Is(err, entities.ErrForbidden):
		return "forbidden"
	case errors.Is(err, entities.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

func checkEditor(editorID int64) error {
	if editorID <= 0 {
		return &entities.ValidationError{Field: "editor", Message: "an authenticated editor is required"}
	}
	return nil
}

// afterEntityCommit runs the post-commit side effects. Failures are logged and
// never undo the commit.
func (s *MutationService) afterEntityCommit(ctx context.Context, eventType string, prev *entities.EntityData, state *entities.EntityState) {
	bbid := state.Entity.BBID
	logger := s.logger.With("bbid", bbid, "revision_id", state.Revision.ID)

	if s.effects.Cache != nil {
		if err := s.effects.Cache.InvalidateState(ctx, bbid); err != nil {
			sideEffectFailures.WithLabelValues("cache").Inc()
			logger.Warn("invalidating state cache", "error", err)
		}
	}

	if s.effects.Indexer != nil {
		var err error
		if state.IsDeleted() {
			err = s.effects.Indexer.Remove(ctx, bbid)
		} else {
			err = s.effects.Indexer.IndexState(ctx, state)
		}
		if err != nil {
			sideEffectFailures.WithLabelValues("index").Inc()
			logger.Warn("updating search index", "error", err)
		}
	}

	if s.effects.Events != nil {
		event := &entities.RevisionEvent{
			EventID:       uuid.New().String(),
			EventType:     eventType,
			TargetID:      bbid,
			EntityKind:    state.Entity.Kind,
			RevisionID:    state.Revision.ID,
			ParentID:      state.Revision.ParentID,
			EditorID:      state.Revision.EditorID,
			FieldsChanged: DiffEntity(prev, state.Data).Changed(),
			OccurredAt:    state.Revision.CreatedAt,
		}
		if patch, err := MergePatch(prev, state.Data); err == nil {
			event.Patch = patch
		} else {
			logger.Warn("building event patch", "error", err)
		}
		s.publish(ctx, logger, event)
	}

	logger.Info("entity revision committed", "event", eventType, "editor_id", state.Revision.EditorID)
}

func (s *MutationService) afterRelationshipCommit(ctx context.Context, eventType string, prev *entities.RelationshipData, state *entities.RelationshipState) {
	logger := s.logger.With("relationship_id", state.Relationship.ID, "revision_id", state.Revision.ID)
	if s.effects.Events != nil {
		s.publish(ctx, logger, &entities.RevisionEvent{
			EventID:       uuid.New().String(),
			EventType:     eventType,
			TargetID:      state.Relationship.ID,
			RevisionID:    state.Revision.ID,
			ParentID:      state.Revision.ParentID,
			EditorID:      state.Revision.EditorID,
			FieldsChanged: DiffRelationship(prev, state.Data).Changed(),
			OccurredAt:    state.Revision.CreatedAt,
		})
	}
	logger.Info("relationship revision committed", "event", eventType, "editor_id", state.Revision.EditorID)
}

func (s *MutationService) publish(ctx context.Context, logger *slog.Logger, event *entities.RevisionEvent) {
	if err := s.effects.Events.Publish(ctx, event); err != nil {
		sideEffectFailures.WithLabelValues("events").Inc()
		logger.Warn("publishing revision event", "event", event.EventType, "error", err)
	}
}
