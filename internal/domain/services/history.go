package services

import (
	"context"
	"fmt"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

const (
	defaultRevisionLimit = 20
	maxRevisionLimit     = 100
)

// RevisionView is a revision with its computed changes.
type RevisionView struct {
	Revision entities.Revision `json:"revision"`
	Changes  []RevisionChanges `json:"changes"`
}

// HistoryEntry is a revision with what it changed relative to its parent.
type HistoryEntry struct {
	Revision entities.Revision `json:"revision"`
	Changed  []string          `json:"changed"`
	Changes  entities.Delta    `json:"changes"`
}

// RevisionService serves revisions and their diffs.
type RevisionService struct {
	relationalDB ports.RelationalDB
	diff         *DiffService
}

// NewRevisionService creates a new RevisionService.
func NewRevisionService(relationalDB ports.RelationalDB, diff *DiffService) *RevisionService {
	return &RevisionService{relationalDB: relationalDB, diff: diff}
}

// Get returns a revision with its changes against its children, or against
// base when given.
func (s *RevisionService) Get(ctx context.Context, id int64, base *int64) (*RevisionView, error) {
	rev, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	changes, err := s.diff.ChangesForRevision(ctx, rev, base)
	if err != nil {
		return nil, err
	}
	return &RevisionView{Revision: *rev, Changes: changes}, nil
}

// List returns revisions newest first.
func (s *RevisionService) List(ctx context.Context, filter ports.RevisionFilter) ([]entities.Revision, error) {
	if filter.EntityBBID != "" && !entities.IsValidBBID(filter.EntityBBID) {
		return nil, notFound("entity", filter.EntityBBID)
	}
	if filter.RelationshipID != "" && !entities.IsValidBBID(filter.RelationshipID) {
		return nil, notFound("relationship", filter.RelationshipID)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultRevisionLimit
	}
	if filter.Limit > maxRevisionLimit {
		filter.Limit = maxRevisionLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	revs, err := s.relationalDB.ListRevisions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w", err)
	}
	return revs, nil
}

// History returns the revisions of an entity newest first, each with the
// delta against its parent.
func (s *RevisionService) History(ctx context.Context, bbid string, offset, limit int) ([]HistoryEntry, error) {
	revs, err := s.List(ctx, ports.RevisionFilter{EntityBBID: bbid, Offset: offset, Limit: limit})
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, 0, len(revs))
	for i := range revs {
		delta, err := s.diff.ChangesFromParent(ctx, &revs[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, HistoryEntry{Revision: revs[i], Changed: delta.Changed(), Changes: delta})
	}
	return entries, nil
}

// Compare diffs the snapshots of two revisions of the same target.
func (s *RevisionService) Compare(ctx context.Context, olderID, newerID int64) (entities.Delta, error) {
	older, err := s.find(ctx, olderID)
	if err != nil {
		return entities.Delta{}, err
	}
	newer, err := s.find(ctx, newerID)
	if err != nil {
		return entities.Delta{}, err
	}
	if older.Target.Kind() != newer.Target.Kind() || older.Target.TargetID() != newer.Target.TargetID() {
		return entities.Delta{}, &entities.ValidationError{
			Field:   "revision",
			Message: fmt.Sprintf("revisions %d and %d belong to different targets", olderID, newerID),
		}
	}
	return s.diff.diffRevisions(ctx, older, newer)
}

func (s *RevisionService) find(ctx context.Context, id int64) (*entities.Revision, error) {
	rev, err := s.relationalDB.FindRevision(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding revision: %w", err)
	}
	if rev == nil {
		return nil, notFound("revision", fmt.Sprint(id))
	}
	return rev, nil
}
