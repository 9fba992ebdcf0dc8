package handlers

import (
	"context"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
	"github.com/ersonp/biblio-core/internal/domain/services"
)

// RevisionHandler serves revision history and diffs.
type RevisionHandler struct {
	revisions *services.RevisionService
}

// NewRevisionHandler creates a new RevisionHandler.
func NewRevisionHandler(revisions *services.RevisionService) *RevisionHandler {
	return &RevisionHandler{revisions: revisions}
}

// HistoryResult contains an entity history page.
type HistoryResult struct {
	BBID    string                  `json:"bbid"`
	Entries []services.HistoryEntry `json:"entries"`
}

// HandleHistory returns the revisions of an entity, newest first.
func (h *RevisionHandler) HandleHistory(ctx context.Context, bbid string, limit, offset int) (*HistoryResult, error) {
	entries, err := h.revisions.History(ctx, bbid, offset, limit)
	if err != nil {
		return nil, err
	}
	return &HistoryResult{BBID: bbid, Entries: entries}, nil
}

// HandleGet returns a revision with its changes. A zero base diffs against
// the revision's children.
func (h *RevisionHandler) HandleGet(ctx context.Context, id, base int64) (*services.RevisionView, error) {
	var basePtr *int64
	if base > 0 {
		basePtr = &base
	}
	return h.revisions.Get(ctx, id, basePtr)
}

// HandleCompare diffs two revisions of the same target.
func (h *RevisionHandler) HandleCompare(ctx context.Context, olderID, newerID int64) (entities.Delta, error) {
	return h.revisions.Compare(ctx, olderID, newerID)
}

// HandleList returns revisions matching filter, newest first.
func (h *RevisionHandler) HandleList(ctx context.Context, filter ports.RevisionFilter) ([]entities.Revision, error) {
	return h.revisions.List(ctx, filter)
}
