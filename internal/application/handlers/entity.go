package handlers

import (
	"context"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/services"
)

// EntityHandler handles entity reads and writes at the application layer.
type EntityHandler struct {
	store     *services.EntityStore
	mutations *services.MutationService
}

// NewEntityHandler creates a new EntityHandler.
func NewEntityHandler(store *services.EntityStore, mutations *services.MutationService) *EntityHandler {
	return &EntityHandler{
		store:     store,
		mutations: mutations,
	}
}

// EntityListResult contains the result of listing entities.
type EntityListResult struct {
	Entities []entities.Entity `json:"entities"`
	Total    int               `json:"total"`
}

// HandleCreate creates an entity of the given kind.
func (h *EntityHandler) HandleCreate(ctx context.Context, kind string, in *entities.EntityInput, editorID int64) (*entities.EntityState, error) {
	k, err := entities.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	return h.mutations.Create(ctx, k, in, editorID)
}

// HandleUpdate applies in to the current snapshot of an entity.
func (h *EntityHandler) HandleUpdate(ctx context.Context, bbid string, in *entities.EntityInput, editorID int64) (*entities.EntityState, error) {
	return h.mutations.Update(ctx, bbid, in, editorID)
}

// HandleDelete deletes an entity. Its history stays readable.
func (h *EntityHandler) HandleDelete(ctx context.Context, bbid, note string, editorID int64) (*entities.EntityState, error) {
	return h.mutations.Delete(ctx, bbid, note, editorID)
}

// HandleShow returns an entity at its master revision, or at revisionID
// when one is given.
func (h *EntityHandler) HandleShow(ctx context.Context, bbid string, revisionID int64) (*entities.EntityState, error) {
	if revisionID > 0 {
		return h.store.GetStateAt(ctx, bbid, revisionID)
	}
	return h.store.GetCurrentState(ctx, bbid)
}

// HandleList returns the entities of a kind, most recently updated first.
func (h *EntityHandler) HandleList(ctx context.Context, kind string, limit, offset int) (*EntityListResult, error) {
	var k entities.EntityKind
	if kind != "" {
		parsed, err := entities.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		k = parsed
	}

	list, err := h.store.ListCurrent(ctx, k, offset, limit)
	if err != nil {
		return nil, err
	}

	count, err := h.store.CountCurrent(ctx, k)
	if err != nil {
		return nil, err
	}

	return &EntityListResult{
		Entities: list,
		Total:    count,
	}, nil
}
