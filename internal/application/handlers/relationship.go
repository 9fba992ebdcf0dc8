package handlers

import (
	"context"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/services"
)

// RelationshipHandler handles relationship operations.
type RelationshipHandler struct {
	store     *services.EntityStore
	mutations *services.MutationService
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(store *services.EntityStore, mutations *services.MutationService) *RelationshipHandler {
	return &RelationshipHandler{
		store:     store,
		mutations: mutations,
	}
}

// HandleCreate creates a relationship.
func (h *RelationshipHandler) HandleCreate(ctx context.Context, in *entities.RelationshipInput, editorID int64) (*entities.RelationshipState, error) {
	return h.mutations.CreateRelationship(ctx, in, editorID)
}

// HandleUpdate applies in to the current snapshot of a relationship.
func (h *RelationshipHandler) HandleUpdate(ctx context.Context, id string, in *entities.RelationshipInput, editorID int64) (*entities.RelationshipState, error) {
	return h.mutations.UpdateRelationship(ctx, id, in, editorID)
}

// HandleDelete deletes a relationship.
func (h *RelationshipHandler) HandleDelete(ctx context.Context, id, note string, editorID int64) (*entities.RelationshipState, error) {
	return h.mutations.DeleteRelationship(ctx, id, note, editorID)
}

// HandleGet returns a relationship at its master revision.
func (h *RelationshipHandler) HandleGet(ctx context.Context, id string) (*entities.RelationshipState, error) {
	return h.store.GetRelationship(ctx, id)
}

// HandleList returns the live relationships an entity takes part in.
func (h *RelationshipHandler) HandleList(ctx context.Context, bbid string, limit, offset int) ([]entities.RelationshipState, error) {
	return h.store.ListRelationships(ctx, bbid, offset, limit)
}
