package handlers

import (
	"context"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/services"
)

// EditorHandler handles the editor directory.
type EditorHandler struct {
	editors *services.EditorService
}

// NewEditorHandler creates a new EditorHandler.
func NewEditorHandler(editors *services.EditorService) *EditorHandler {
	return &EditorHandler{editors: editors}
}

// RegisterInput holds the profile of an editor to register. A zero ID
// registers a new editor.
type RegisterInput struct {
	ID           int64
	Name         string
	Email        string
	EditorTypeID int64
}

// EditorListResult is one page of the editor directory.
type EditorListResult struct {
	Offset  int               `json:"offset"`
	Count   int               `json:"count"`
	Editors []entities.Editor `json:"objects"`
}

// HandleRegister registers an editor or updates its profile.
func (h *EditorHandler) HandleRegister(ctx context.Context, in RegisterInput) (*entities.Editor, error) {
	return h.editors.Register(ctx, &entities.Editor{
		ID:           in.ID,
		Name:         in.Name,
		Email:        in.Email,
		EditorTypeID: in.EditorTypeID,
	})
}

// HandleGet returns an editor with its revision counters.
func (h *EditorHandler) HandleGet(ctx context.Context, id int64) (*entities.Editor, error) {
	return h.editors.Get(ctx, id)
}

// HandleList returns one page of editors.
func (h *EditorHandler) HandleList(ctx context.Context, limit, offset int) (*EditorListResult, error) {
	editors, err := h.editors.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &EditorListResult{Offset: offset, Count: len(editors), Editors: editors}, nil
}
