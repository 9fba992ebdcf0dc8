package handlers

import (
	"context"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/services"
)

// TypeHandler handles type code lookups and additions.
type TypeHandler struct {
	types *services.TypeRegistry
}

// NewTypeHandler creates a new TypeHandler.
func NewTypeHandler(types *services.TypeRegistry) *TypeHandler {
	return &TypeHandler{types: types}
}

// HandleList returns the type codes of a category, or all when empty.
func (h *TypeHandler) HandleList(ctx context.Context, category string) ([]entities.TypeCode, error) {
	return h.types.List(ctx, entities.TypeCategory(category))
}

// HandleAdd registers a new type code.
func (h *TypeHandler) HandleAdd(ctx context.Context, category string, id int64, label string) error {
	return h.types.Add(ctx, entities.TypeCategory(category), id, label)
}
