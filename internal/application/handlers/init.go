package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/biblio-core/internal/domain/ports"
	"github.com/ersonp/biblio-core/internal/domain/services"
)

// InitHandler prepares a fresh database and search collection.
type InitHandler struct {
	relationalDB      ports.RelationalDB
	types             *services.TypeRegistry
	collectionManager ports.CollectionManager
}

// NewInitHandler creates a new init handler. collectionManager may be nil
// when search is not configured.
func NewInitHandler(relationalDB ports.RelationalDB, types *services.TypeRegistry, collectionManager ports.CollectionManager) *InitHandler {
	return &InitHandler{
		relationalDB:      relationalDB,
		types:             types,
		collectionManager: collectionManager,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	TypeCodes         int
	CollectionCreated bool
}

// Handle creates the schema, seeds the default type codes and ensures the
// search collection exists. Running it again is harmless.
func (h *InitHandler) Handle(ctx context.Context, vectorSize uint64) (*InitResult, error) {
	if err := h.relationalDB.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := h.types.LoadDefaults(ctx); err != nil {
		return nil, fmt.Errorf("seeding type codes: %w", err)
	}

	codes, err := h.types.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing type codes: %w", err)
	}

	result := &InitResult{TypeCodes: len(codes)}
	if h.collectionManager != nil {
		if err := h.collectionManager.EnsureCollection(ctx, vectorSize); err != nil {
			return nil, fmt.Errorf("creating collection: %w", err)
		}
		result.CollectionCreated = true
	}
	return result, nil
}
