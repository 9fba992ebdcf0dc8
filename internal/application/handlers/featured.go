package handlers

import (
	"context"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/services"
)

// FeaturedHandler handles the book of the week.
type FeaturedHandler struct {
	featured *services.FeaturedService
}

// NewFeaturedHandler creates a new FeaturedHandler.
func NewFeaturedHandler(featured *services.FeaturedService) *FeaturedHandler {
	return &FeaturedHandler{featured: featured}
}

// HandleGet returns the featured publication, picking one first when pick
// is set.
func (h *FeaturedHandler) HandleGet(ctx context.Context, pick bool) (*entities.EntityState, error) {
	if pick {
		return h.featured.Pick(ctx)
	}
	return h.featured.Get(ctx)
}
