package handlers

import (
	"context"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/services"
)

// SearchHandler handles search and index maintenance.
type SearchHandler struct {
	search  *services.SearchService
	indexer *services.Indexer
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(search *services.SearchService, indexer *services.Indexer) *SearchHandler {
	return &SearchHandler{
		search:  search,
		indexer: indexer,
	}
}

// SearchResult contains search hits for a query.
type SearchResult struct {
	Query string               `json:"query"`
	Hits  []entities.SearchHit `json:"hits"`
}

// HandleSearch searches the index, optionally restricted to one kind.
func (h *SearchHandler) HandleSearch(ctx context.Context, query, kind string, limit int) (*SearchResult, error) {
	var k entities.EntityKind
	if kind != "" {
		parsed, err := entities.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		k = parsed
	}

	hits, err := h.search.Search(ctx, query, k, limit)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Query: query, Hits: hits}, nil
}

// HandleReindex rebuilds the index from the current state of every entity.
func (h *SearchHandler) HandleReindex(ctx context.Context) (int, error) {
	return h.indexer.Reindex(ctx)
}
