package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

// DefaultSearchLimit is used when a search does not name a limit.
const DefaultSearchLimit = 10

// SearchService answers free-text queries against the search index.
type SearchService struct {
	vectorDB ports.VectorDB
	embedder ports.Embedder
	store    *EntityStore
}

// NewSearchService creates a new SearchService.
func NewSearchService(vectorDB ports.VectorDB, embedder ports.Embedder, store *EntityStore) *SearchService {
	return &SearchService{
		vectorDB: vectorDB,
		embedder: embedder,
		store:    store,
	}
}

// Search returns entities matching query. A query that is itself a BBID
// resolves directly to that entity.
func (s *SearchService) Search(ctx context.Context, query string, kind entities.EntityKind, limit int) ([]entities.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &entities.ValidationError{Field: "q", Message: "query is required"}
	}
	if kind != "" && !kind.IsValid() {
		return nil, &entities.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown entity kind %q", kind)}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	if entities.IsValidBBID(query) {
		state, err := s.store.GetCurrentState(ctx, query)
		if errors.Is(err, entities.ErrNotFound) {
			return []entities.SearchHit{}, nil
		}
		if err != nil {
			return nil, err
		}
		if state.IsDeleted() {
			return []entities.SearchHit{}, nil
		}
		return []entities.SearchHit{{
			BBID:  state.Entity.BBID,
			Kind:  state.Entity.Kind,
			Name:  state.Data.DisplayName(),
			Score: 1,
		}}, nil
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if kind != "" {
		return s.vectorDB.SearchByKind(ctx, embedding, kind, limit)
	}
	return s.vectorDB.Search(ctx, embedding, limit)
}
