package ports

import (
	"context"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

// VectorDB is the external search index that current entity states are
// pushed to.
type VectorDB interface {
	// Save stores a document with its embedding, replacing any previous one.
	Save(ctx context.Context, doc entities.SearchDocument) error

	// SaveBatch stores multiple documents.
	SaveBatch(ctx context.Context, docs []entities.SearchDocument) error

	// Search performs a semantic search and returns the closest documents.
	Search(ctx context.Context, embedding []float32, limit int) ([]entities.SearchHit, error)

	// SearchByKind performs a semantic search filtered by entity kind.
	SearchByKind(ctx context.Context, embedding []float32, kind entities.EntityKind, limit int) ([]entities.SearchHit, error)

	// Delete removes the document of an entity.
	Delete(ctx context.Context, bbid string) error
}
