package ports

import "context"

// CollectionManager handles search collection lifecycle operations.
// It is kept apart from VectorDB so document writes never depend on
// collection administration.
type CollectionManager interface {
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// DeleteCollection removes the collection and every indexed document.
	DeleteCollection(ctx context.Context) error
}
