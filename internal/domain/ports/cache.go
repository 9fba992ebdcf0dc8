package ports

import (
	"context"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

// StateCache caches resolved current states. Get returns nil, nil on a miss.
type StateCache interface {
	GetState(ctx context.Context, bbid string) (*entities.EntityState, error)
	SetState(ctx context.Context, state *entities.EntityState) error
	InvalidateState(ctx context.Context, bbids ...string) error

	// SetFeatured stores the BBID of the featured publication.
	SetFeatured(ctx context.Context, bbid string) error
	// GetFeatured returns "" when no publication is featured.
	GetFeatured(ctx context.Context) (string, error)
}
