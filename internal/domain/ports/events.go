package ports

import (
	"context"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

// EventPublisher announces committed revisions to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event *entities.RevisionEvent) error
	Close() error
}
