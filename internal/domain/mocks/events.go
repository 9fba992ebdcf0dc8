package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

// EventPublisher is a mock implementation of ports.EventPublisher.
type EventPublisher struct {
	mu sync.Mutex

	Events []entities.RevisionEvent
	Err    error
	Closed bool
}

// Publish records the event.
func (m *EventPublisher) Publish(_ context.Context, event *entities.RevisionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, *event)
	return nil
}

// Close marks the publisher closed.
func (m *EventPublisher) Close() error {
	m.Closed = true
	return nil
}
