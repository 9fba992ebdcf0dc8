package mocks

import "context"

// CollectionManager is a mock implementation of ports.CollectionManager.
type CollectionManager struct {
	EnsureErr error
	DeleteErr error

	// VectorSize is the size passed to the last EnsureCollection call.
	VectorSize uint64

	// Call tracking
	EnsureCollectionCallCount int
	DeleteCollectionCallCount int
}

// EnsureCollection records the vector size and returns the configured error.
func (m *CollectionManager) EnsureCollection(_ context.Context, vectorSize uint64) error {
	m.EnsureCollectionCallCount++
	m.VectorSize = vectorSize
	return m.EnsureErr
}

// DeleteCollection returns the configured error.
func (m *CollectionManager) DeleteCollection(_ context.Context) error {
	m.DeleteCollectionCallCount++
	return m.DeleteErr
}
