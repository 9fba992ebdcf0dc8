package mocks

import (
	"context"
	"sync"
)

// Embedder is a mock implementation of ports.Embedder.
type Embedder struct {
	mu sync.Mutex

	EmbeddingResult []float32
	Err             error

	// Call tracking
	EmbedCallCount int
	BatchTexts     [][]string
}

// Embed returns the configured embedding or error.
func (m *Embedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmbedCallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.EmbeddingResult, nil
}

// EmbedBatch returns one embedding per text and records the batch.
func (m *Embedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchTexts = append(m.BatchTexts, texts)
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.EmbeddingResult
	}
	return result, nil
}
