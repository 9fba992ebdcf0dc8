package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

// VectorDB is a mock implementation of ports.VectorDB.
type VectorDB struct {
	mu sync.Mutex

	Docs map[string]entities.SearchDocument
	Err  error

	// Call tracking
	SaveCallCount      int
	SaveBatchCallCount int
	DeleteCallCount    int
}

// NewVectorDB creates a new mock VectorDB.
func NewVectorDB() *VectorDB {
	return &VectorDB{Docs: make(map[string]entities.SearchDocument)}
}

// Save stores a single document.
func (m *VectorDB) Save(_ context.Context, doc entities.SearchDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCallCount++
	if m.Err != nil {
		return m.Err
	}
	m.Docs[doc.BBID] = doc
	return nil
}

// SaveBatch stores multiple documents.
func (m *VectorDB) SaveBatch(_ context.Context, docs []entities.SearchDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveBatchCallCount++
	if m.Err != nil {
		return m.Err
	}
	for _, doc := range docs {
		m.Docs[doc.BBID] = doc
	}
	return nil
}

// Search returns stored documents in BBID order.
func (m *VectorDB) Search(_ context.Context, _ []float32, limit int) ([]entities.SearchHit, error) {
	return m.search("", limit)
}

// SearchByKind returns stored documents of a kind.
func (m *VectorDB) SearchByKind(_ context.Context, _ []float32, kind entities.EntityKind, limit int) ([]entities.SearchHit, error) {
	return m.search(kind, limit)
}

func (m *VectorDB) search(kind entities.EntityKind, limit int) ([]entities.SearchHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	hits := make([]entities.SearchHit, 0, len(m.Docs))
	for _, doc := range m.Docs {
		if kind != "" && doc.Kind != kind {
			continue
		}
		hits = append(hits, entities.SearchHit{BBID: doc.BBID, Kind: doc.Kind, Name: doc.Name, Score: 0.5})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].BBID < hits[j].BBID })
	return page(hits, limit, 0), nil
}

// Delete removes a document.
func (m *VectorDB) Delete(_ context.Context, bbid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCallCount++
	if m.Err != nil {
		return m.Err
	}
	delete(m.Docs, bbid)
	return nil
}
