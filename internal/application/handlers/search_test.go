package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/mocks"
	"github.com/ersonp/biblio-core/internal/domain/services"
)

func newSearchHandler(env *testEnv) *SearchHandler {
	embedder := &mocks.Embedder{EmbeddingResult: []float32{0.1, 0.2, 0.3}}
	return NewSearchHandler(services.NewSearchService(env.vectorDB, embedder, env.store), env.indexer)
}

func TestSearchHandler_HandleSearch(t *testing.T) {
	env := newTestEnv(t)
	handler := newSearchHandler(env)
	ctx := context.Background()

	kafka := env.create(t, "creator", creatorInput("Franz Kafka"))
	env.create(t, "publication", publicationInput("The Trial"))

	result, err := handler.HandleSearch(ctx, "kafka", "creator", 5)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, kafka.Entity.BBID, result.Hits[0].BBID)

	byID, err := handler.HandleSearch(ctx, kafka.Entity.BBID, "", 5)
	require.NoError(t, err)
	require.Len(t, byID.Hits, 1)
	assert.Equal(t, "Franz Kafka", byID.Hits[0].Name)
}

func TestSearchHandler_HandleSearch_Validation(t *testing.T) {
	env := newTestEnv(t)
	handler := newSearchHandler(env)

	tests := []struct {
		name  string
		query string
		kind  string
	}{
		{name: "empty query", query: "  "},
		{name: "unknown kind", query: "kafka", kind: "magazine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.HandleSearch(context.Background(), tt.query, tt.kind, 5)
			assert.ErrorIs(t, err, entities.ErrValidation)
		})
	}
}

func TestSearchHandler_HandleReindex(t *testing.T) {
	env := newTestEnv(t)
	handler := newSearchHandler(env)

	env.create(t, "creator", creatorInput("Franz Kafka"))
	env.create(t, "publication", publicationInput("The Trial"))
	env.vectorDB.Docs = map[string]entities.SearchDocument{}

	count, err := handler.HandleReindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, env.vectorDB.Docs, 2)
}
