package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/mocks"
	"github.com/ersonp/biblio-core/internal/domain/services"
)

const testEditor int64 = 7

type testEnv struct {
	db            *mocks.RelationalDB
	cache         *mocks.StateCache
	vectorDB      *mocks.VectorDB
	store         *services.EntityStore
	types         *services.TypeRegistry
	mutations     *services.MutationService
	indexer       *services.Indexer
	entities      *EntityHandler
	revisions     *RevisionHandler
	relationships *RelationshipHandler
	editors       *EditorHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		db:       mocks.NewRelationalDB(),
		cache:    mocks.NewStateCache(),
		vectorDB: mocks.NewVectorDB(),
	}
	env.db.SeedTypeCodes()

	embedder := &mocks.Embedder{EmbeddingResult: []float32{0.1, 0.2, 0.3}}
	env.store = services.NewEntityStore(env.db, env.cache, logger)
	env.types = services.NewTypeRegistry(env.db)
	validator := services.NewValidator(env.db, env.types)
	env.indexer = services.NewIndexer(env.vectorDB, embedder, env.store, services.IndexerOptions{}, logger)
	env.mutations = services.NewMutationService(env.db, env.store, validator, services.SideEffects{
		Cache:   env.cache,
		Indexer: env.indexer,
		Events:  &mocks.EventPublisher{},
	}, services.MutationOptions{}, logger)

	env.entities = NewEntityHandler(env.store, env.mutations)
	env.revisions = NewRevisionHandler(services.NewRevisionService(env.db, services.NewDiffService(env.db)))
	env.relationships = NewRelationshipHandler(env.store, env.mutations)
	env.editors = NewEditorHandler(services.NewEditorService(env.db, validator))
	return env
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func idPtr(id int64) *int64   { return &id }

func creatorInput(name string) *entities.EntityInput {
	return &entities.EntityInput{
		Note: "new creator",
		Data: json.RawMessage(`{"creator_type_id":1}`),
		Aliases: []entities.AliasChange{
			entities.InsertAlias(entities.AliasInput{Name: strPtr(name), LanguageID: idPtr(1), Primary: boolPtr(true), Default: boolPtr(true)}),
		},
	}
}

func publicationInput(name string) *entities.EntityInput {
	return &entities.EntityInput{
		Data: json.RawMessage(`{"publication_type_id":1}`),
		Aliases: []entities.AliasChange{
			entities.InsertAlias(entities.AliasInput{Name: strPtr(name), Default: boolPtr(true)}),
		},
	}
}

func (env *testEnv) create(t *testing.T, kind string, in *entities.EntityInput) *entities.EntityState {
	t.Helper()
	state, err := env.entities.HandleCreate(context.Background(), kind, in, testEditor)
	require.NoError(t, err)
	return state
}
