package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/mocks"
)

const testEditor int64 = 7

// testEnv wires the services against in-memory mocks.
type testEnv struct {
	db        *mocks.RelationalDB
	cache     *mocks.StateCache
	vectorDB  *mocks.VectorDB
	embedder  *mocks.Embedder
	events    *mocks.EventPublisher
	store     *EntityStore
	types     *TypeRegistry
	validator *Validator
	indexer   *Indexer
	mutations *MutationService
	revisions *RevisionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		db:       mocks.NewRelationalDB(),
		cache:    mocks.NewStateCache(),
		vectorDB: mocks.NewVectorDB(),
		embedder: &mocks.Embedder{EmbeddingResult: []float32{0.1, 0.2, 0.3}},
		events:   &mocks.EventPublisher{},
	}
	env.db.SeedTypeCodes()

	env.store = NewEntityStore(env.db, env.cache, logger)
	env.types = NewTypeRegistry(env.db)
	env.validator = NewValidator(env.db, env.types)
	env.indexer = NewIndexer(env.vectorDB, env.embedder, env.store, IndexerOptions{}, logger)
	env.mutations = NewMutationService(env.db, env.store, env.validator, SideEffects{
		Cache:   env.cache,
		Indexer: env.indexer,
		Events:  env.events,
	}, MutationOptions{}, logger)
	env.revisions = NewRevisionService(env.db, NewDiffService(env.db))
	return env
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func idPtr(id int64) *int64   { return &id }

// creatorInput builds the input for a new author with one default alias.
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
			entities.InsertAlias(entities.AliasInput{Name: strPtr(name)}),
		},
	}
}

func (env *testEnv) createCreator(t *testing.T, name string) *entities.EntityState {
	t.Helper()
	state, err := env.mutations.Create(context.Background(), entities.KindCreator, creatorInput(name), testEditor)
	require.NoError(t, err)
	return state
}

func (env *testEnv) createPublication(t *testing.T, name string) *entities.EntityState {
	t.Helper()
	state, err := env.mutations.Create(context.Background(), entities.KindPublication, publicationInput(name), testEditor)
	require.NoError(t, err)
	return state
}
