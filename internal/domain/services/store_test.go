package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/mocks"
)

func TestEntityStore_GetCurrentState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createCreator(t, "Franz Kafka")

	state, err := env.store.GetCurrentState(ctx, created.Entity.BBID)
	require.NoError(t, err)
	assert.Equal(t, created.Revision.ID, state.Revision.ID)
	assert.Equal(t, "Franz Kafka", state.Data.DisplayName())
	assert.Contains(t, env.cache.States, created.Entity.BBID)

	// Served from the cache even when the database is unavailable.
	env.db.Err = errors.New("connection reset")
	cached, err := env.store.GetCurrentState(ctx, created.Entity.BBID)
	require.NoError(t, err)
	assert.Equal(t, state.Revision.ID, cached.Revision.ID)
}

// commitDuringLoad runs commit once, right after the first snapshot read.
type commitDuringLoad struct {
	*mocks.RelationalDB
	commit func()
	once   sync.Once
}

func (db *commitDuringLoad) FindEntityData(ctx context.Context, id int64) (*entities.EntityData, error) {
	data, err := db.RelationalDB.FindEntityData(ctx, id)
	db.once.Do(db.commit)
	return data, err
}

func TestEntityStore_GetCurrentState_StaleCacheEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createCreator(t, "Franz Kafka")
	bbid := created.Entity.BBID

	var updated *entities.EntityState
	db := &commitDuringLoad{RelationalDB: env.db, commit: func() {
		var err error
		updated, err = env.mutations.Update(ctx, bbid, &entities.EntityInput{Disambiguation: strPtr("novelist")}, testEditor)
		require.NoError(t, err)
	}}
	reader := NewEntityStore(db, env.cache, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// The first read loads revision 1 and caches it after the update landed.
	first, err := reader.GetCurrentState(ctx, bbid)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, created.Revision.ID, first.Revision.ID)
	assert.Equal(t, created.Revision.ID, env.cache.States[bbid].Revision.ID)

	state, err := reader.GetCurrentState(ctx, bbid)
	require.NoError(t, err)
	assert.Equal(t, updated.Revision.ID, state.Revision.ID)
	require.NotNil(t, state.Data.Disambiguation)
	assert.Equal(t, "novelist", state.Data.Disambiguation.Comment)
	assert.Equal(t, updated.Revision.ID, env.cache.States[bbid].Revision.ID)
}

func TestEntityStore_GetCurrentState_CacheErrorFallsBack(t *testing.T) {
	env := newTestEnv(t)
	created := env.createCreator(t, "Franz Kafka")
	env.cache.Err = errors.New("redis down")

	state, err := env.store.GetCurrentState(context.Background(), created.Entity.BBID)
	require.NoError(t, err)
	assert.Equal(t, created.Entity.BBID, state.Entity.BBID)
}

func TestEntityStore_GetCurrentState_NotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, bbid := range []string{"", "kafka", "00000000-0000-0000-0000-00000000000", entities.NewBBID()} {
		_, err := env.store.GetCurrentState(context.Background(), bbid)
		assert.True(t, errors.Is(err, entities.ErrNotFound), "bbid %q: %v", bbid, err)
	}
}

func TestEntityStore_GetStateAt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	kafka := env.createCreator(t, "Franz Kafka")
	brod := env.createCreator(t, "Max Brod")

	_, err := env.mutations.Update(ctx, kafka.Entity.BBID, &entities.EntityInput{Annotation: strPtr("Prague")}, testEditor)
	require.NoError(t, err)

	first, err := env.store.GetStateAt(ctx, kafka.Entity.BBID, kafka.Revision.ID)
	require.NoError(t, err)
	assert.Nil(t, first.Data.Annotation)

	_, err = env.store.GetStateAt(ctx, kafka.Entity.BBID, brod.Revision.ID)
	assert.True(t, errors.Is(err, entities.ErrNotFound), "revision of another entity")

	_, err = env.store.GetStateAt(ctx, kafka.Entity.BBID, 404)
	assert.True(t, errors.Is(err, entities.ErrNotFound))
}

func TestEntityStore_ListCurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createCreator(t, "Franz Kafka")
	env.createCreator(t, "Max Brod")
	env.createPublication(t, "The Trial")

	creators, err := env.store.ListCurrent(ctx, entities.KindCreator, 0, 10)
	require.NoError(t, err)
	assert.Len(t, creators, 2)

	page, err := env.store.ListCurrent(ctx, "", 1, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	count, err := env.store.CountCurrent(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = env.store.ListCurrent(ctx, "magazine", 0, 10)
	assert.True(t, errors.Is(err, entities.ErrValidation))
}

func TestEntityStore_GetRelationship_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.store.GetRelationship(context.Background(), "nope")
	assert.True(t, errors.Is(err, entities.ErrNotFound))
	_, err = env.store.GetRelationship(context.Background(), entities.NewBBID())
	assert.True(t, errors.Is(err, entities.ErrNotFound))
	_, err = env.store.ListRelationships(context.Background(), "nope", 0, 10)
	assert.True(t, errors.Is(err, entities.ErrNotFound))
}
