package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/infrastructure/config"
)

const testBBID = "8f2ad7bb-6f0c-4b3a-9d1e-0c8b2b1a5f11"

func setupTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return newCache(client, "biblio:", ttl), srv
}

func testState() *entities.EntityState {
	dataID := int64(4)
	revID := int64(2)
	parentID := int64(1)
	lang := int64(2)
	updated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	return &entities.EntityState{
		Entity: entities.Entity{
			BBID:             testBBID,
			Kind:             entities.KindCreator,
			MasterRevisionID: &revID,
			LastUpdated:      updated,
		},
		Revision: entities.Revision{
			ID:        revID,
			ParentID:  &parentID,
			EditorID:  7,
			Note:      "added alias",
			CreatedAt: updated,
			Target:    entities.EntityTarget{BBID: testBBID, DataID: &dataID},
		},
		Data: &entities.EntityData{
			ID:   dataID,
			Kind: entities.KindCreator,
			Data: &entities.CreatorData{CreatorTypeID: 1, Ended: true},
			Aliases: []entities.Alias{
				{ID: 1, Name: "Franz Kafka", LanguageID: &lang, Primary: true, Default: true},
			},
			Identifiers: []entities.Identifier{},
		},
	}
}

func TestNewCache(t *testing.T) {
	t.Run("missing address", func(t *testing.T) {
		_, err := NewCache(config.RedisConfig{})
		require.Error(t, err)
	})

	t.Run("configured", func(t *testing.T) {
		srv := miniredis.RunT(t)
		cache, err := NewCache(config.RedisConfig{Addr: srv.Addr(), KeyPrefix: "biblio:", StateTTL: time.Minute})
		require.NoError(t, err)
		defer cache.Close()
		assert.NoError(t, cache.Ping(context.Background()))
	})
}

func TestCache_StateRoundTrip(t *testing.T) {
	cache, srv := setupTestCache(t, 10*time.Minute)
	ctx := context.Background()

	want := testState()
	require.NoError(t, cache.SetState(ctx, want))

	assert.True(t, srv.Exists("biblio:state:"+testBBID))
	assert.Equal(t, 10*time.Minute, srv.TTL("biblio:state:"+testBBID))

	got, err := cache.GetState(ctx, testBBID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Entity.BBID, got.Entity.BBID)
	assert.True(t, want.Entity.LastUpdated.Equal(got.Entity.LastUpdated))
	assert.Equal(t, want.Revision.Target, got.Revision.Target)
	assert.Equal(t, *want.Revision.ParentID, *got.Revision.ParentID)
	assert.Equal(t, want.Data.Data, got.Data.Data)
	assert.Equal(t, want.Data.Aliases, got.Data.Aliases)
}

func TestCache_DeletedState(t *testing.T) {
	cache, _ := setupTestCache(t, time.Minute)
	ctx := context.Background()

	state := testState()
	state.Data = nil
	state.Revision.Target = entities.EntityTarget{BBID: testBBID}
	require.NoError(t, cache.SetState(ctx, state))

	got, err := cache.GetState(ctx, testBBID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsDeleted())
}

func TestCache_Miss(t *testing.T) {
	cache, _ := setupTestCache(t, time.Minute)

	got, err := cache.GetState(context.Background(), testBBID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_Expiry(t *testing.T) {
	cache, srv := setupTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetState(ctx, testState()))
	srv.FastForward(2 * time.Minute)

	got, err := cache.GetState(ctx, testBBID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_InvalidateState(t *testing.T) {
	cache, srv := setupTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetState(ctx, testState()))
	require.NoError(t, cache.InvalidateState(ctx, testBBID, "unknown"))
	assert.False(t, srv.Exists("biblio:state:"+testBBID))

	require.NoError(t, cache.InvalidateState(ctx))
}

func TestCache_Featured(t *testing.T) {
	cache, srv := setupTestCache(t, time.Minute)
	ctx := context.Background()

	bbid, err := cache.GetFeatured(ctx)
	require.NoError(t, err)
	assert.Empty(t, bbid)

	require.NoError(t, cache.SetFeatured(ctx, testBBID))
	bbid, err = cache.GetFeatured(ctx)
	require.NoError(t, err)
	assert.Equal(t, testBBID, bbid)
	assert.True(t, srv.Exists("biblio:featured"))
}

func TestCache_ServerError(t *testing.T) {
	cache, srv := setupTestCache(t, time.Minute)
	srv.SetError("ERR server unavailable")

	_, err := cache.GetState(context.Background(), testBBID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading cached state")
}
