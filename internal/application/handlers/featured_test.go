package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/biblio-core/internal/domain/services"
)

func TestFeaturedHandler_HandleGet(t *testing.T) {
	env := newTestEnv(t)
	handler := NewFeaturedHandler(services.NewFeaturedService(env.store, env.cache))
	ctx := context.Background()

	_, err := handler.HandleGet(ctx, false)
	code, _ := ErrorCode(err)
	assert.Equal(t, CodeNotFound, code)

	trial := env.create(t, "publication", publicationInput("The Trial"))

	picked, err := handler.HandleGet(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, trial.Entity.BBID, picked.Entity.BBID)

	got, err := handler.HandleGet(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, trial.Entity.BBID, got.Entity.BBID)
}
