package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

func TestRevisionHandler_HandleHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.create(t, "creator", creatorInput("Franz Kafka"))
	_, err := env.entities.HandleUpdate(ctx, created.Entity.BBID, &entities.EntityInput{
		Annotation: strPtr("Born in Prague."),
	}, testEditor)
	require.NoError(t, err)

	result, err := env.revisions.HandleHistory(ctx, created.Entity.BBID, 10, 0)
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)

	assert.Equal(t, []string{"annotation"}, result.Entries[0].Changed)
	assert.Contains(t, result.Entries[1].Changed, "aliases")
}

func TestRevisionHandler_HandleGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.create(t, "creator", creatorInput("Franz Kafka"))
	updated, err := env.entities.HandleUpdate(ctx, created.Entity.BBID, &entities.EntityInput{
		Disambiguation: strPtr("novelist"),
	}, testEditor)
	require.NoError(t, err)

	view, err := env.revisions.HandleGet(ctx, created.Revision.ID, 0)
	require.NoError(t, err)
	require.Len(t, view.Changes, 1)
	require.NotNil(t, view.Changes[0].Against)
	assert.Equal(t, updated.Revision.ID, *view.Changes[0].Against)
	assert.Equal(t, []string{"disambiguation"}, view.Changes[0].Changes.Changed())

	_, err = env.revisions.HandleGet(ctx, 999, 0)
	code, _ := ErrorCode(err)
	assert.Equal(t, CodeNotFound, code)
}

func TestRevisionHandler_HandleCompare(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	kafka := env.create(t, "creator", creatorInput("Franz Kafka"))
	brod := env.create(t, "creator", creatorInput("Max Brod"))

	_, err := env.revisions.HandleCompare(ctx, kafka.Revision.ID, brod.Revision.ID)
	code, _ := ErrorCode(err)
	assert.Equal(t, CodeValidation, code)

	delta, err := env.revisions.HandleCompare(ctx, kafka.Revision.ID, kafka.Revision.ID)
	require.NoError(t, err)
	assert.Empty(t, delta.Changed())
}

func TestRevisionHandler_HandleList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.create(t, "creator", creatorInput("Franz Kafka"))
	env.create(t, "publication", publicationInput("The Trial"))

	revs, err := env.revisions.HandleList(ctx, ports.RevisionFilter{EditorID: testEditor})
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Greater(t, revs[0].ID, revs[1].ID)
}
