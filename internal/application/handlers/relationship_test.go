package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

func TestRelationshipHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	kafka := env.create(t, "creator", creatorInput("Franz Kafka"))
	trial := env.create(t, "publication", publicationInput("The Trial"))

	rel, err := env.relationships.HandleCreate(ctx, &entities.RelationshipInput{
		TypeID: idPtr(1),
		Entities: []entities.RelationshipEntity{
			{BBID: kafka.Entity.BBID, Position: 0},
			{BBID: trial.Entity.BBID, Position: 1},
		},
	}, testEditor)
	require.NoError(t, err)

	got, err := env.relationships.HandleGet(ctx, rel.Relationship.ID)
	require.NoError(t, err)
	assert.Equal(t, rel.Revision.ID, got.Revision.ID)

	updated, err := env.relationships.HandleUpdate(ctx, rel.Relationship.ID, &entities.RelationshipInput{
		Texts: []entities.RelationshipText{{Text: "wrote", Position: 0}},
	}, testEditor)
	require.NoError(t, err)
	require.NotNil(t, updated.Revision.ParentID)
	assert.Equal(t, rel.Revision.ID, *updated.Revision.ParentID)

	list, err := env.relationships.HandleList(ctx, trial.Entity.BBID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "wrote", list[0].Data.Texts[0].Text)

	_, err = env.relationships.HandleDelete(ctx, rel.Relationship.ID, "wrong type", testEditor)
	require.NoError(t, err)

	list, err = env.relationships.HandleList(ctx, trial.Entity.BBID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRelationshipHandler_HandleCreate_Invalid(t *testing.T) {
	env := newTestEnv(t)
	kafka := env.create(t, "creator", creatorInput("Franz Kafka"))

	_, err := env.relationships.HandleCreate(context.Background(), &entities.RelationshipInput{
		TypeID:   idPtr(1),
		Entities: []entities.RelationshipEntity{{BBID: kafka.Entity.BBID}},
	}, testEditor)

	code, _ := ErrorCode(err)
	assert.Equal(t, CodeValidation, code)
}
