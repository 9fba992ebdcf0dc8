package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

func TestEditorHandler_RegisterAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bob, err := env.editors.HandleRegister(ctx, RegisterInput{Name: "Bob", Email: "bob@bobville.org", EditorTypeID: 1})
	require.NoError(t, err)
	assert.NotZero(t, bob.ID)

	_, err = env.editors.HandleRegister(ctx, RegisterInput{Name: "Eve", Email: "eve", EditorTypeID: 1})
	assert.ErrorIs(t, err, entities.ErrValidation)

	result, err := env.editors.HandleList(ctx, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Offset)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "Bob", result.Editors[0].Name)
}

func TestEditorHandler_HandleGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.create(t, "creator", creatorInput("Franz Kafka"))
	env.create(t, "publication", publicationInput("The Trial"))

	editor, err := env.editors.HandleGet(ctx, testEditor)
	require.NoError(t, err)
	assert.Equal(t, 2, editor.TotalRevisions)
	assert.Empty(t, editor.Name)

	_, err = env.editors.HandleGet(ctx, 999)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}
