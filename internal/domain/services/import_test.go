package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/infrastructure/parsers"
)

func TestImportService_Import_ValidRecords(t *testing.T) {
	env := newTestEnv(t)
	service := NewImportService(env.mutations, env.validator)

	records := []parsers.RawRecord{
		{
			Kind:        "creator",
			Name:        "Franz Kafka",
			SortName:    "Kafka, Franz",
			LanguageID:  idPtr(2),
			Data:        json.RawMessage(`{"creator_type_id":1}`),
			Identifiers: []parsers.RawIdentifier{{TypeID: 3, Value: "66477450"}},
			Annotation:  "Prague writer",
			LineNum:     1,
		},
		{Kind: "Publication", Name: "The Trial", Data: json.RawMessage(`{"publication_type_id":1}`), LineNum: 2},
	}

	result, err := service.Import(context.Background(), records, ImportOptions{EditorID: testEditor})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Created, 2)

	state, err := env.store.GetCurrentState(context.Background(), result.Created[0])
	require.NoError(t, err)
	assert.Equal(t, entities.KindCreator, state.Entity.Kind)
	assert.Equal(t, int64(1), state.Revision.ID)
	require.Len(t, state.Data.Aliases, 1)
	assert.Equal(t, "Kafka, Franz", state.Data.Aliases[0].SortName)
	assert.True(t, state.Data.Aliases[0].Default)
	require.Len(t, state.Data.Identifiers, 1)
	assert.Equal(t, "66477450", state.Data.Identifiers[0].Value)
	assert.Equal(t, "Prague writer", state.Data.Annotation.Content)
}

func TestImportService_Import_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	service := NewImportService(env.mutations, env.validator)

	records := []parsers.RawRecord{
		{Kind: "", Name: "Franz Kafka", LineNum: 1},
		{Kind: "creator", Name: "  ", LineNum: 2},
		{Kind: "magazine", Name: "Weird Tales", LineNum: 3},
		{Kind: "creator", Name: "Franz Kafka", Data: json.RawMessage(`{"creator_type_id":42}`), LineNum: 4},
		{Kind: "publication", Name: "The Castle", Data: json.RawMessage(`{"publication_type_id":1}`), LineNum: 5},
	}

	result, err := service.Import(context.Background(), records, ImportOptions{EditorID: testEditor})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 4)
	assert.Equal(t, "kind", result.Errors[0].Field)
	assert.Equal(t, "name", result.Errors[1].Field)
	assert.Equal(t, "kind", result.Errors[2].Field)
	assert.Equal(t, "magazine", result.Errors[2].Value)
	assert.Contains(t, result.Errors[2].Message, "valid: creator")
	assert.Equal(t, "creator_type_id", result.Errors[3].Field)
	assert.Equal(t, 4, result.Errors[3].Line)
	assert.Equal(t, "line 4: "+result.Errors[3].Message, result.Errors[3].Error())
}

func TestImportService_Import_DryRun(t *testing.T) {
	env := newTestEnv(t)
	service := NewImportService(env.mutations, env.validator)

	records := []parsers.RawRecord{
		{Kind: "work", Name: "The Metamorphosis", Data: json.RawMessage(`{"work_type_id":1}`)},
		{Kind: "work", Name: "Amerika", Data: json.RawMessage(`{"work_type_id":77}`)},
	}

	result, err := service.Import(context.Background(), records, ImportOptions{DryRun: true, EditorID: testEditor})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Line, "line defaults to the record position")
	assert.Equal(t, 0, env.db.RevisionCount())
}

func TestImportService_Import_StorageFailureAborts(t *testing.T) {
	env := newTestEnv(t)
	env.db.CommitErr = errors.New("disk full")
	service := NewImportService(env.mutations, env.validator)

	records := []parsers.RawRecord{
		{Kind: "publication", Name: "The Trial", Data: json.RawMessage(`{"publication_type_id":1}`), LineNum: 9},
	}

	_, err := service.Import(context.Background(), records, ImportOptions{EditorID: testEditor})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 9")
}

func TestImportService_Import_RequiresEditor(t *testing.T) {
	env := newTestEnv(t)
	service := NewImportService(env.mutations, env.validator)

	result, err := service.Import(context.Background(), []parsers.RawRecord{
		{Kind: "publication", Name: "The Trial", Data: json.RawMessage(`{"publication_type_id":1}`)},
	}, ImportOptions{})
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "editor", result.Errors[0].Field)
}
