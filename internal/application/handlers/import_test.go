package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/biblio-core/internal/domain/services"
)

const importJSON = `[
  {"kind": "creator", "name": "Franz Kafka", "data": {"creator_type_id": 1}},
  {"kind": "publication", "name": "The Trial", "data": {"publication_type_id": 1}},
  {"kind": "magazine", "name": "Hyperion"}
]`

func writeImportFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newImportHandler(env *testEnv) *ImportHandler {
	validator := services.NewValidator(env.db, env.types)
	return NewImportHandler(services.NewImportService(env.mutations, validator))
}

func TestImportHandler_Handle(t *testing.T) {
	env := newTestEnv(t)
	handler := newImportHandler(env)
	path := writeImportFile(t, "entities.json", importJSON)

	result, err := handler.Handle(context.Background(), path, ImportOptions{EditorID: testEditor})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Len(t, result.Created, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Equal(t, "kind", result.Errors[0].Field)
	assert.Equal(t, 2, env.db.RevisionCount())
}

func TestImportHandler_Handle_DryRun(t *testing.T) {
	env := newTestEnv(t)
	handler := newImportHandler(env)
	path := writeImportFile(t, "entities.json", importJSON)

	result, err := handler.Handle(context.Background(), path, ImportOptions{DryRun: true, EditorID: testEditor})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Created)
	assert.Equal(t, 0, env.db.RevisionCount())
}

func TestImportHandler_Handle_Errors(t *testing.T) {
	env := newTestEnv(t)
	handler := newImportHandler(env)

	tests := []struct {
		name   string
		path   string
		opts   ImportOptions
		errMsg string
	}{
		{
			name:   "unknown extension",
			path:   writeImportFile(t, "entities.txt", "kafka"),
			errMsg: "unsupported format",
		},
		{
			name:   "missing file",
			path:   filepath.Join(t.TempDir(), "missing.json"),
			errMsg: "opening file",
		},
		{
			name:   "malformed json",
			path:   writeImportFile(t, "broken.json", "{"),
			errMsg: "parsing file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(context.Background(), tt.path, tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestImportHandler_Handle_EmptyFile(t *testing.T) {
	env := newTestEnv(t)
	handler := newImportHandler(env)
	path := writeImportFile(t, "empty.json", "[]")

	result, err := handler.Handle(context.Background(), path, ImportOptions{Format: "json", EditorID: testEditor})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
}
