package services

import (
	"context"
	"fmt"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

// EditorService is the editor directory: registration, profiles and
// revision counters.
type EditorService struct {
	relationalDB ports.RelationalDB
	validator    *Validator
}

// NewEditorService creates a new EditorService.
func NewEditorService(relationalDB ports.RelationalDB, validator *Validator) *EditorService {
	return &EditorService{relationalDB: relationalDB, validator: validator}
}

// Register adds an editor, or fills in the profile of an existing id. The
// returned editor carries its current counters.
func (s *EditorService) Register(ctx context.Context, editor *entities.Editor) (*entities.Editor, error) {
	if editor == nil {
		return nil, &entities.ValidationError{Message: "editor is required"}
	}
	if err := s.validator.ValidateEditor(ctx, editor); err != nil {
		return nil, err
	}

	in := *editor
	in.TotalRevisions, in.RevisionsApplied = 0, 0
	if err := s.relationalDB.SaveEditor(ctx, &in); err != nil {
		return nil, fmt.Errorf("saving editor: %w", err)
	}
	return s.Get(ctx, in.ID)
}

// Get returns an editor with its counters.
func (s *EditorService) Get(ctx context.Context, id int64) (*entities.Editor, error) {
	editor, err := s.relationalDB.FindEditor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding editor: %w", err)
	}
	if editor == nil {
		return nil, notFound("editor", fmt.Sprint(id))
	}
	return editor, nil
}

// List lists editors in registration order.
func (s *EditorService) List(ctx context.Context, offset, limit int) ([]entities.Editor, error) {
	if offset < 0 || limit < 0 {
		return nil, &entities.ValidationError{Field: "offset", Message: "offset and limit must not be negative"}
	}
	editors, err := s.relationalDB.ListEditors(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing editors: %w", err)
	}
	return editors, nil
}
