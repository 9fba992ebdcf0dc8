package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/infrastructure/parsers"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun   bool // Validate without saving
	EditorID int64
}

// ImportError represents an error for a specific record during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Created  []string
	Errors   []ImportError
}

// ImportService creates entities in bulk from parsed records. Every record
// becomes its own entity with its own revision #1.
type ImportService struct {
	mutations *MutationService
	validator *Validator
}

// NewImportService creates a new import service.
func NewImportService(mutations *MutationService, validator *Validator) *ImportService {
	return &ImportService{
		mutations: mutations,
		validator: validator,
	}
}

// Import validates and creates entities. Invalid records are reported and
// skipped; storage failures abort the import.
func (s *ImportService) Import(ctx context.Context, records []parsers.RawRecord, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	for i := range records {
		raw := &records[i]
		lineNum := raw.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		kind, in, ierr := toEntityInput(raw, lineNum)
		if ierr != nil {
			result.Errors = append(result.Errors, *ierr)
			continue
		}

		if opts.DryRun {
			if err := s.check(ctx, kind, in); err != nil {
				if ierr := asImportError(err, lineNum); ierr != nil {
					result.Errors = append(result.Errors, *ierr)
					continue
				}
				return nil, err
			}
			result.Imported++
			continue
		}

		state, err := s.mutations.Create(ctx, kind, in, opts.EditorID)
		if err != nil {
			if ierr := asImportError(err, lineNum); ierr != nil {
				result.Errors = append(result.Errors, *ierr)
				continue
			}
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		result.Imported++
		result.Created = append(result.Created, state.Entity.BBID)
	}

	return result, nil
}

// check runs the same validation as Create without committing.
func (s *ImportService) check(ctx context.Context, kind entities.EntityKind, in *entities.EntityInput) error {
	data, err := CopyWith(kind, nil, in)
	if err != nil {
		return err
	}
	return s.validator.ValidateEntityData(ctx, data)
}

// toEntityInput validates the shape of a raw record and converts it.
func toEntityInput(raw *parsers.RawRecord, lineNum int) (entities.EntityKind, *entities.EntityInput, *ImportError) {
	if raw.Kind == "" {
		return "", nil, &ImportError{Line: lineNum, Field: "kind", Message: "missing required field: kind"}
	}
	kind, err := entities.ParseKind(raw.Kind)
	if err != nil {
		return "", nil, &ImportError{
			Line:    lineNum,
			Field:   "kind",
			Value:   raw.Kind,
			Message: fmt.Sprintf("invalid kind %q (valid: %s)", raw.Kind, kindList()),
		}
	}
	if strings.TrimSpace(raw.Name) == "" {
		return "", nil, &ImportError{Line: lineNum, Field: "name", Message: "missing required field: name"}
	}

	primary, isDefault := true, true
	name := raw.Name
	alias := entities.AliasInput{Name: &name, LanguageID: raw.LanguageID, Primary: &primary, Default: &isDefault}
	if raw.SortName != "" {
		sortName := raw.SortName
		alias.SortName = &sortName
	}

	in := &entities.EntityInput{
		Note:    raw.Note,
		Data:    raw.Data,
		Aliases: []entities.AliasChange{entities.InsertAlias(alias)},
	}
	for _, id := range raw.Identifiers {
		typeID, value := id.TypeID, id.Value
		in.Identifiers = append(in.Identifiers, entities.IdentifierChange{
			Value: &entities.IdentifierInput{TypeID: &typeID, Value: &value},
		})
	}
	if raw.Annotation != "" {
		annotation := raw.Annotation
		in.Annotation = &annotation
	}
	if raw.Disambiguation != "" {
		disambiguation := raw.Disambiguation
		in.Disambiguation = &disambiguation
	}
	return kind, in, nil
}

// asImportError turns a validation failure into a per-record error, or
// returns nil for anything else.
func asImportError(err error, lineNum int) *ImportError {
	var verr *entities.ValidationError
	if errors.As(err, &verr) {
		return &ImportError{Line: lineNum, Field: verr.Field, Message: verr.Error()}
	}
	return nil
}

func kindList() string {
	names := make([]string, len(entities.AllKinds))
	for i, k := range entities.AllKinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
