package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

// snapshotValidate checks struct tags on kind payloads and child rows.
var snapshotValidate *validator.Validate

func init() {
	snapshotValidate = validator.New()
}

// Validator checks snapshots before they are committed.
type Validator struct {
	relationalDB ports.RelationalDB
	types        *TypeRegistry
}

// NewValidator creates a new Validator.
func NewValidator(relationalDB ports.RelationalDB, types *TypeRegistry) *Validator {
	return &Validator{relationalDB: relationalDB, types: types}
}

// ValidateEntityData checks required fields, type-code references and
// references to other entities.
func (v *Validator) ValidateEntityData(ctx context.Context, data *entities.EntityData) error {
	if data.Data == nil {
		return &entities.ValidationError{Field: "data", Message: "is required"}
	}
	if err := structError(snapshotValidate.Struct(data.Data)); err != nil {
		return err
	}
	for i := range data.Aliases {
		if err := structError(snapshotValidate.Struct(&data.Aliases[i])); err != nil {
			return err
		}
	}
	for i := range data.Identifiers {
		if err := structError(snapshotValidate.Struct(&data.Identifiers[i])); err != nil {
			return err
		}
	}

	refs := data.Data.TypeRefs()
	for _, a := range data.Aliases {
		if a.LanguageID != nil {
			refs = append(refs, entities.TypeRef{Category: entities.CategoryLanguage, ID: *a.LanguageID, Field: "aliases.language_id"})
		}
	}
	for _, id := range data.Identifiers {
		refs = append(refs, entities.TypeRef{Category: entities.CategoryIdentifierType, ID: id.TypeID, Field: "identifiers.identifier_type_id"})
	}
	if err := v.types.Validate(ctx, refs); err != nil {
		return err
	}

	for _, ref := range data.Data.EntityRefs() {
		if err := v.checkEntityRef(ctx, ref.Field, ref.BBID, ref.Kind); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRelationshipData checks the relationship type and participants.
func (v *Validator) ValidateRelationshipData(ctx context.Context, data *entities.RelationshipData) error {
	if len(data.Entities) < 2 {
		return &entities.ValidationError{Field: "entities", Message: "a relationship needs at least two entities"}
	}
	for i := range data.Entities {
		if err := structError(snapshotValidate.Struct(&data.Entities[i])); err != nil {
			return err
		}
	}
	for i := range data.Texts {
		if err := structError(snapshotValidate.Struct(&data.Texts[i])); err != nil {
			return err
		}
	}
	err := v.types.Validate(ctx, []entities.TypeRef{{
		Category: entities.CategoryRelationshipType,
		ID:       data.TypeID,
		Field:    "relationship_type_id",
	}})
	if err != nil {
		return err
	}
	for _, e := range data.Entities {
		if err := v.checkEntityRef(ctx, "entities", e.BBID, ""); err != nil {
			return err
		}
	}
	return nil
}

// checkEntityRef verifies that bbid names a live entity of the wanted kind
// (any kind when empty).
func (v *Validator) checkEntityRef(ctx context.Context, field, bbid string, kind entities.EntityKind) error {
	if !entities.IsValidBBID(bbid) {
		return &entities.ValidationError{Field: field, Message: fmt.Sprintf("%q is not a valid bbid", bbid)}
	}
	entity, err := v.relationalDB.FindEntity(ctx, bbid)
	if err != nil {
		return fmt.Errorf("finding referenced entity: %w", err)
	}
	if entity == nil {
		return &entities.ValidationError{Field: field, Message: fmt.Sprintf("entity %s does not exist", bbid)}
	}
	if kind != "" && entity.Kind != kind {
		return &entities.ValidationError{Field: field, Message: fmt.Sprintf("entity %s is a %s, not a %s", bbid, entity.Kind, kind)}
	}
	if entity.MasterRevisionID != nil {
		rev, err := v.relationalDB.FindRevision(ctx, *entity.MasterRevisionID)
		if err != nil {
			return fmt.Errorf("finding referenced revision: %w", err)
		}
		if rev != nil && rev.IsDeletion() {
			return &entities.ValidationError{Field: field, Message: fmt.Sprintf("entity %s is deleted", bbid)}
		}
	}
	return nil
}

// ValidateEditor checks an editor profile and its editor type.
func (v *Validator) ValidateEditor(ctx context.Context, editor *entities.Editor) error {
	if editor.ID < 0 {
		return &entities.ValidationError{Field: "id", Message: "must be positive"}
	}
	if err := structError(snapshotValidate.Struct(editor)); err != nil {
		return err
	}
	return v.types.Validate(ctx, []entities.TypeRef{
		{Category: entities.CategoryEditorType, ID: editor.EditorTypeID, Field: "editor_type_id"},
	})
}

// structError converts validator errors into a ValidationError.
func structError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &entities.ValidationError{
			Field:   toSnakeCase(fe.Field()),
			Message: fmt.Sprintf("failed %q check", fe.Tag()),
		}
	}
	return &entities.ValidationError{Message: err.Error()}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (s[i-1] < 'A' || s[i-1] > 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
