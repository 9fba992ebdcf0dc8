package services

import (
	"context"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

// DiffEntity compares two entity snapshots field by field. Either side may be
// nil. Every field of the schema is present, changed or not; collections are
// compared as a whole.
func DiffEntity(older, newer *entities.EntityData) entities.Delta {
	fields := []entities.FieldDelta{
		{Name: "annotation", Old: annotationOf(older), New: annotationOf(newer)},
		{Name: "disambiguation", Old: disambiguationOf(older), New: disambiguationOf(newer)},
		{Name: "default_alias", Old: defaultAliasOf(older), New: defaultAliasOf(newer)},
		{Name: "aliases", Old: aliasesOf(older), New: aliasesOf(newer)},
		{Name: "identifiers", Old: identifiersOf(older), New: identifiersOf(newer)},
	}

	oldFields := kindFieldsOf(older)
	newFields := kindFieldsOf(newer)
	schema := newFields
	if schema == nil {
		schema = oldFields
	}
	for _, f := range schema {
		fields = append(fields, entities.FieldDelta{
			Name: f.Name,
			Old:  lookupField(oldFields, f.Name),
			New:  lookupField(newFields, f.Name),
		})
	}
	return entities.Delta{Fields: fields}
}

// DiffRelationship compares two relationship snapshots field by field.
func DiffRelationship(older, newer *entities.RelationshipData) entities.Delta {
	oldFields := older.Fields()
	newFields := newer.Fields()
	fields := make([]entities.FieldDelta, len(newFields))
	for i, f := range newFields {
		fields[i] = entities.FieldDelta{Name: f.Name, Old: oldFields[i].Value, New: f.Value}
	}
	return entities.Delta{Fields: fields}
}

func annotationOf(d *entities.EntityData) any {
	if d == nil || d.Annotation == nil {
		return nil
	}
	return d.Annotation
}

func disambiguationOf(d *entities.EntityData) any {
	if d == nil || d.Disambiguation == nil {
		return nil
	}
	return d.Disambiguation
}

func defaultAliasOf(d *entities.EntityData) any {
	if a := d.DefaultAlias(); a != nil {
		return a
	}
	return nil
}

func aliasesOf(d *entities.EntityData) any {
	if d == nil {
		return nil
	}
	return d.Aliases
}

func identifiersOf(d *entities.EntityData) any {
	if d == nil {
		return nil
	}
	return d.Identifiers
}

func kindFieldsOf(d *entities.EntityData) []entities.Field {
	if d == nil {
		return nil
	}
	if d.Data == nil {
		spec, ok := entities.SpecFor(d.Kind)
		if !ok {
			return nil
		}
		return spec.NewData().Fields()
	}
	return d.Data.Fields()
}

func lookupField(fields []entities.Field, name string) any {
	for _, f := range fields {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// RevisionChanges pairs a revision with the delta shown for it.
type RevisionChanges struct {
	Against *int64         `json:"against_revision_id"`
	Changes entities.Delta `json:"changes"`
}

// DiffService resolves revisions to snapshots and diffs them.
type DiffService struct {
	relationalDB ports.RelationalDB
}

// NewDiffService creates a new DiffService.
func NewDiffService(relationalDB ports.RelationalDB) *DiffService {
	return &DiffService{relationalDB: relationalDB}
}

// ChangesForRevision diffs the revision's snapshot against every child
// revision, or against base when one is given. A revision without children
// is diffed against nothing. A deleting revision, or a base that does not
// exist, yields no changes.
func (s *DiffService) ChangesForRevision(ctx context.Context, rev *entities.Revision, base *int64) ([]RevisionChanges, error) {
	if rev.IsDeletion() {
		return []RevisionChanges{}, nil
	}

	var right []entities.Revision
	if base != nil {
		b, err := s.relationalDB.FindRevision(ctx, *base)
		if err != nil {
			return nil, fmt.Errorf("finding base revision: %w", err)
		}
		if b == nil || b.Target.Kind() != rev.Target.Kind() {
			return []RevisionChanges{}, nil
		}
		right = []entities.Revision{*b}
	} else {
		children, err := s.relationalDB.FindChildRevisions(ctx, rev.ID)
		if err != nil {
			return nil, fmt.Errorf("finding child revisions: %w", err)
		}
		right = children
	}

	if len(right) == 0 {
		delta, err := s.diffRevisions(ctx, nil, rev)
		if err != nil {
			return nil, err
		}
		return []RevisionChanges{{Changes: delta}}, nil
	}

	changes := make([]RevisionChanges, 0, len(right))
	for i := range right {
		other := right[i]
		delta, err := s.diffRevisions(ctx, rev, &other)
		if err != nil {
			return nil, err
		}
		against := other.ID
		changes = append(changes, RevisionChanges{Against: &against, Changes: delta})
	}
	return changes, nil
}

// ChangesFromParent diffs the revision's snapshot against its parent's, which
// is what the revision changed.
func (s *DiffService) ChangesFromParent(ctx context.Context, rev *entities.Revision) (entities.Delta, error) {
	var parent *entities.Revision
	if rev.ParentID != nil {
		p, err := s.relationalDB.FindRevision(ctx, *rev.ParentID)
		if err != nil {
			return entities.Delta{}, fmt.Errorf("finding parent revision: %w", err)
		}
		parent = p
	}
	if parent == nil {
		return s.diffRevisions(ctx, nil, rev)
	}
	return s.diffRevisions(ctx, parent, rev)
}

// diffRevisions diffs older against newer; a nil revision is "nothing".
func (s *DiffService) diffRevisions(ctx context.Context, older, newer *entities.Revision) (entities.Delta, error) {
	kind := entities.RevisionEntity
	if older != nil {
		kind = older.Target.Kind()
	} else if newer != nil {
		kind = newer.Target.Kind()
	}

	if kind == entities.RevisionRelationship {
		a, err := s.relationshipDataOf(ctx, older)
		if err != nil {
			return entities.Delta{}, err
		}
		b, err := s.relationshipDataOf(ctx, newer)
		if err != nil {
			return entities.Delta{}, err
		}
		return DiffRelationship(a, b), nil
	}

	a, err := s.entityDataOf(ctx, older)
	if err != nil {
		return entities.Delta{}, err
	}
	b, err := s.entityDataOf(ctx, newer)
	if err != nil {
		return entities.Delta{}, err
	}
	return DiffEntity(a, b), nil
}

func (s *DiffService) entityDataOf(ctx context.Context, rev *entities.Revision) (*entities.EntityData, error) {
	if rev == nil || rev.IsDeletion() {
		return nil, nil
	}
	data, err := s.relationalDB.FindEntityData(ctx, *rev.Target.SnapshotID())
	if err != nil {
		return nil, fmt.Errorf("loading entity data: %w", err)
	}
	return data, nil
}

func (s *DiffService) relationshipDataOf(ctx context.Context, rev *entities.Revision) (*entities.RelationshipData, error) {
	if rev == nil || rev.IsDeletion() {
		return nil, nil
	}
	data, err := s.relationalDB.FindRelationshipData(ctx, *rev.Target.SnapshotID())
	if err != nil {
		return nil, fmt.Errorf("loading relationship data: %w", err)
	}
	return data, nil
}

// MergePatch returns the RFC 7386 merge patch turning older into newer.
// A nil side is encoded as an empty object.
func MergePatch(older, newer *entities.EntityData) (json.RawMessage, error) {
	a, err := snapshotDocument(older)
	if err != nil {
		return nil, err
	}
	b, err := snapshotDocument(newer)
	if err != nil {
		return nil, err
	}
	patch, err := jsonpatch.CreateMergePatch(a, b)
	if err != nil {
		return nil, fmt.Errorf("creating merge patch: %w", err)
	}
	return patch, nil
}

// snapshotDocument encodes the versioned content without row bookkeeping.
func snapshotDocument(d *entities.EntityData) ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	doc := map[string]any{}
	for _, f := range DiffEntity(nil, d).Fields {
		doc[f.Name] = f.New
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return b, nil
}

// TextSpan is one run of a character-level text diff.
type TextSpan struct {
	Op   string `json:"op"`
	Text string `json:"text"`
}

// Text diff operations.
const (
	TextEqual  = "equal"
	TextInsert = "insert"
	TextDelete = "delete"
)

// TextDiff returns a character diff of two texts with a semantic cleanup
// pass, used to render annotation and disambiguation edits.
func TextDiff(older, newer string) []TextSpan {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(older, newer, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	spans := make([]TextSpan, 0, len(diffs))
	for _, d := range diffs {
		var op string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = TextInsert
		case diffmatchpatch.DiffDelete:
			op = TextDelete
		default:
			op = TextEqual
		}
		spans = append(spans, TextSpan{Op: op, Text: d.Text})
	}
	return spans
}
