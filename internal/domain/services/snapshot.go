package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

// CopyWith builds a new snapshot of the given kind from base and a sparse set
// of overrides. Anything not overridden is carried over from base; carried
// child rows keep their IDs so the new snapshot links the same rows. New rows
// have a zero ID until committed. A nil base yields defaults: empty
// collections and null scalars.
func CopyWith(kind entities.EntityKind, base *entities.EntityData, in *entities.EntityInput) (*entities.EntityData, error) {
	spec, ok := entities.SpecFor(kind)
	if !ok {
		return nil, &entities.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown entity kind %q", kind)}
	}
	if base != nil && base.Kind != kind {
		return nil, fmt.Errorf("snapshot %d is a %s, not a %s", base.ID, base.Kind, kind)
	}
	if in == nil {
		in = &entities.EntityInput{}
	}

	data, err := mergeKindData(spec, base, in.Data)
	if err != nil {
		return nil, err
	}

	out := &entities.EntityData{
		Kind: kind,
		Data: data,
	}

	var baseAliases []entities.Alias
	var baseIdentifiers []entities.Identifier
	if base != nil {
		baseAliases = base.Aliases
		baseIdentifiers = base.Identifiers
	}

	out.Aliases, err = reconcileAliases(baseAliases, in.Aliases)
	if err != nil {
		return nil, err
	}
	out.Identifiers, err = reconcileIdentifiers(baseIdentifiers, in.Identifiers)
	if err != nil {
		return nil, err
	}

	if base != nil {
		out.Annotation = carryAnnotation(base.Annotation)
		out.Disambiguation = carryDisambiguation(base.Disambiguation)
	}
	if in.Annotation != nil {
		out.Annotation = overrideAnnotation(out.Annotation, *in.Annotation)
	}
	if in.Disambiguation != nil {
		out.Disambiguation = overrideDisambiguation(out.Disambiguation, *in.Disambiguation)
	}
	return out, nil
}

// mergeKindData applies patch to the base payload as an RFC 7386 merge patch.
func mergeKindData(spec entities.KindSpec, base *entities.EntityData, patch json.RawMessage) (entities.KindData, error) {
	var current entities.KindData = spec.NewData()
	if base != nil && base.Data != nil {
		current = base.Data
	}
	doc, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s data: %w", spec.Kind, err)
	}
	if len(bytes.TrimSpace(patch)) > 0 && !bytes.Equal(bytes.TrimSpace(patch), []byte("null")) {
		doc, err = jsonpatch.MergePatch(doc, patch)
		if err != nil {
			return nil, &entities.ValidationError{Field: "data", Message: fmt.Sprintf("invalid %s: %v", spec.DataKey, err)}
		}
	}

	data := spec.NewData()
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(data); err != nil {
		return nil, &entities.ValidationError{Field: "data", Message: fmt.Sprintf("invalid %s: %v", spec.DataKey, err)}
	}
	return data, nil
}

// reconcileAliases applies [id|null, value|null] changes in order. Replacing an
// alias allocates a new row in the same position; IDs not present in base are
// skipped. Only an explicit default flag sets the default alias, so deleting
// it leaves the snapshot without one. The result is never nil.
func reconcileAliases(base []entities.Alias, changes []entities.AliasChange) ([]entities.Alias, error) {
	result := make([]entities.Alias, 0, len(base)+len(changes))
	result = append(result, base...)

	for i, c := range changes {
		switch {
		case c.ID == nil && c.Value == nil:
			continue
		case c.ID == nil:
			alias, err := newAlias(c.Value)
			if err != nil {
				return nil, fmt.Errorf("aliases[%d]: %w", i, err)
			}
			result = append(result, alias)
			if c.Value.Default != nil && *c.Value.Default {
				setDefaultAlias(result, len(result)-1)
			}
		case c.Value == nil:
			idx := aliasIndex(result, *c.ID)
			if idx < 0 {
				continue
			}
			result = append(result[:idx], result[idx+1:]...)
		default:
			idx := aliasIndex(result, *c.ID)
			if idx < 0 {
				continue
			}
			replaced, err := overlayAlias(result[idx], c.Value)
			if err != nil {
				return nil, fmt.Errorf("aliases[%d]: %w", i, err)
			}
			result[idx] = replaced
			if c.Value.Default != nil {
				if *c.Value.Default {
					setDefaultAlias(result, idx)
				} else {
					result[idx].Default = false
				}
			}
		}
	}
	return result, nil
}

func newAlias(v *entities.AliasInput) (entities.Alias, error) {
	if v.Name == nil || strings.TrimSpace(*v.Name) == "" {
		return entities.Alias{}, &entities.ValidationError{Field: "aliases", Message: "alias name is required"}
	}
	alias := entities.Alias{
		Name:       strings.TrimSpace(*v.Name),
		LanguageID: v.LanguageID,
	}
	alias.SortName = alias.Name
	if v.SortName != nil && strings.TrimSpace(*v.SortName) != "" {
		alias.SortName = strings.TrimSpace(*v.SortName)
	}
	if v.Primary != nil {
		alias.Primary = *v.Primary
	}
	return alias, nil
}

// overlayAlias copies old and applies the provided attributes. The row is
// only reallocated when a stored attribute actually changes.
func overlayAlias(old entities.Alias, v *entities.AliasInput) (entities.Alias, error) {
	next := old
	if v.Name != nil {
		if strings.TrimSpace(*v.Name) == "" {
			return entities.Alias{}, &entities.ValidationError{Field: "aliases", Message: "alias name is required"}
		}
		next.Name = strings.TrimSpace(*v.Name)
	}
	if v.SortName != nil {
		next.SortName = strings.TrimSpace(*v.SortName)
	}
	if v.LanguageID != nil {
		next.LanguageID = v.LanguageID
	}
	if v.Primary != nil {
		next.Primary = *v.Primary
	}
	if !sameAliasRow(old, next) {
		next.ID = 0
	}
	return next, nil
}

func sameAliasRow(a, b entities.Alias) bool {
	return a.Name == b.Name &&
		a.SortName == b.SortName &&
		a.Primary == b.Primary &&
		equalInt64Ptr(a.LanguageID, b.LanguageID)
}

func aliasIndex(aliases []entities.Alias, id int64) int {
	for i := range aliases {
		if aliases[i].ID == id && id != 0 {
			return i
		}
	}
	return -1
}

func setDefaultAlias(aliases []entities.Alias, idx int) {
	for i := range aliases {
		aliases[i].Default = i == idx
	}
}

// reconcileIdentifiers is the identifier counterpart of reconcileAliases.
func reconcileIdentifiers(base []entities.Identifier, changes []entities.IdentifierChange) ([]entities.Identifier, error) {
	result := make([]entities.Identifier, 0, len(base)+len(changes))
	result = append(result, base...)

	for i, c := range changes {
		switch {
		case c.ID == nil && c.Value == nil:
			continue
		case c.ID == nil:
			if c.Value.TypeID == nil || c.Value.Value == nil || strings.TrimSpace(*c.Value.Value) == "" {
				return nil, &entities.ValidationError{
					Field:   fmt.Sprintf("identifiers[%d]", i),
					Message: "identifier type and value are required",
				}
			}
			result = append(result, entities.Identifier{
				TypeID: *c.Value.TypeID,
				Value:  strings.TrimSpace(*c.Value.Value),
			})
		case c.Value == nil:
			idx := identifierIndex(result, *c.ID)
			if idx < 0 {
				continue
			}
			result = append(result[:idx], result[idx+1:]...)
		default:
			idx := identifierIndex(result, *c.ID)
			if idx < 0 {
				continue
			}
			next := result[idx]
			if c.Value.TypeID != nil {
				next.TypeID = *c.Value.TypeID
			}
			if c.Value.Value != nil {
				next.Value = strings.TrimSpace(*c.Value.Value)
			}
			if next.TypeID != result[idx].TypeID || next.Value != result[idx].Value {
				next.ID = 0
			}
			result[idx] = next
		}
	}
	return result, nil
}

func identifierIndex(identifiers []entities.Identifier, id int64) int {
	for i := range identifiers {
		if identifiers[i].ID == id && id != 0 {
			return i
		}
	}
	return -1
}

func carryAnnotation(a *entities.Annotation) *entities.Annotation {
	if a == nil {
		return nil
	}
	out := *a
	return &out
}

func carryDisambiguation(d *entities.Disambiguation) *entities.Disambiguation {
	if d == nil {
		return nil
	}
	out := *d
	return &out
}

// overrideAnnotation keeps the current row when the text is unchanged and
// clears the annotation when the text is blank.
func overrideAnnotation(current *entities.Annotation, content string) *entities.Annotation {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if current != nil && current.Content == content {
		return current
	}
	return &entities.Annotation{Content: content}
}

func overrideDisambiguation(current *entities.Disambiguation, comment string) *entities.Disambiguation {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil
	}
	if current != nil && current.Comment == comment {
		return current
	}
	return &entities.Disambiguation{Comment: comment}
}

// CopyRelationshipWith builds a new relationship snapshot from base and
// overrides. Participants and texts are kept ordered by position.
func CopyRelationshipWith(base *entities.RelationshipData, in *entities.RelationshipInput) *entities.RelationshipData {
	out := &entities.RelationshipData{
		Entities: []entities.RelationshipEntity{},
		Texts:    []entities.RelationshipText{},
	}
	if base != nil {
		out.TypeID = base.TypeID
		out.Entities = append(out.Entities, base.Entities...)
		out.Texts = append(out.Texts, base.Texts...)
	}
	if in == nil {
		return out
	}
	if in.TypeID != nil {
		out.TypeID = *in.TypeID
	}
	if in.Entities != nil {
		out.Entities = append([]entities.RelationshipEntity{}, in.Entities...)
	}
	if in.Texts != nil {
		out.Texts = append([]entities.RelationshipText{}, in.Texts...)
	}
	sort.SliceStable(out.Entities, func(i, j int) bool { return out.Entities[i].Position < out.Entities[j].Position })
	sort.SliceStable(out.Texts, func(i, j int) bool { return out.Texts[i].Position < out.Texts[j].Position })
	return out
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
