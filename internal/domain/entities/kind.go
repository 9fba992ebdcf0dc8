package entities

import (
	"fmt"
	"strings"
)

// EntityKind discriminates the kind-specific payload of an entity.
type EntityKind string

const (
	KindCreator     EntityKind = "creator"
	KindPublication EntityKind = "publication"
	KindEdition     EntityKind = "edition"
	KindPublisher   EntityKind = "publisher"
	KindWork        EntityKind = "work"
)

// AllKinds lists every entity kind in display order.
var AllKinds = []EntityKind{KindCreator, KindPublication, KindEdition, KindPublisher, KindWork}

// KindData is the kind-specific part of an entity snapshot.
type KindData interface {
	Kind() EntityKind
	// Fields returns the versioned fields in a stable order.
	Fields() []Field
	// TypeRefs returns the type codes the payload points at.
	TypeRefs() []TypeRef
	// EntityRefs returns the other entities the payload points at.
	EntityRefs() []EntityRef
}

// Field is one named versioned value of a snapshot.
type Field struct {
	Name  string
	Value any
}

// EntityRef is a reference from a payload field to another entity.
type EntityRef struct {
	Field string
	BBID  string
	Kind  EntityKind
}

// KindSpec describes how a kind is stored and validated.
type KindSpec struct {
	Kind    EntityKind
	DataKey string
	NewData func() KindData
}

var kindSpecs = map[EntityKind]KindSpec{
	KindCreator: {
		Kind:    KindCreator,
		DataKey: "creator_data",
		NewData: func() KindData { return &CreatorData{} },
	},
	KindPublication: {
		Kind:    KindPublication,
		DataKey: "publication_data",
		NewData: func() KindData { return &PublicationData{} },
	},
	KindEdition: {
		Kind:    KindEdition,
		DataKey: "edition_data",
		NewData: func() KindData { return &EditionData{} },
	},
	KindPublisher: {
		Kind:    KindPublisher,
		DataKey: "publisher_data",
		NewData: func() KindData { return &PublisherData{} },
	},
	KindWork: {
		Kind:    KindWork,
		DataKey: "work_data",
		NewData: func() KindData { return &WorkData{LanguageIDs: []int64{}} },
	},
}

// SpecFor returns the storage and validation rules of a kind.
func SpecFor(kind EntityKind) (KindSpec, bool) {
	spec, ok := kindSpecs[kind]
	return spec, ok
}

// IsValid reports whether k is a known kind.
func (k EntityKind) IsValid() bool {
	_, ok := kindSpecs[k]
	return ok
}

// ParseKind converts user input to an EntityKind.
func ParseKind(s string) (EntityKind, error) {
	k := EntityKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown entity kind %q", s)}
	}
	return k, nil
}
