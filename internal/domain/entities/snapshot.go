package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntityData is an immutable snapshot of an entity's versioned content.
// Aliases and identifiers are shared rows; a snapshot only links them.
type EntityData struct {
	ID             int64           `json:"entity_data_id"`
	Kind           EntityKind      `json:"kind"`
	Data           KindData        `json:"-"`
	Aliases        []Alias         `json:"aliases"`
	Identifiers    []Identifier    `json:"identifiers"`
	Annotation     *Annotation     `json:"annotation"`
	Disambiguation *Disambiguation `json:"disambiguation"`
}

// Alias is a name variant of an entity.
type Alias struct {
	ID         int64  `json:"id"`
	Name       string `json:"name" validate:"required"`
	SortName   string `json:"sort_name"`
	LanguageID *int64 `json:"language_id"`
	Primary    bool   `json:"primary"`
	// Default belongs to the snapshot linking the alias, not to the alias row.
	Default bool `json:"default"`
}

// Identifier is an external identifier of a typed kind (ISBN, VIAF, ...).
type Identifier struct {
	ID     int64  `json:"id"`
	TypeID int64  `json:"identifier_type_id" validate:"required"`
	Value  string `json:"value" validate:"required"`
}

// Annotation is free-form text attached to a snapshot.
type Annotation struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Disambiguation is a short comment telling apart entities with similar names.
type Disambiguation struct {
	ID      int64  `json:"id"`
	Comment string `json:"comment"`
}

// DefaultAlias returns the alias flagged as default, or nil.
func (d *EntityData) DefaultAlias() *Alias {
	if d == nil {
		return nil
	}
	for i := range d.Aliases {
		if d.Aliases[i].Default {
			return &d.Aliases[i]
		}
	}
	return nil
}

// DisplayName returns the default alias name, or the first alias name.
func (d *EntityData) DisplayName() string {
	if a := d.DefaultAlias(); a != nil {
		return a.Name
	}
	if d != nil && len(d.Aliases) > 0 {
		return d.Aliases[0].Name
	}
	return ""
}

type entityDataJSON struct {
	ID             int64           `json:"entity_data_id"`
	Kind           EntityKind      `json:"kind"`
	Data           json.RawMessage `json:"data"`
	Aliases        []Alias         `json:"aliases"`
	Identifiers    []Identifier    `json:"identifiers"`
	Annotation     *Annotation     `json:"annotation"`
	Disambiguation *Disambiguation `json:"disambiguation"`
}

// MarshalJSON encodes the kind payload under "data".
func (d EntityData) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s data: %w", d.Kind, err)
	}
	return json.Marshal(entityDataJSON{
		ID:             d.ID,
		Kind:           d.Kind,
		Data:           raw,
		Aliases:        d.Aliases,
		Identifiers:    d.Identifiers,
		Annotation:     d.Annotation,
		Disambiguation: d.Disambiguation,
	})
}

// UnmarshalJSON decodes "data" into the payload type of the snapshot's kind.
func (d *EntityData) UnmarshalJSON(b []byte) error {
	var aux entityDataJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	data, err := DecodeKindData(aux.Kind, aux.Data)
	if err != nil {
		return err
	}
	*d = EntityData{
		ID:             aux.ID,
		Kind:           aux.Kind,
		Data:           data,
		Aliases:        aux.Aliases,
		Identifiers:    aux.Identifiers,
		Annotation:     aux.Annotation,
		Disambiguation: aux.Disambiguation,
	}
	return nil
}

// DecodeKindData decodes a JSON payload into the type registered for kind.
func DecodeKindData(kind EntityKind, raw []byte) (KindData, error) {
	spec, ok := SpecFor(kind)
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	data := spec.NewData()
	if len(raw) == 0 || string(raw) == "null" {
		return data, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("decoding %s data: %w", kind, err)
	}
	return data, nil
}
