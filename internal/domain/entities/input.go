package entities

import (
	"encoding/json"
	"fmt"
)

// EntityInput is a sparse set of overrides applied to a snapshot. Nil or
// absent members leave the base value untouched.
type EntityInput struct {
	Note           string             `json:"note,omitempty"`
	Data           json.RawMessage    `json:"data,omitempty"`
	Aliases        []AliasChange      `json:"aliases,omitempty"`
	Identifiers    []IdentifierChange `json:"identifiers,omitempty"`
	Annotation     *string            `json:"annotation,omitempty"`
	Disambiguation *string            `json:"disambiguation,omitempty"`
}

// AliasInput holds the alias attributes supplied by a caller.
type AliasInput struct {
	Name       *string `json:"name,omitempty"`
	SortName   *string `json:"sort_name,omitempty"`
	LanguageID *int64  `json:"language_id,omitempty"`
	Primary    *bool   `json:"primary,omitempty"`
	Default    *bool   `json:"default,omitempty"`
}

// AliasChange is one element of the alias reconciliation list, encoded as
// [id|null, value|null]: insert, delete or replace.
type AliasChange struct {
	ID    *int64
	Value *AliasInput
}

// IdentifierInput holds the identifier attributes supplied by a caller.
type IdentifierInput struct {
	TypeID *int64  `json:"identifier_type_id,omitempty"`
	Value  *string `json:"value,omitempty"`
}

// IdentifierChange is the identifier counterpart of AliasChange.
type IdentifierChange struct {
	ID    *int64
	Value *IdentifierInput
}

// InsertAlias builds a change that adds a new alias.
func InsertAlias(v AliasInput) AliasChange {
	return AliasChange{Value: &v}
}

// DeleteAlias builds a change that removes alias id.
func DeleteAlias(id int64) AliasChange {
	return AliasChange{ID: &id}
}

// ReplaceAlias builds a change that replaces alias id with a new row.
func ReplaceAlias(id int64, v AliasInput) AliasChange {
	return AliasChange{ID: &id, Value: &v}
}

func (c AliasChange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.ID, c.Value})
}

func (c *AliasChange) UnmarshalJSON(b []byte) error {
	return unmarshalChange(b, &c.ID, &c.Value)
}

func (c IdentifierChange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.ID, c.Value})
}

func (c *IdentifierChange) UnmarshalJSON(b []byte) error {
	return unmarshalChange(b, &c.ID, &c.Value)
}

func unmarshalChange(b []byte, id **int64, value any) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("change must be a [id, value] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("change must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], id); err != nil {
		return fmt.Errorf("decoding change id: %w", err)
	}
	if err := json.Unmarshal(pair[1], value); err != nil {
		return fmt.Errorf("decoding change value: %w", err)
	}
	return nil
}

// RelationshipInput is a sparse set of overrides for a relationship snapshot.
type RelationshipInput struct {
	Note     string               `json:"note,omitempty"`
	TypeID   *int64               `json:"relationship_type_id,omitempty"`
	Entities []RelationshipEntity `json:"entities,omitempty"`
	Texts    []RelationshipText   `json:"texts,omitempty"`
}
