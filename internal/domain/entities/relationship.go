package entities

// RelationshipData is an immutable snapshot of a relationship.
type RelationshipData struct {
	ID       int64                `json:"relationship_data_id"`
	TypeID   int64                `json:"relationship_type_id"`
	Entities []RelationshipEntity `json:"entities"`
	Texts    []RelationshipText   `json:"texts"`
}

// RelationshipEntity is a participant of a relationship at a position.
type RelationshipEntity struct {
	BBID     string `json:"entity_gid" validate:"required,uuid"`
	Position int    `json:"position" validate:"gte=0"`
}

// RelationshipText is a free-text segment of a relationship at a position.
type RelationshipText struct {
	Text     string `json:"text"`
	Position int    `json:"position" validate:"gte=0"`
}

// Fields returns the versioned fields in a stable order.
func (d *RelationshipData) Fields() []Field {
	if d == nil {
		return []Field{
			{Name: "relationship_type_id"},
			{Name: "entities"},
			{Name: "texts"},
		}
	}
	return []Field{
		{Name: "relationship_type_id", Value: d.TypeID},
		{Name: "entities", Value: d.Entities},
		{Name: "texts", Value: d.Texts},
	}
}

// Involves reports whether bbid participates in the relationship.
func (d *RelationshipData) Involves(bbid string) bool {
	for _, e := range d.Entities {
		if e.BBID == bbid {
			return true
		}
	}
	return false
}
