package entities

// TypeCategory groups the lookup codes referenced by snapshots.
type TypeCategory string

const (
	CategoryCreatorType      TypeCategory = "creator_type"
	CategoryPublicationType  TypeCategory = "publication_type"
	CategoryPublisherType    TypeCategory = "publisher_type"
	CategoryWorkType         TypeCategory = "work_type"
	CategoryEditionFormat    TypeCategory = "edition_format"
	CategoryEditionStatus    TypeCategory = "edition_status"
	CategoryLanguage         TypeCategory = "language"
	CategoryGender           TypeCategory = "gender"
	CategoryIdentifierType   TypeCategory = "identifier_type"
	CategoryRelationshipType TypeCategory = "relationship_type"
	CategoryEditorType       TypeCategory = "editor_type"
)

// AllCategories lists every type category.
var AllCategories = []TypeCategory{
	CategoryCreatorType,
	CategoryPublicationType,
	CategoryPublisherType,
	CategoryWorkType,
	CategoryEditionFormat,
	CategoryEditionStatus,
	CategoryLanguage,
	CategoryGender,
	CategoryIdentifierType,
	CategoryRelationshipType,
	CategoryEditorType,
}

// TypeCode is one row of a lookup table.
type TypeCode struct {
	Category TypeCategory `json:"category"`
	ID       int64        `json:"id"`
	Label    string       `json:"label"`
}

// TypeRef is a reference from a snapshot field to a type code.
type TypeRef struct {
	Category TypeCategory
	ID       int64
	Field    string
}

// DefaultTypeCodes are seeded on init.
var DefaultTypeCodes = []TypeCode{
	{Category: CategoryCreatorType, ID: 1, Label: "Author"},
	{Category: CategoryCreatorType, ID: 2, Label: "Illustrator"},
	{Category: CategoryCreatorType, ID: 3, Label: "Translator"},
	{Category: CategoryCreatorType, ID: 4, Label: "Editor"},
	{Category: CategoryPublicationType, ID: 1, Label: "Book"},
	{Category: CategoryPublicationType, ID: 2, Label: "Magazine"},
	{Category: CategoryPublicationType, ID: 3, Label: "Anthology"},
	{Category: CategoryPublisherType, ID: 1, Label: "Publishing House"},
	{Category: CategoryPublisherType, ID: 2, Label: "Imprint"},
	{Category: CategoryWorkType, ID: 1, Label: "Novel"},
	{Category: CategoryWorkType, ID: 2, Label: "Short Story"},
	{Category: CategoryWorkType, ID: 3, Label: "Poem"},
	{Category: CategoryWorkType, ID: 4, Label: "Essay"},
	{Category: CategoryEditionFormat, ID: 1, Label: "Hardcover"},
	{Category: CategoryEditionFormat, ID: 2, Label: "Paperback"},
	{Category: CategoryEditionFormat, ID: 3, Label: "eBook"},
	{Category: CategoryEditionFormat, ID: 4, Label: "Audiobook"},
	{Category: CategoryEditionStatus, ID: 1, Label: "Official"},
	{Category: CategoryEditionStatus, ID: 2, Label: "Draft"},
	{Category: CategoryLanguage, ID: 1, Label: "English"},
	{Category: CategoryLanguage, ID: 2, Label: "German"},
	{Category: CategoryLanguage, ID: 3, Label: "French"},
	{Category: CategoryLanguage, ID: 4, Label: "Spanish"},
	{Category: CategoryGender, ID: 1, Label: "Male"},
	{Category: CategoryGender, ID: 2, Label: "Female"},
	{Category: CategoryGender, ID: 3, Label: "Other"},
	{Category: CategoryIdentifierType, ID: 1, Label: "ISBN-13"},
	{Category: CategoryIdentifierType, ID: 2, Label: "ISBN-10"},
	{Category: CategoryIdentifierType, ID: 3, Label: "VIAF"},
	{Category: CategoryIdentifierType, ID: 4, Label: "Wikidata"},
	{Category: CategoryRelationshipType, ID: 1, Label: "Authored"},
	{Category: CategoryRelationshipType, ID: 2, Label: "Illustrated"},
	{Category: CategoryRelationshipType, ID: 3, Label: "Translated"},
	{Category: CategoryRelationshipType, ID: 4, Label: "Published"},
	{Category: CategoryRelationshipType, ID: 5, Label: "Edition Of"},
	{Category: CategoryEditorType, ID: 1, Label: "Editor"},
	{Category: CategoryEditorType, ID: 2, Label: "Bot"},
}

// IsValidCategory reports whether c is a known category.
func IsValidCategory(c TypeCategory) bool {
	for _, known := range AllCategories {
		if known == c {
			return true
		}
	}
	return false
}
