package entities

// CreatorData is the payload of a creator (author, illustrator, translator).
type CreatorData struct {
	CreatorTypeID      int64   `json:"creator_type_id" validate:"required"`
	GenderID           *int64  `json:"gender_id"`
	BeginDate          *string `json:"begin_date"`
	BeginDatePrecision *string `json:"begin_date_precision" validate:"omitempty,oneof=year month day"`
	EndDate            *string `json:"end_date"`
	EndDatePrecision   *string `json:"end_date_precision" validate:"omitempty,oneof=year month day"`
	Ended              bool    `json:"ended"`
}

func (d *CreatorData) Kind() EntityKind { return KindCreator }

func (d *CreatorData) Fields() []Field {
	return []Field{
		{Name: "creator_type_id", Value: d.CreatorTypeID},
		{Name: "gender_id", Value: d.GenderID},
		{Name: "begin_date", Value: d.BeginDate},
		{Name: "begin_date_precision", Value: d.BeginDatePrecision},
		{Name: "end_date", Value: d.EndDate},
		{Name: "end_date_precision", Value: d.EndDatePrecision},
		{Name: "ended", Value: d.Ended},
	}
}

func (d *CreatorData) TypeRefs() []TypeRef {
	refs := []TypeRef{{Category: CategoryCreatorType, ID: d.CreatorTypeID, Field: "creator_type_id"}}
	if d.GenderID != nil {
		refs = append(refs, TypeRef{Category: CategoryGender, ID: *d.GenderID, Field: "gender_id"})
	}
	return refs
}

func (d *CreatorData) EntityRefs() []EntityRef { return nil }

// PublicationData is the payload of a publication (book, magazine).
type PublicationData struct {
	PublicationTypeID int64 `json:"publication_type_id" validate:"required"`
}

func (d *PublicationData) Kind() EntityKind { return KindPublication }

func (d *PublicationData) Fields() []Field {
	return []Field{{Name: "publication_type_id", Value: d.PublicationTypeID}}
}

func (d *PublicationData) TypeRefs() []TypeRef {
	return []TypeRef{{Category: CategoryPublicationType, ID: d.PublicationTypeID, Field: "publication_type_id"}}
}

func (d *PublicationData) EntityRefs() []EntityRef { return nil }

// EditionData is the payload of an edition of a publication.
type EditionData struct {
	PublicationBBID      *string `json:"publication_bbid" validate:"omitempty,uuid"`
	PublisherBBID        *string `json:"publisher_bbid" validate:"omitempty,uuid"`
	ReleaseDate          *string `json:"release_date"`
	ReleaseDatePrecision *string `json:"release_date_precision" validate:"omitempty,oneof=year month day"`
	Pages                *int64  `json:"pages" validate:"omitempty,gte=0"`
	Height               *int64  `json:"height" validate:"omitempty,gte=0"`
	Width                *int64  `json:"width" validate:"omitempty,gte=0"`
	Depth                *int64  `json:"depth" validate:"omitempty,gte=0"`
	Weight               *int64  `json:"weight" validate:"omitempty,gte=0"`
	LanguageID           *int64  `json:"language_id"`
	EditionFormatID      *int64  `json:"edition_format_id"`
	EditionStatusID      *int64  `json:"edition_status_id"`
}

func (d *EditionData) Kind() EntityKind { return KindEdition }

func (d *EditionData) Fields() []Field {
	return []Field{
		{Name: "publication_bbid", Value: d.PublicationBBID},
		{Name: "publisher_bbid", Value: d.PublisherBBID},
		{Name: "release_date", Value: d.ReleaseDate},
		{Name: "release_date_precision", Value: d.ReleaseDatePrecision},
		{Name: "pages", Value: d.Pages},
		{Name: "height", Value: d.Height},
		{Name: "width", Value: d.Width},
		{Name: "depth", Value: d.Depth},
		{Name: "weight", Value: d.Weight},
		{Name: "language_id", Value: d.LanguageID},
		{Name: "edition_format_id", Value: d.EditionFormatID},
		{Name: "edition_status_id", Value: d.EditionStatusID},
	}
}

func (d *EditionData) TypeRefs() []TypeRef {
	var refs []TypeRef
	if d.LanguageID != nil {
		refs = append(refs, TypeRef{Category: CategoryLanguage, ID: *d.LanguageID, Field: "language_id"})
	}
	if d.EditionFormatID != nil {
		refs = append(refs, TypeRef{Category: CategoryEditionFormat, ID: *d.EditionFormatID, Field: "edition_format_id"})
	}
	if d.EditionStatusID != nil {
		refs = append(refs, TypeRef{Category: CategoryEditionStatus, ID: *d.EditionStatusID, Field: "edition_status_id"})
	}
	return refs
}

func (d *EditionData) EntityRefs() []EntityRef {
	var refs []EntityRef
	if d.PublicationBBID != nil {
		refs = append(refs, EntityRef{Field: "publication_bbid", BBID: *d.PublicationBBID, Kind: KindPublication})
	}
	if d.PublisherBBID != nil {
		refs = append(refs, EntityRef{Field: "publisher_bbid", BBID: *d.PublisherBBID, Kind: KindPublisher})
	}
	return refs
}

// PublisherData is the payload of a publisher.
type PublisherData struct {
	PublisherTypeID    int64   `json:"publisher_type_id" validate:"required"`
	BeginDate          *string `json:"begin_date"`
	BeginDatePrecision *string `json:"begin_date_precision" validate:"omitempty,oneof=year month day"`
	EndDate            *string `json:"end_date"`
	EndDatePrecision   *string `json:"end_date_precision" validate:"omitempty,oneof=year month day"`
	Ended              bool    `json:"ended"`
}

func (d *PublisherData) Kind() EntityKind { return KindPublisher }

func (d *PublisherData) Fields() []Field {
	return []Field{
		{Name: "publisher_type_id", Value: d.PublisherTypeID},
		{Name: "begin_date", Value: d.BeginDate},
		{Name: "begin_date_precision", Value: d.BeginDatePrecision},
		{Name: "end_date", Value: d.EndDate},
		{Name: "end_date_precision", Value: d.EndDatePrecision},
		{Name: "ended", Value: d.Ended},
	}
}

func (d *PublisherData) TypeRefs() []TypeRef {
	return []TypeRef{{Category: CategoryPublisherType, ID: d.PublisherTypeID, Field: "publisher_type_id"}}
}

func (d *PublisherData) EntityRefs() []EntityRef { return nil }

// WorkData is the payload of an abstract work.
type WorkData struct {
	WorkTypeID  int64   `json:"work_type_id" validate:"required"`
	LanguageIDs []int64 `json:"language_ids"`
}

func (d *WorkData) Kind() EntityKind { return KindWork }

func (d *WorkData) Fields() []Field {
	return []Field{
		{Name: "work_type_id", Value: d.WorkTypeID},
		{Name: "language_ids", Value: d.LanguageIDs},
	}
}

func (d *WorkData) TypeRefs() []TypeRef {
	refs := []TypeRef{{Category: CategoryWorkType, ID: d.WorkTypeID, Field: "work_type_id"}}
	for _, id := range d.LanguageIDs {
		refs = append(refs, TypeRef{Category: CategoryLanguage, ID: id, Field: "language_ids"})
	}
	return refs
}

func (d *WorkData) EntityRefs() []EntityRef { return nil }
