package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

// TypeRegistry resolves the lookup codes snapshots refer to (creator types,
// languages, identifier types, ...).
type TypeRegistry struct {
	relationalDB ports.RelationalDB
	cache        map[entities.TypeCategory]map[int64]entities.TypeCode
	cacheMu      sync.RWMutex
}

// NewTypeRegistry creates a new TypeRegistry.
func NewTypeRegistry(relationalDB ports.RelationalDB) *TypeRegistry {
	return &TypeRegistry{
		relationalDB: relationalDB,
	}
}

// LoadDefaults seeds the default type codes that are missing.
func (r *TypeRegistry) LoadDefaults(ctx context.Context) error {
	existing, err := r.relationalDB.ListTypeCodes(ctx, "")
	if err != nil {
		return fmt.Errorf("listing type codes: %w", err)
	}

	existingSet := make(map[entities.TypeRef]bool, len(existing))
	for _, tc := range existing {
		existingSet[entities.TypeRef{Category: tc.Category, ID: tc.ID}] = true
	}

	for _, tc := range entities.DefaultTypeCodes {
		if existingSet[entities.TypeRef{Category: tc.Category, ID: tc.ID}] {
			continue
		}
		tcCopy := tc
		if err := r.relationalDB.SaveTypeCode(ctx, &tcCopy); err != nil {
			return fmt.Errorf("seeding type code %s/%d: %w", tc.Category, tc.ID, err)
		}
	}
	r.invalidateCache()
	return nil
}

// List returns the type codes of a category, or all of them when empty.
func (r *TypeRegistry) List(ctx context.Context, category entities.TypeCategory) ([]entities.TypeCode, error) {
	if category != "" && !entities.IsValidCategory(category) {
		return nil, &entities.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", category)}
	}
	return r.relationalDB.ListTypeCodes(ctx, category)
}

// Add registers a new type code.
func (r *TypeRegistry) Add(ctx context.Context, category entities.TypeCategory, id int64, label string) error {
	label = strings.TrimSpace(label)
	if !entities.IsValidCategory(category) {
		return &entities.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", category)}
	}
	if id <= 0 {
		return &entities.ValidationError{Field: "id", Message: "must be positive"}
	}
	if label == "" {
		return &entities.ValidationError{Field: "label", Message: "is required"}
	}

	exists, err := r.Exists(ctx, category, id)
	if err != nil {
		return err
	}
	if exists {
		return &entities.ValidationError{Field: "id", Message: fmt.Sprintf("%s %d already exists", category, id)}
	}

	if err := r.relationalDB.SaveTypeCode(ctx, &entities.TypeCode{Category: category, ID: id, Label: label}); err != nil {
		return fmt.Errorf("saving type code: %w", err)
	}
	r.invalidateCache()
	return nil
}

// Label returns the label of a type code, or "" when unknown.
func (r *TypeRegistry) Label(ctx context.Context, category entities.TypeCategory, id int64) string {
	codes, err := r.codes(ctx)
	if err != nil {
		return ""
	}
	return codes[category][id].Label
}

// Exists reports whether a type code is registered.
func (r *TypeRegistry) Exists(ctx context.Context, category entities.TypeCategory, id int64) (bool, error) {
	codes, err := r.codes(ctx)
	if err != nil {
		return false, err
	}
	_, ok := codes[category][id]
	return ok, nil
}

// Validate checks that every reference resolves.
func (r *TypeRegistry) Validate(ctx context.Context, refs []entities.TypeRef) error {
	if len(refs) == 0 {
		return nil
	}
	codes, err := r.codes(ctx)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if _, ok := codes[ref.Category][ref.ID]; !ok {
			return &entities.ValidationError{
				Field:   ref.Field,
				Message: fmt.Sprintf("unknown %s %d", ref.Category, ref.ID),
			}
		}
	}
	return nil
}

// codes returns the cached code table, loading it on first use.
func (r *TypeRegistry) codes(ctx context.Context) (map[entities.TypeCategory]map[int64]entities.TypeCode, error) {
	r.cacheMu.RLock()
	if r.cache != nil {
		cache := r.cache
		r.cacheMu.RUnlock()
		return cache, nil
	}
	r.cacheMu.RUnlock()

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	// Another goroutine may have loaded it meanwhile.
	if r.cache != nil {
		return r.cache, nil
	}

	all, err := r.relationalDB.ListTypeCodes(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("loading type codes: %w", err)
	}
	cache := make(map[entities.TypeCategory]map[int64]entities.TypeCode, len(entities.AllCategories))
	for _, tc := range all {
		if cache[tc.Category] == nil {
			cache[tc.Category] = make(map[int64]entities.TypeCode)
		}
		cache[tc.Category][tc.ID] = tc
	}
	r.cache = cache
	return cache, nil
}

func (r *TypeRegistry) invalidateCache() {
	r.cacheMu.Lock()
	r.cache = nil
	r.cacheMu.Unlock()
}
