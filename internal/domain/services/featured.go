package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

// errNoFeaturedCache is returned when the featured slot has nowhere to live.
var errNoFeaturedCache = errors.New("featured publication requires a cache")

const featuredPickAttempts = 5

// FeaturedService keeps the "book of the week": one live publication whose
// BBID is stored in the cache.
type FeaturedService struct {
	store *EntityStore
	cache ports.StateCache
	intN  func(n int) int
}

// NewFeaturedService creates a new FeaturedService.
func NewFeaturedService(store *EntityStore, cache ports.StateCache) *FeaturedService {
	return &FeaturedService{
		store: store,
		cache: cache,
		intN:  rand.IntN,
	}
}

// Pick chooses a random live publication and stores it as featured.
func (s *FeaturedService) Pick(ctx context.Context) (*entities.EntityState, error) {
	if s.cache == nil {
		return nil, errNoFeaturedCache
	}
	count, err := s.store.CountCurrent(ctx, entities.KindPublication)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("no publications: %w", entities.ErrNotFound)
	}

	for range featuredPickAttempts {
		list, err := s.store.ListCurrent(ctx, entities.KindPublication, s.intN(count), 1)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			continue
		}
		state, err := s.store.GetCurrentState(ctx, list[0].BBID)
		if err != nil {
			return nil, err
		}
		if state.IsDeleted() {
			continue
		}
		if err := s.cache.SetFeatured(ctx, state.Entity.BBID); err != nil {
			return nil, fmt.Errorf("storing featured publication: %w", err)
		}
		return state, nil
	}
	return nil, fmt.Errorf("no live publication found: %w", entities.ErrNotFound)
}

// Get returns the featured publication.
func (s *FeaturedService) Get(ctx context.Context) (*entities.EntityState, error) {
	if s.cache == nil {
		return nil, errNoFeaturedCache
	}
	bbid, err := s.cache.GetFeatured(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading featured publication: %w", err)
	}
	if bbid == "" {
		return nil, fmt.Errorf("no featured publication: %w", entities.ErrNotFound)
	}
	state, err := s.store.GetCurrentState(ctx, bbid)
	if err != nil {
		return nil, err
	}
	if state.IsDeleted() {
		return nil, fmt.Errorf("featured publication %s was deleted: %w", bbid, entities.ErrNotFound)
	}
	return state, nil
}
