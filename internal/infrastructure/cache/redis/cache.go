// Package redis provides a StateCache implementation backed by Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
	"github.com/ersonp/biblio-core/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

var _ ports.StateCache = (*Cache)(nil)

// Cache stores resolved entity states as hashes holding the encoded state
// and the time it was cached.
type Cache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewCache creates a Redis-backed state cache.
func NewCache(cfg config.RedisConfig) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	return newCache(client, cfg.KeyPrefix, cfg.StateTTL), nil
}

func newCache(client redis.UniversalClient, prefix string, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Ping checks that the server is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client connections.
func (c *Cache) Close() error {
	return c.client.Close()
}

// GetState returns the cached state of an entity, or nil on a miss.
func (c *Cache) GetState(ctx context.Context, bbid string) (*entities.EntityState, error) {
	raw, err := c.client.HGet(ctx, c.stateKey(bbid), "data").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached state: %w", err)
	}

	var state entities.EntityState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decoding cached state: %w", err)
	}
	return &state, nil
}

// SetState caches the state of an entity until the TTL expires.
func (c *Cache) SetState(ctx context.Context, state *entities.EntityState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	key := c.stateKey(state.Entity.BBID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"data":      raw,
		"cached_at": timeNow().Unix(),
	})
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("caching state: %w", err)
	}
	return nil
}

// InvalidateState drops the cached states of the given entities.
func (c *Cache) InvalidateState(ctx context.Context, bbids ...string) error {
	if len(bbids) == 0 {
		return nil
	}

	keys := make([]string, len(bbids))
	for i, bbid := range bbids {
		keys[i] = c.stateKey(bbid)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidating states: %w", err)
	}
	return nil
}

// SetFeatured stores the BBID of the featured publication.
func (c *Cache) SetFeatured(ctx context.Context, bbid string) error {
	if err := c.client.Set(ctx, c.featuredKey(), bbid, 0).Err(); err != nil {
		return fmt.Errorf("storing featured publication: %w", err)
	}
	return nil
}

// GetFeatured returns the featured publication BBID, or "" when none is set.
func (c *Cache) GetFeatured(ctx context.Context) (string, error) {
	bbid, err := c.client.Get(ctx, c.featuredKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading featured publication: %w", err)
	}
	return bbid, nil
}

func (c *Cache) stateKey(bbid string) string {
	return c.prefix + "state:" + bbid
}

func (c *Cache) featuredKey() string {
	return c.prefix + "featured"
}
