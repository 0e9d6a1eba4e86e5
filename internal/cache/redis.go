// Package cache provides a Redis-backed read-side cache for team ratings.
// Cached rows exist only to cheapen rating lookups; the store stays
// authoritative and the processor invalidates entries after every applied
// adjustment.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ncaam/ratings-engine/internal/models"
)

const keyPrefix = "ratings:team:"

// Config holds redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache implements engine.RatingCache on top of a redis client
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	log.Info().Str("addr", cfg.Addr).Dur("ttl", ttl).Msg("Connected to redis rating cache")

	return &RedisCache{client: client, ttl: ttl}, nil
}

func ratingKey(canonicalName string) string {
	return keyPrefix + canonicalName
}

// Get returns the cached rating row for a canonical name. A miss is (nil,
// false, nil), never an error.
func (c *RedisCache) Get(ctx context.Context, canonicalName string) (*models.TeamRating, bool, error) {
	payload, err := c.client.Get(ctx, ratingKey(canonicalName)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached rating for %q: %w", canonicalName, err)
	}

	var rating models.TeamRating
	if err := json.Unmarshal(payload, &rating); err != nil {
		// A corrupt entry is treated as a miss and dropped
		c.client.Del(ctx, ratingKey(canonicalName))
		return nil, false, nil
	}

	return &rating, true, nil
}

// Set caches a rating row under its canonical name
func (c *RedisCache) Set(ctx context.Context, rating *models.TeamRating) error {
	payload, err := json.Marshal(rating)
	if err != nil {
		return fmt.Errorf("failed to marshal rating for %q: %w", rating.CanonicalName, err)
	}

	if err := c.client.Set(ctx, ratingKey(rating.CanonicalName), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache rating for %q: %w", rating.CanonicalName, err)
	}

	return nil
}

// Invalidate drops cached entries for the given canonical names
func (c *RedisCache) Invalidate(ctx context.Context, canonicalNames ...string) error {
	if len(canonicalNames) == 0 {
		return nil
	}

	keys := make([]string, len(canonicalNames))
	for i, name := range canonicalNames {
		keys[i] = ratingKey(name)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached ratings: %w", err)
	}

	return nil
}

// Health checks the redis connection
func (c *RedisCache) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// Close releases the redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
