package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/character-browser/pkg/client"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrCacheMiss indicates the requested key was not found in the store
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the stored entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// DefaultStoreTTL is how long pages stay in the shared store.
const DefaultStoreTTL = 5 * time.Minute

// storeKeyPrefix namespaces store keys in a shared Redis.
const storeKeyPrefix = "character-browser:"

// RedisStore is a Loader that serves pages from Redis and falls back to the
// wrapped Loader on a miss. Store failures never fail a load; they are
// logged and the upstream is used instead.
type RedisStore struct {
	redis  *redis.Client
	next   Loader
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a new Redis-backed store in front of next.
func NewRedisStore(redisClient *redis.Client, next Loader, ttl time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if next == nil {
		panic("next loader cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultStoreTTL
	}
	return &RedisStore{
		redis:  redisClient,
		next:   next,
		ttl:    ttl,
		logger: log.With().Str("component", "redis-store").Logger(),
	}
}

// GetCharacters implements Loader.
func (s *RedisStore) GetCharacters(ctx context.Context, page int) (*client.CharacterPage, error) {
	key := NewQueryKey(page)

	stored, err := s.Get(ctx, key)
	switch {
	case err == nil:
		return stored.Page, nil
	case !errors.Is(err, ErrCacheMiss):
		s.logger.Warn().Err(err).Str("key", key.String()).Msg("Store get error, falling back to upstream")
	}

	result, err := s.next.GetCharacters(ctx, page)
	if err != nil {
		return nil, err
	}

	entry := &StoredPage{
		Page:     result,
		Expires:  time.Now().Add(s.ttl),
		CachedAt: time.Now(),
	}
	if err := s.Set(ctx, key, entry); err != nil {
		s.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to store page")
	} else {
		s.logger.Debug().
			Str("key", key.String()).
			Dur("ttl", entry.TTL()).
			Msg("Stored page")
	}

	return result, nil
}

// Get retrieves a stored page by key.
// Returns ErrCacheMiss if the key doesn't exist or the entry is expired.
func (s *RedisStore) Get(ctx context.Context, key QueryKey) (*StoredPage, error) {
	storeKey := storeKeyPrefix + key.String()

	data, err := s.redis.Get(ctx, storeKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.WithLabelValues("redis").Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry StoredPage
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if entry.Page == nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: missing page", ErrInvalidEntry)
	}

	if entry.IsExpired() {
		_ = s.Delete(ctx, key)
		CacheMisses.WithLabelValues("redis").Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("redis").Inc()
	return &entry, nil
}

// Set stores a page with TTL based on the entry's Expires field.
func (s *RedisStore) Set(ctx context.Context, key QueryKey, entry *StoredPage) error {
	if entry == nil {
		return fmt.Errorf("stored page cannot be nil")
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		// Already expired, don't store
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal stored page: %w", err)
	}

	if err := s.redis.Set(ctx, storeKeyPrefix+key.String(), data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a stored page. It implements Invalidator.
func (s *RedisStore) Delete(ctx context.Context, key QueryKey) error {
	if err := s.redis.Del(ctx, storeKeyPrefix+key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
