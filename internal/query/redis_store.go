package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// redisStore shares the query cache between client instances through Redis.
type redisStore struct {
	rdb    *redis.Client
	prefix string
	// expiry bounds storage growth; staleness is still decided by the
	// cache from Entry.UpdatedAt, not by Redis expiry.
	expiry time.Duration
}

// NewRedisStore returns a Redis-backed store.
func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb, prefix: "conecta:query:", expiry: 24 * time.Hour}
}

func (s *redisStore) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		// Treat an undecodable entry as a miss; it will be refetched.
		return nil, nil
	}
	return &e, nil
}

func (s *redisStore) Set(ctx context.Context, key string, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	if err := s.rdb.Set(ctx, s.prefix+key, data, s.expiry).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// stalePatterns matches the bare resource key and every filtered variant.
// The `?` separating resource from filters is escaped: Redis MATCH treats a
// bare `?` as a single-character wildcard.
func (s *redisStore) stalePatterns(resource string) []string {
	return []string{
		s.prefix + resource,
		s.prefix + resource + `\?*`,
	}
}

func (s *redisStore) MarkStale(ctx context.Context, resource string) error {
	for _, pattern := range s.stalePatterns(resource) {
		iter := s.rdb.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			key := iter.Val()
			data, err := s.rdb.Get(ctx, key).Bytes()
			if err != nil {
				continue
			}
			var e Entry
			if err := json.Unmarshal(data, &e); err != nil {
				continue
			}
			e.Stale = true
			if updated, err := json.Marshal(&e); err == nil {
				_ = s.rdb.Set(ctx, key, updated, s.expiry).Err()
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
	}
	return nil
}
