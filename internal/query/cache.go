package query

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/uleam-conecta/conecta-go/internal/metrics"
	"github.com/uleam-conecta/conecta-go/pkg/logger"
)

// Cache is the query cache. It is an explicit object rather than a package
// singleton so each test (and each embedding application) can own an
// isolated instance.
type Cache struct {
	store Store
	ttl   time.Duration
	log   *logger.Logger

	mu  sync.Mutex
	seq map[string]uint64 // latest issued request per key

	group singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the age past which a committed entry is treated as stale.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithLogger sets the cache logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// New creates a cache over the given store. A nil store gets the in-memory
// default.
func New(store Store, opts ...Option) *Cache {
	if store == nil {
		store = NewMemStore()
	}
	c := &Cache{
		store: store,
		ttl:   5 * time.Minute,
		seq:   make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.NewDefault("query")
	}
	return c
}

// Peek returns the committed entry for key without fetching. Callers use it
// to keep rendering previous data while a refetch is in flight.
func (c *Cache) Peek(ctx context.Context, key Key) (*Entry, bool) {
	ent, err := c.store.Get(ctx, key.String())
	if err != nil || ent == nil {
		return nil, false
	}
	return ent, true
}

// Resolve returns the payload for key, fetching from the server when the
// entry is missing or stale. Identical concurrent calls share a single
// fetch. A response only commits if no newer request was issued for the key
// in the meantime; late responses are discarded, not errors.
func (c *Cache) Resolve(ctx context.Context, key Key, fn FetchFunc) ([]byte, error) {
	ks := key.String()

	if ent, err := c.store.Get(ctx, ks); err == nil && ent != nil {
		if !ent.Stale && !c.expired(ent) {
			metrics.ObserveLookup(key.Resource, "hit")
			return ent.Data, nil
		}
		metrics.ObserveLookup(key.Resource, "stale")
	} else {
		metrics.ObserveLookup(key.Resource, "miss")
	}

	v, err, _ := c.group.Do(ks, func() (any, error) {
		seq := c.issue(ks)
		data, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if !c.commit(ctx, ks, seq, data) {
			c.log.Debugf("dropped superseded response for %s", ks)
			metrics.ObserveDroppedResponse()
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate marks every entry under the given resource names stale. Data is
// kept for stale-while-revalidate; the next access refetches. In-flight
// responses for those resources will not commit.
func (c *Cache) Invalidate(ctx context.Context, resources ...string) {
	for _, resource := range resources {
		c.mu.Lock()
		for ks := range c.seq {
			if matchesResource(ks, resource) {
				c.seq[ks]++
			}
		}
		c.mu.Unlock()

		if err := c.store.MarkStale(ctx, resource); err != nil {
			c.log.Warnf("invalidate %s: %v", resource, err)
		}
		metrics.ObserveInvalidation(resource)
	}
	c.log.Debugf("invalidated %v", resources)
}

func (c *Cache) expired(e *Entry) bool {
	return c.ttl > 0 && time.Since(e.UpdatedAt) > c.ttl
}

// issue registers a new in-flight request for key and returns its sequence.
func (c *Cache) issue(ks string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq[ks]++
	return c.seq[ks]
}

// commit stores data for key unless a newer request was issued since seq.
func (c *Cache) commit(ctx context.Context, ks string, seq uint64, data []byte) bool {
	c.mu.Lock()
	latest := c.seq[ks]
	c.mu.Unlock()
	if seq != latest {
		return false
	}
	err := c.store.Set(ctx, ks, &Entry{Data: data, UpdatedAt: time.Now()})
	if err != nil {
		c.log.Warnf("commit %s: %v", ks, err)
		return false
	}
	return true
}
