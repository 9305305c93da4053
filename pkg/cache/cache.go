package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/character-browser/pkg/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ErrClosed is returned by Fetch once the cache has been closed.
var ErrClosed = errors.New("cache closed")

// Loader fetches one characters page from the upstream.
type Loader interface {
	GetCharacters(ctx context.Context, page int) (*client.CharacterPage, error)
}

// Invalidator is implemented by loaders that keep their own copy of a page
// (e.g. RedisStore) and must drop it when the key is invalidated.
type Invalidator interface {
	Delete(ctx context.Context, key QueryKey) error
}

// Config holds the cache configuration.
type Config struct {
	// RequestTimeout bounds each upstream load. Loads are detached from
	// caller contexts, so this is the only deadline they observe.
	RequestTimeout time.Duration
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		RequestTimeout: 30 * time.Second,
	}
}

// loadMode decides whether begin starts a new upstream load.
type loadMode int

const (
	// loadIfAbsent loads only unknown keys (query, fetch).
	loadIfAbsent loadMode = iota
	// loadIfNotReady also reloads Error entries (prefetch).
	loadIfNotReady
	// loadAlways reloads anything not already loading (retry).
	loadAlways
)

type subscriber struct {
	id uint64
	fn func(Result)
}

// Cache is the characters query cache.
type Cache struct {
	loader Loader
	config Config
	logger zerolog.Logger

	group singleflight.Group
	loads sync.WaitGroup

	mu         sync.Mutex
	entries    map[string]*Entry
	subs       map[string][]subscriber
	nextSub    uint64
	gen        uint64
	totalPages int
	closed     bool
}

// New creates a new query cache backed by loader.
func New(loader Loader, cfg Config) *Cache {
	if loader == nil {
		panic("loader cannot be nil")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	return &Cache{
		loader:  loader,
		config:  cfg,
		logger:  log.With().Str("component", "query-cache").Logger(),
		entries: make(map[string]*Entry),
		subs:    make(map[string][]subscriber),
	}
}

// Query returns the current state of key. When the key is unknown a load
// is started and the returned result is Loading.
// Ready and Error entries are returned as they are.
func (c *Cache) Query(key QueryKey) Result {
	key = NewQueryKey(key.Page)
	_, snapshot, _ := c.begin(key, loadIfAbsent)
	return snapshot
}

// Fetch returns the page for key, waiting for an in-flight or newly started
// load. ctx bounds the wait only; the load itself keeps running.
func (c *Cache) Fetch(ctx context.Context, key QueryKey) (*client.CharacterPage, error) {
	key = NewQueryKey(key.Page)
	ch, snapshot, _ := c.begin(key, loadIfAbsent)
	if ch == nil {
		if snapshot.Loading {
			return nil, ErrClosed
		}
		return snapshot.Data, snapshot.Err
	}

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*client.CharacterPage), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for %s: %w", key, ctx.Err())
	}
}

// Peek returns the current state of key without starting a load.
// ok is false when the key is unknown.
func (c *Cache) Peek(key QueryKey) (res Result, ok bool) {
	key = NewQueryKey(key.Page)
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	return e.result(key), ok
}

// Prefetch starts a best-effort background load of key. It is a no-op for
// keys that are loading or ready. Failures are logged, never surfaced.
func (c *Cache) Prefetch(key QueryKey) {
	key = NewQueryKey(key.Page)
	ch, _, started := c.begin(key, loadIfNotReady)
	if !started {
		Prefetches.WithLabelValues("skipped").Inc()
		return
	}

	c.loads.Add(1)
	go func() {
		defer c.loads.Done()
		res := <-ch
		if res.Err != nil {
			Prefetches.WithLabelValues("error").Inc()
			c.logger.Warn().
				Err(res.Err).
				Str("key", key.String()).
				Msg("Prefetch failed")
			return
		}
		Prefetches.WithLabelValues("ok").Inc()
		c.logger.Debug().
			Str("key", key.String()).
			Msg("Prefetch complete")
	}()
}

// Refetch re-issues the query for key, replacing any Ready or Error state.
// A key that is already loading is left alone.
func (c *Cache) Refetch(key QueryKey) {
	key = NewQueryKey(key.Page)
	c.begin(key, loadAlways)
}

// Invalidate drops the entry for key. An in-flight load for the key is
// detached: it still completes for its waiters but no longer updates the
// cache.
func (c *Cache) Invalidate(ctx context.Context, key QueryKey) error {
	key = NewQueryKey(key.Page)
	k := key.String()

	c.mu.Lock()
	if e, ok := c.entries[k]; ok {
		Entries.WithLabelValues(string(e.Status)).Dec()
		delete(c.entries, k)
		c.group.Forget(k)
	}
	c.mu.Unlock()

	c.logger.Debug().Str("key", k).Msg("Invalidated entry")

	if inv, ok := c.loader.(Invalidator); ok {
		if err := inv.Delete(ctx, key); err != nil {
			return fmt.Errorf("invalidate %s: %w", k, err)
		}
	}
	return nil
}

// Subscribe registers fn to be called with the new state of key on every
// state transition. The returned function removes the subscription.
// fn is invoked outside the cache lock, possibly from a loader goroutine.
func (c *Cache) Subscribe(key QueryKey, fn func(Result)) (cancel func()) {
	key = NewQueryKey(key.Page)
	k := key.String()

	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	c.subs[k] = append(c.subs[k], subscriber{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			subs := c.subs[k]
			for i, s := range subs {
				if s.id == id {
					c.subs[k] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			if len(c.subs[k]) == 0 {
				delete(c.subs, k)
			}
		})
	}
}

// TotalPages returns the last page count reported by any Ready entry,
// or 0 while unknown.
func (c *Cache) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// Len returns the number of entries in the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Wait blocks until all background loads and prefetches have finished.
func (c *Cache) Wait() {
	c.loads.Wait()
}

// Close stops accepting new loads and waits for in-flight ones.
func (c *Cache) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.loads.Wait()
	return nil
}

// begin returns the current snapshot of key and, when a load is in flight
// or was started according to mode, the channel delivering its outcome.
// started reports whether this call issued a new upstream load.
func (c *Cache) begin(key QueryKey, mode loadMode) (ch <-chan singleflight.Result, snapshot Result, started bool) {
	k := key.String()

	c.mu.Lock()
	e, exists := c.entries[k]

	switch {
	case c.closed && (!exists || e.Status != StatusLoading):
		c.mu.Unlock()
		if exists {
			return nil, e.result(key), false
		}
		return nil, Result{Key: key, Loading: true}, false

	case exists && e.Status == StatusLoading:
		ch = c.group.DoChan(k, nil)
		snapshot = e.result(key)
		c.mu.Unlock()
		InFlightJoins.Inc()
		c.logger.Debug().Str("key", k).Msg("Joined in-flight request")
		return ch, snapshot, false

	case exists && e.Status == StatusReady && mode != loadAlways:
		snapshot = e.result(key)
		c.mu.Unlock()
		CacheHits.WithLabelValues("memory").Inc()
		return nil, snapshot, false

	case exists && e.Status == StatusError && mode == loadIfAbsent:
		snapshot = e.result(key)
		c.mu.Unlock()
		return nil, snapshot, false
	}

	c.gen++
	gen := c.gen
	next := &Entry{Status: StatusLoading, UpdatedAt: time.Now(), gen: gen}
	notify := c.setLocked(k, next)
	snapshot = next.result(key)

	c.loads.Add(1)
	ch = c.group.DoChan(k, func() (any, error) {
		defer c.loads.Done()
		return c.load(key, gen)
	})
	c.mu.Unlock()

	CacheMisses.WithLabelValues("memory").Inc()
	c.logger.Debug().Str("key", k).Msg("Started load")

	notifyAll(notify, snapshot)
	return ch, snapshot, true
}

// load performs one upstream request for key and records its outcome
// unless the entry was invalidated or replaced meanwhile.
func (c *Cache) load(key QueryKey, gen uint64) (any, error) {
	k := key.String()

	ctx, cancel := context.WithTimeout(context.Background(), c.config.RequestTimeout)
	defer cancel()

	start := time.Now()
	page, err := c.loader.GetCharacters(ctx, key.Page)
	if err == nil && page == nil {
		page = &client.CharacterPage{Items: []client.Character{}}
	}

	c.mu.Lock()
	current, ok := c.entries[k]
	if !ok || current.gen != gen {
		c.mu.Unlock()
		c.logger.Debug().Str("key", k).Msg("Discarding result of detached load")
		return page, err
	}

	// Forget under the lock so that any later begin starts a fresh load
	// instead of joining this completed one.
	c.group.Forget(k)

	next := &Entry{UpdatedAt: time.Now(), gen: gen}
	if err != nil {
		next.Status = StatusError
		next.Err = err
	} else {
		next.Status = StatusReady
		next.Page = page
		if page.TotalPages > 0 {
			c.totalPages = page.TotalPages
		}
	}
	notify := c.setLocked(k, next)
	snapshot := next.result(key)
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("key", k).
			Dur("duration", time.Since(start)).
			Msg("Load failed")
	} else {
		c.logger.Debug().
			Str("key", k).
			Int("items", len(page.Items)).
			Dur("duration", time.Since(start)).
			Msg("Load complete")
	}

	notifyAll(notify, snapshot)
	return page, err
}

// setLocked replaces the entry for k and returns the subscribers to notify.
// c.mu must be held.
func (c *Cache) setLocked(k string, e *Entry) []func(Result) {
	if old, ok := c.entries[k]; ok {
		Entries.WithLabelValues(string(old.Status)).Dec()
	}
	c.entries[k] = e
	Entries.WithLabelValues(string(e.Status)).Inc()

	subs := c.subs[k]
	fns := make([]func(Result), 0, len(subs))
	for _, s := range subs {
		fns = append(fns, s.fn)
	}
	return fns
}

func notifyAll(fns []func(Result), res Result) {
	for _, fn := range fns {
		fn(res)
	}
}
