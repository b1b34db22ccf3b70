// Package query binds platform calls to a per-resource cache with staleness
// and optimistic-update semantics. Queries sharing a key share one cached
// value and one in-flight fetch; mutations either project their intended end
// state optimistically (with snapshot rollback) or invalidate dependent
// entries after they settle.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// DefaultStaleness applies when a fetch does not specify its own window.
const DefaultStaleness = 5 * time.Minute

// Staleness carries the per-resource-group staleness windows. The wallet
// window is shorter because balances move with every settled bet.
type Staleness struct {
	Default time.Duration
	Wallet  time.Duration
}

// Normalize fills unset windows with their defaults.
func (s *Staleness) Normalize() {
	if s.Default <= 0 {
		s.Default = DefaultStaleness
	}
	if s.Wallet <= 0 {
		s.Wallet = 2 * time.Minute
	}
}

// errValueType is returned when a shared in-flight result does not carry the
// requested type. Distinct types must use distinct keys.
var errValueType = errors.New("query: cached value type mismatch")

// entry is one cached value with its staleness bookkeeping.
type entry struct {
	value     any
	fetchedAt time.Time
	staleness time.Duration
}

func (e *entry) fresh(now time.Time) bool {
	return now.Before(e.fetchedAt.Add(e.staleness))
}

// inflightCall deduplicates concurrent fetches for one key.
type inflightCall struct {
	done chan struct{}
	val  any
	err  error
}

// Cache is the portal's query cache. The L1 layer is a bounded in-memory LRU
// holding typed values; an optional Remote layer (redis) keeps serialized
// copies warm across restarts.
type Cache struct {
	l1     *lru.Cache[string, *entry]
	remote Remote
	logger *zap.Logger

	mu       sync.Mutex
	inflight map[string]*inflightCall
	// versions orders writes per key: a fetch only lands if no newer write
	// (mutation or invalidation) happened since it started. Last writer by
	// cache key, not last arrival.
	versions map[string]uint64
}

// Option configures the cache.
type Option func(*Cache)

// WithRemote attaches a remote (L2) layer.
func WithRemote(r Remote) Option {
	return func(c *Cache) { c.remote = r }
}

// WithLogger sets the cache logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// New creates a query cache holding at most maxEntries values.
func New(maxEntries int, opts ...Option) (*Cache, error) {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	l1, err := lru.New[string, *entry](maxEntries)
	if err != nil {
		return nil, err
	}

	c := &Cache{
		l1:       l1,
		logger:   zap.NewNop(),
		inflight: make(map[string]*inflightCall),
		versions: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchFunc loads the authoritative value for a key.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Fetch returns the cached value for key, loading it through fn when needed.
//
// A fresh hit returns the cached value with no network call. A stale hit
// returns the last-known value immediately and triggers one background
// refetch. Concurrent fetches for the same key share a single call.
func Fetch[T any](ctx context.Context, c *Cache, key Key, staleness time.Duration, fn FetchFunc[T]) (T, error) {
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	k := key.String()
	now := time.Now()

	if e, ok := c.l1.Get(k); ok {
		if v, ok := e.value.(T); ok {
			if e.fresh(now) {
				return v, nil
			}
			// Serve stale, reconcile in the background
			go func() {
				bg, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if _, err := fetchShared(bg, c, k, staleness, fn); err != nil {
					c.logger.Debug("Background refetch failed", zap.String("key", k), zap.Error(err))
				}
			}()
			return v, nil
		}
		// A different type under the same key is treated as a miss
		c.l1.Remove(k)
	}

	if c.remote != nil {
		if v, fetchedAt, ok := remoteGet[T](ctx, c, k); ok {
			c.mu.Lock()
			c.l1.Add(k, &entry{value: v, fetchedAt: fetchedAt, staleness: staleness})
			c.mu.Unlock()
			if now.Before(fetchedAt.Add(staleness)) {
				return v, nil
			}
		}
	}

	return fetchShared(ctx, c, k, staleness, fn)
}

// fetchShared performs the deduplicated fetch for one key.
func fetchShared[T any](ctx context.Context, c *Cache, k string, staleness time.Duration, fn FetchFunc[T]) (T, error) {
	c.mu.Lock()
	if call, ok := c.inflight[k]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
		if call.err != nil {
			var zero T
			return zero, call.err
		}
		v, ok := call.val.(T)
		if !ok {
			var zero T
			return zero, errValueType
		}
		return v, nil
	}

	call := &inflightCall{done: make(chan struct{})}
	c.inflight[k] = call
	startVersion := c.versions[k]
	c.mu.Unlock()

	v, err := fn(ctx)

	c.mu.Lock()
	delete(c.inflight, k)
	landed := false
	if err == nil && c.versions[k] == startVersion {
		// No mutation or invalidation raced this fetch; the result is current
		c.l1.Add(k, &entry{value: v, fetchedAt: time.Now(), staleness: staleness})
		landed = true
	}
	c.mu.Unlock()

	if landed && c.remote != nil {
		remoteSet(c, k, v)
	}

	call.val, call.err = v, err
	close(call.done)

	return v, err
}

// Peek returns the cached value without fetching or affecting staleness.
func Peek[T any](c *Cache, key Key) (T, bool) {
	if e, ok := c.l1.Peek(key.String()); ok {
		if v, ok := e.value.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Invalidate marks the keys stale and orders them ahead of any in-flight
// fetch, forcing a refetch on next read while still serving the last-known
// value in the meantime.
func (c *Cache) Invalidate(ctx context.Context, keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		k := key.String()
		c.versions[k]++
		if e, ok := c.l1.Get(k); ok {
			e.fetchedAt = time.Time{}
		}
		if c.remote != nil {
			if err := c.remote.Delete(ctx, k); err != nil {
				c.logger.Debug("Remote invalidation failed", zap.String("key", k), zap.Error(err))
			}
		}
	}
}

// InvalidatePrefix invalidates every cached and in-flight key under prefix.
// Parameterized resources (paginated lists, per-period series) cache one
// entry per parameter set; a mutation that can touch any of them flushes the
// whole group.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix Key) {
	p := prefix.String()
	c.mu.Lock()
	defer c.mu.Unlock()

	matches := func(k string) bool {
		return k == p || strings.HasPrefix(k, p+":")
	}
	for _, k := range c.l1.Keys() {
		if !matches(k) {
			continue
		}
		c.versions[k]++
		if e, ok := c.l1.Get(k); ok {
			e.fetchedAt = time.Time{}
		}
		if c.remote != nil {
			if err := c.remote.Delete(ctx, k); err != nil {
				c.logger.Debug("Remote invalidation failed", zap.String("key", k), zap.Error(err))
			}
		}
	}
	// In-flight fetches may target keys not yet present in the LRU
	for k := range c.inflight {
		if matches(k) {
			c.versions[k]++
		}
	}
}

// write replaces the value for key and orders it ahead of in-flight fetches.
// markStale controls whether the next read reconciles in the background.
func (c *Cache) write(k string, value any, staleness time.Duration, markStale bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[k]++
	fetchedAt := time.Now()
	if markStale {
		fetchedAt = time.Time{}
	}
	c.l1.Add(k, &entry{value: value, fetchedAt: fetchedAt, staleness: staleness})
}

// restore puts a snapshot back, or drops the key when there was none.
func (c *Cache) restore(k string, snapshot *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[k]++
	if snapshot == nil {
		c.l1.Remove(k)
		return
	}
	c.l1.Add(k, snapshot)
}

// snapshot copies the current entry for rollback.
func (c *Cache) snapshot(k string) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.l1.Peek(k); ok {
		cp := *e
		return &cp
	}
	return nil
}

// MutateFunc performs the network side of a mutation and returns the server's
// authoritative value.
type MutateFunc[T any] func(ctx context.Context) (T, error)

// Mutate applies an optimistic update: readers of key see the intended end
// state while the call is in flight. On success the server's value is
// committed and the entry is marked for reconciling refetch; on failure the
// pre-mutation snapshot is restored. Exactly one of commit or rollback runs,
// regardless of how the call settles.
func Mutate[T any](ctx context.Context, c *Cache, key Key, staleness time.Duration, optimistic T, fn MutateFunc[T]) (T, error) {
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	k := key.String()

	snap := c.snapshot(k)
	c.write(k, optimistic, staleness, false)

	var (
		result  T
		callErr error
		settled bool
	)
	defer func() {
		if settled {
			return
		}
		// Reached only if fn panicked; roll the readers back
		c.restore(k, snap)
	}()

	result, callErr = fn(ctx)
	settled = true

	if callErr != nil {
		c.restore(k, snap)
		var zero T
		return zero, callErr
	}

	// Commit the authoritative value and let the next read reconcile
	c.write(k, result, staleness, true)
	return result, nil
}

// MutateInvalidate runs a mutation that has no natural optimistic projection.
// The dependent keys are invalidated exactly once after the call settles,
// whether it succeeded or failed, forcing a refetch instead of guessing the
// new state.
func MutateInvalidate[T any](ctx context.Context, c *Cache, keys []Key, fn MutateFunc[T]) (T, error) {
	defer c.Invalidate(ctx, keys...)
	return fn(ctx)
}

// remoteGet loads and decodes a remote entry.
func remoteGet[T any](ctx context.Context, c *Cache, k string) (T, time.Time, bool) {
	var zero T
	data, fetchedAt, err := c.remote.Get(ctx, k)
	if err != nil || data == nil {
		return zero, time.Time{}, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Debug("Discarding undecodable remote entry", zap.String("key", k), zap.Error(err))
		return zero, time.Time{}, false
	}
	return v, fetchedAt, true
}

// remoteSet stores a confirmed value remotely. Best effort.
func remoteSet(c *Cache, k string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.remote.Set(ctx, k, data, time.Now()); err != nil {
		c.logger.Debug("Remote cache write failed", zap.String("key", k), zap.Error(err))
	}
}
