// Package cache is the client-side query cache keeping independently
// rendered views consistent after mutations. Reads are cached per
// canonical key with a staleness window; mutations invalidate declared
// resources, which refetches any subscribed key.
package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Key identifies one (resource, parameters) query.
type Key string

// NewKey builds a canonical key from a resource name and its parameters.
// Parameters are sorted so equal queries always map to the same key.
func NewKey(resource string, params ...string) Key {
	if len(params) == 0 {
		return Key(resource)
	}
	sorted := make([]string, len(params))
	copy(sorted, params)
	sort.Strings(sorted)
	return Key(resource + "/" + strings.Join(sorted, "/"))
}

// Resource returns the resource name the key belongs to.
func (k Key) Resource() string {
	if i := strings.IndexByte(string(k), '/'); i >= 0 {
		return string(k)[:i]
	}
	return string(k)
}

// FetchFunc loads the value for a key from the backend.
type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	value     any
	hasValue  bool
	fetchedAt time.Time
	stale     bool
	// version is bumped on every fetch start and every invalidation; a
	// completing fetch only writes if its version is still current, so
	// superseded responses are discarded rather than applied.
	version uint64
}

// Cache is the shared query cache. Any view may read; mutations are the
// only permitted source of invalidation.
type Cache struct {
	mu         sync.Mutex
	staleAfter time.Duration
	entries    map[Key]*entry
	subs       map[Key]map[int]func(any)
	fetchers   map[Key]FetchFunc
	nextSubID  int
}

// New creates a cache whose values stay fresh for staleAfter.
func New(staleAfter time.Duration) *Cache {
	return &Cache{
		staleAfter: staleAfter,
		entries:    make(map[Key]*entry),
		subs:       make(map[Key]map[int]func(any)),
		fetchers:   make(map[Key]FetchFunc),
	}
}

// Resolve returns the value for key. A fresh cached value is returned
// without a network call. A stale cached value is returned immediately
// while one refetch runs in the background (stale-while-revalidate). A
// miss fetches synchronously.
func (c *Cache) Resolve(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && e.hasValue {
		if !e.stale && time.Since(e.fetchedAt) < c.staleAfter {
			value := e.value
			c.mu.Unlock()
			return value, nil
		}
		value := e.value
		version := c.beginFetchLocked(key)
		c.mu.Unlock()
		go c.runFetch(context.WithoutCancel(ctx), key, version, fetch)
		return value, nil
	}
	version := c.beginFetchLocked(key)
	c.mu.Unlock()

	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.commit(key, version, value)
	return value, nil
}

// Invalidate marks every cached entry of the given resources stale.
// Keys with live subscribers refetch immediately; unmounted keys simply
// refetch on their next subscription or read.
func (c *Cache) Invalidate(resources ...string) {
	c.mu.Lock()
	var refetch []Key
	for _, resource := range resources {
		for key, e := range c.entries {
			if key.Resource() != resource {
				continue
			}
			e.stale = true
			e.version++ // supersede any in-flight fetch
			if len(c.subs[key]) > 0 && c.fetchers[key] != nil {
				refetch = append(refetch, key)
			}
		}
		// Subscribed keys never fetched (or already evicted) still refetch.
		for key := range c.subs {
			if key.Resource() != resource || c.entries[key] != nil || c.fetchers[key] == nil {
				continue
			}
			refetch = append(refetch, key)
		}
	}
	versions := make(map[Key]uint64, len(refetch))
	for _, key := range refetch {
		versions[key] = c.beginFetchLocked(key)
	}
	c.mu.Unlock()

	for _, key := range refetch {
		go c.runFetch(context.Background(), key, versions[key], c.fetcherFor(key))
	}
}

// Subscribe registers onChange to run whenever key gets a new value, and
// remembers fetch so invalidations can refetch the key. If the entry is
// missing or stale a refetch starts immediately. The returned cancel
// detaches the view; late results no longer reach it.
func (c *Cache) Subscribe(key Key, fetch FetchFunc, onChange func(any)) (cancel func()) {
	c.mu.Lock()
	c.nextSubID++
	id := c.nextSubID
	if c.subs[key] == nil {
		c.subs[key] = make(map[int]func(any))
	}
	c.subs[key][id] = onChange
	c.fetchers[key] = fetch

	e := c.entries[key]
	needsFetch := e == nil || !e.hasValue || e.stale || time.Since(e.fetchedAt) >= c.staleAfter
	var version uint64
	if needsFetch {
		version = c.beginFetchLocked(key)
	}
	c.mu.Unlock()

	if needsFetch {
		go c.runFetch(context.Background(), key, version, fetch)
	}

	return func() {
		c.mu.Lock()
		delete(c.subs[key], id)
		if len(c.subs[key]) == 0 {
			delete(c.subs, key)
		}
		c.mu.Unlock()
	}
}

// Poll refetches key every interval until the returned stop is called.
// Used by views that want periodic refresh while mounted.
func (c *Cache) Poll(key Key, interval time.Duration, fetch FetchFunc) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				c.mu.Lock()
				version := c.beginFetchLocked(key)
				c.mu.Unlock()
				c.runFetch(context.Background(), key, version, fetch)
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// Peek returns the cached value without fetching, if one exists.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.entries[key]; e != nil && e.hasValue {
		return e.value, true
	}
	return nil, false
}

// beginFetchLocked bumps the entry version and returns the token the
// fetch must present to commit its result.
func (c *Cache) beginFetchLocked(key Key) uint64 {
	e := c.entries[key]
	if e == nil {
		e = &entry{}
		c.entries[key] = e
	}
	e.version++
	return e.version
}

// runFetch executes fetch and commits the result if still current.
// Failed refetches keep the previous value; the next read tries again.
func (c *Cache) runFetch(ctx context.Context, key Key, version uint64, fetch FetchFunc) {
	if fetch == nil {
		return
	}
	value, err := fetch(ctx)
	if err != nil {
		return
	}
	c.commit(key, version, value)
}

// commit stores a fetched value unless a newer fetch or invalidation
// superseded it, then notifies subscribers outside the lock.
func (c *Cache) commit(key Key, version uint64, value any) {
	c.mu.Lock()
	e := c.entries[key]
	if e == nil || e.version != version {
		c.mu.Unlock()
		return
	}
	e.value = value
	e.hasValue = true
	e.fetchedAt = time.Now()
	e.stale = false

	listeners := make([]func(any), 0, len(c.subs[key]))
	for _, fn := range c.subs[key] {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(value)
	}
}

func (c *Cache) fetcherFor(key Key) FetchFunc {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchers[key]
}
