package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// SetOptions control a single Set call.
type SetOptions struct {
	// TTLSeconds is the entry's time-to-live. Zero uses the cache default;
	// NoExpiry stores an entry that never expires.
	TTLSeconds int

	// Params are the request parameters folded into the physical key.
	Params map[string]any

	// Tags label the entry for bulk purge.
	Tags []string
}

// Options configure a Cache. Use the With* helpers.
type Options struct {
	// Logger receives structured cache logs. Defaults to a disabled logger.
	Logger zerolog.Logger

	// Metrics receives hit/miss/eviction events. Defaults to NoopMetrics.
	Metrics Metrics

	// DefaultTTLSeconds applies to Set calls without an explicit TTL.
	// NoExpiry means entries never expire unless a TTL is given per call.
	DefaultTTLSeconds int

	// Enabled toggles the cache. A disabled cache treats every read as a
	// miss and every write as a no-op, so callers need no special casing.
	Enabled bool

	// Clock overrides the time source, for tests.
	Clock func() time.Time
}

// Option mutates Options.
type Option func(*Options)

// WithLogger sets the cache logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithDefaultTTL sets the default TTL in seconds for Set calls that do not
// specify one. Pass NoExpiry for entries that never expire by default.
func WithDefaultTTL(seconds int) Option {
	return func(o *Options) { o.DefaultTTLSeconds = seconds }
}

// WithEnabled toggles the cache on or off.
func WithEnabled(enabled bool) Option {
	return func(o *Options) { o.Enabled = enabled }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Clock = now }
}

// Cache is a typed, persistent cache rooted at a single directory.
// Construct with Open and release with Close; there is no package-level
// shared instance.
//
// All methods are safe for concurrent use within one process. All mutations
// are serialized behind a single mutex because the metadata catalog is
// rewritten in full on every mutation. Across processes sharing the same
// root no coordination is provided (single-writer-per-root assumption).
type Cache struct {
	mu    sync.Mutex
	root  string
	store *entryStore
	index *index

	log        zerolog.Logger
	metrics    Metrics
	now        func() time.Time
	defaultTTL int
	enabled    bool
	closed     bool

	hits   atomic.Int64
	misses atomic.Int64

	// flights coalesces concurrent GetOrFetch calls per physical key.
	flights singleflight.Group
}

// Open creates or reopens a cache rooted at root.
// The directory and its type partitions are created if missing. A corrupt
// metadata catalog is not fatal: the cache starts cold with a warning.
func Open(root string, opts ...Option) (*Cache, error) {
	options := Options{
		Logger:            zerolog.Nop(),
		Metrics:           NoopMetrics{},
		DefaultTTLSeconds: DefaultTTLSeconds,
		Enabled:           true,
		Clock:             time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if !options.Enabled {
		return &Cache{
			metrics: options.Metrics,
			log:     options.Logger,
			now:     options.Clock,
		}, nil
	}

	if root == "" {
		return nil, fmt.Errorf("%w: cache root cannot be empty", ErrStorageIO)
	}
	if err := ValidateTTL(options.DefaultTTLSeconds); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("%w: creating cache root: %v", ErrStorageIO, err)
	}

	log := options.Logger
	store, err := newEntryStore(root, log)
	if err != nil {
		return nil, err
	}

	c := &Cache{
		root:       root,
		store:      store,
		index:      loadIndex(root, log),
		log:        log,
		metrics:    options.Metrics,
		now:        options.Clock,
		defaultTTL: options.DefaultTTLSeconds,
		enabled:    true,
	}
	c.reconcile()
	c.publishSize()
	return c, nil
}

// Close marks the cache closed. All state is already durable (the catalog
// is written through on every mutation), so Close only fences further use.
func (c *Cache) Close() error {
	if !c.enabled {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Enabled reports whether caching is active.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Root returns the cache root directory, or empty when disabled.
func (c *Cache) Root() string {
	return c.root
}

// Get retrieves the payload for (key, type, params).
// It returns ok=false on any miss: absent entry, lazily-expired entry
// (removed as a side effect), or corrupt payload (also removed). The only
// errors returned are for malformed input; storage trouble degrades to a miss.
func (c *Cache) Get(key string, ct Type, params map[string]any) ([]byte, bool, error) {
	if !c.enabled {
		return nil, false, nil
	}

	physical, err := DeriveKey(key, ct, params)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, false, ErrClosed
	}

	meta, ok := c.index.get(physical)
	if !ok {
		c.mu.Unlock()
		return nil, false, c.recordMiss()
	}

	if meta.Expired(c.now()) {
		// Lazy expiry: drop the payload and the index record in lockstep.
		c.store.remove(physical, ct)
		if removeErr := c.index.remove(physical); removeErr != nil {
			c.log.Warn().Err(removeErr).Str("key", key).Msg("failed to persist catalog after lazy expiry")
		}
		c.mu.Unlock()
		c.metrics.Evict(EvictExpired)
		return nil, false, c.recordMiss()
	}
	c.mu.Unlock()

	// The payload read proceeds without holding the lock.
	payload, ok := c.store.read(physical, ct)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !ok {
		// Missing or corrupt underneath us: reconverge the index.
		if removeErr := c.index.remove(physical); removeErr != nil {
			c.log.Warn().Err(removeErr).Str("key", key).Msg("failed to persist catalog after purging corrupt entry")
		}
		c.metrics.Evict(EvictCorrupt)
		return nil, false, c.recordMiss()
	}

	meta, ok = c.index.get(physical)
	if !ok {
		// Lost a race with an eviction of the same key; the losing side
		// reports a miss rather than erroring.
		return nil, false, c.recordMiss()
	}

	meta.AccessCount++
	meta.LastAccessed = c.now()
	if upsertErr := c.index.upsert(physical, meta); upsertErr != nil {
		c.log.Warn().Err(upsertErr).Str("key", key).Msg("failed to persist access metadata")
	}

	c.hits.Add(1)
	c.metrics.Hit()
	return payload, true, nil
}

// Set stores payload under (key, type, opts.Params) with the TTL resolved
// from opts. A failed write aborts the set and is reported as an error; the
// index is never left pointing at a file that was not fully written.
func (c *Cache) Set(key string, payload []byte, ct Type, opts SetOptions) error {
	if !c.enabled {
		return nil
	}

	physical, err := DeriveKey(key, ct, opts.Params)
	if err != nil {
		return err
	}

	ttl := opts.TTLSeconds
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	size, err := c.store.write(physical, ct, payload)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Str("type", string(ct)).Msg("cache write failed")
		return err
	}

	now := c.now()
	meta := &EntryMeta{
		LogicalKey: key,
		CacheType:  ct,
		CreatedAt:  now,
		SizeBytes:  size,
		Tags:       opts.Tags,
	}
	if ttl > 0 {
		expiresAt := now.Add(time.Duration(ttl) * time.Second)
		meta.ExpiresAt = &expiresAt
	}

	if upsertErr := c.index.upsert(physical, meta); upsertErr != nil {
		// Keep store and index in lockstep: drop the file we just wrote.
		c.store.remove(physical, ct)
		return upsertErr
	}

	c.publishSize()
	return nil
}

// Delete removes the entry for (key, type, params) from both the store and
// the index. It is idempotent and reports whether anything was removed.
func (c *Cache) Delete(key string, ct Type, params map[string]any) (bool, error) {
	if !c.enabled {
		return false, nil
	}

	physical, err := DeriveKey(key, ct, params)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrClosed
	}

	_, hadMeta := c.index.get(physical)
	removedFile := c.store.remove(physical, ct)
	if removeErr := c.index.remove(physical); removeErr != nil {
		return false, removeErr
	}

	if hadMeta || removedFile {
		c.metrics.Evict(EvictDeleted)
		c.publishSize()
		return true, nil
	}
	return false, nil
}

// GetOrFetch returns the cached payload for (key, type, opts.Params) or, on
// a miss, invokes fetch and caches its result under opts. Concurrent callers
// for the same physical key share a single in-flight fetch. A failure to
// cache the fetched payload is logged but does not fail the call.
func (c *Cache) GetOrFetch(key string, ct Type, opts SetOptions, fetch func() ([]byte, error)) ([]byte, error) {
	if fetch == nil {
		return nil, ErrNoFetcher
	}

	payload, ok, err := c.Get(key, ct, opts.Params)
	if err != nil {
		return nil, err
	}
	if ok {
		return payload, nil
	}

	physical, err := DeriveKey(key, ct, opts.Params)
	if err != nil {
		return nil, err
	}

	result, err, _ := c.flights.Do(physical, func() (any, error) {
		// Another flight may have populated the entry while we waited.
		if cached, hit, _ := c.Get(key, ct, opts.Params); hit {
			return cached, nil
		}

		fetched, fetchErr := fetch()
		if fetchErr != nil {
			return nil, fetchErr
		}
		if setErr := c.Set(key, fetched, ct, opts); setErr != nil {
			c.log.Warn().Err(setErr).Str("key", key).Msg("failed to cache fetched payload")
		}
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	payload, _ = result.([]byte)
	return payload, nil
}

// Entries returns a snapshot of all catalogued metadata records, sorted by
// logical key. It never touches the entry store or deserializes payloads.
func (c *Cache) Entries() []EntryMeta {
	return c.snapshot(func(*EntryMeta) bool { return true })
}

// EntriesOfType returns metadata snapshots for all entries of the given type.
func (c *Cache) EntriesOfType(ct Type) []EntryMeta {
	return c.snapshot(func(m *EntryMeta) bool { return m.CacheType == ct })
}

// EntriesWithTag returns metadata snapshots for all entries carrying tag.
func (c *Cache) EntriesWithTag(tag string) []EntryMeta {
	return c.snapshot(func(m *EntryMeta) bool { return m.hasAnyTag([]string{tag}) })
}

// snapshot copies matching metadata records out of the index.
func (c *Cache) snapshot(match func(*EntryMeta) bool) []EntryMeta {
	if !c.enabled {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []EntryMeta
	for _, key := range c.index.keysMatching(match) {
		if meta, ok := c.index.get(key); ok {
			out = append(out, *meta)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LogicalKey < out[j].LogicalKey })
	return out
}

// recordMiss bumps the miss counters. It returns nil so miss paths can
// return its result directly.
func (c *Cache) recordMiss() error {
	c.misses.Add(1)
	c.metrics.Miss()
	return nil
}

// publishSize reports the current entry count and total byte size to the
// metrics sink. Called with mu held (or during Open before publication).
func (c *Cache) publishSize() {
	if !c.enabled {
		return
	}
	c.metrics.Size(c.index.size(), c.index.totalSize())
}

// reconcile re-aligns the index and the store after a crash or external
// tampering: index records whose payload file is gone are dropped, and
// payload files with no index record are deleted. Called once from Open.
func (c *Cache) reconcile() {
	var strays []string
	for key, meta := range c.index.entries {
		if _, err := os.Stat(c.store.path(key, meta.CacheType)); err != nil {
			strays = append(strays, key)
		}
	}
	for _, key := range strays {
		if err := c.index.remove(key); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("failed to drop stray index record")
		}
	}
	if len(strays) > 0 {
		c.log.Warn().Int("count", len(strays)).Msg("dropped index records with missing payload files")
	}

	for _, t := range Types() {
		entries, err := os.ReadDir(filepath.Join(c.root, string(t)))
		if err != nil {
			continue
		}
		for _, dirEntry := range entries {
			name := dirEntry.Name()
			if dirEntry.IsDir() || filepath.Ext(name) != entryFileExtension {
				continue
			}
			key := strings.TrimSuffix(name, entryFileExtension)
			if _, ok := c.index.get(key); !ok {
				_ = os.Remove(filepath.Join(c.root, string(t), name))
			}
		}
	}
}
