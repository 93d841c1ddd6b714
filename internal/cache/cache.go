// Package cache is a time-boxed store for guild resources fetched from the bot API.
//
// Entries are JSON documents of the form
//
//	{"data": <payload>, "timestamp": <written at, epoch ms>, "expiry": <epoch ms>}
//
// written through a storage.Store. An entry is valid while now < expiry.
// Expiry is lazy: a stale entry is deleted when it is next read, there is no
// background sweep. The cache never reports errors to its callers; a broken
// backend or a corrupt entry looks exactly like a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Sizimon/grippendor/internal/metrics"
	"github.com/Sizimon/grippendor/internal/storage"
)

// DefaultTTL is how long an entry stays valid when no TTL is given.
const DefaultTTL = 5 * time.Minute

// ResourceType names one of the cached guild resources.
type ResourceType string

const (
	ResourceConfig  ResourceType = "config"
	ResourceMembers ResourceType = "members"
	ResourceEvents  ResourceType = "events"
	ResourcePresets ResourceType = "presets"
)

// Resources lists every cached resource type in a fixed order.
var Resources = []ResourceType{ResourceConfig, ResourceMembers, ResourceEvents, ResourcePresets}

// Key returns the cache key for a guild's resource: "{resource}_{guildID}".
func Key(resource ResourceType, guildID string) string {
	return string(resource) + "_" + guildID
}

// resourceOf recovers the resource label from a key for metrics.
func resourceOf(key string) string {
	resource, _, found := strings.Cut(key, "_")
	if !found {
		return "other"
	}
	return resource
}

type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Expiry    int64           `json:"expiry"`
}

// Cache wraps a storage backend with TTL handling.
type Cache struct {
	store   storage.Store
	now     func() time.Time
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithTTL overrides DefaultTTL for Set.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// New creates a cache over store. One Cache is meant to be shared by every
// loader in the process.
func New(store storage.Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		now:    time.Now,
		ttl:    DefaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the default time-to-live used by Set.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Set stores payload under key with the cache's default TTL.
func (c *Cache) Set(ctx context.Context, key string, payload any) {
	c.SetWithTTL(ctx, key, payload, c.ttl)
}

// SetWithTTL stores payload under key, valid for ttl from now.
// A ttl of zero or less writes an entry that is already expired.
func (c *Cache) SetWithTTL(ctx context.Context, key string, payload any, ttl time.Duration) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.metrics.CacheWrite(resourceOf(key), err)
		c.logger.Warn("Cache payload not serializable", "key", key, "error", err)
		return
	}

	now := c.now()
	raw, err := json.Marshal(entry{
		Data:      data,
		Timestamp: now.UnixMilli(),
		Expiry:    now.Add(ttl).UnixMilli(),
	})
	if err == nil {
		err = c.store.Set(ctx, key, raw)
	}
	c.metrics.CacheWrite(resourceOf(key), err)
	if err != nil {
		c.logger.Warn("Cache write failed", "key", key, "error", err)
		return
	}
	c.logger.Debug("Cached resource", "key", key, "expires", now.Add(ttl).Format(time.Kitchen))
}

// Get decodes the payload stored under key into dst and reports whether it
// was found. Expired and corrupt entries are deleted and reported as absent.
// dst may be partially written when the payload does not match its type.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	resource := resourceOf(key)

	raw, err := c.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		c.metrics.CacheLookup(resource, metrics.CacheMiss)
		return false
	}
	if err != nil {
		c.metrics.CacheLookup(resource, metrics.CacheError)
		c.logger.Warn("Cache read failed", "key", key, "error", err)
		return false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || len(e.Data) == 0 {
		c.discard(ctx, key, metrics.CacheCorrupt)
		return false
	}

	now := c.now()
	if now.UnixMilli() >= e.Expiry {
		c.discard(ctx, key, metrics.CacheExpired)
		age := now.Sub(time.UnixMilli(e.Timestamp))
		c.logger.Debug("Cache expired", "key", key, "age", age.Round(time.Second))
		return false
	}

	if err := json.Unmarshal(e.Data, dst); err != nil {
		c.discard(ctx, key, metrics.CacheCorrupt)
		return false
	}

	c.metrics.CacheLookup(resource, metrics.CacheHit)
	c.logger.Debug("Cache hit", "key", key, "age", now.Sub(time.UnixMilli(e.Timestamp)).Round(time.Second))
	return true
}

func (c *Cache) discard(ctx context.Context, key, result string) {
	c.metrics.CacheLookup(resourceOf(key), result)
	if result == metrics.CacheCorrupt {
		c.logger.Warn("Discarding corrupt cache entry", "key", key)
	}
	c.Remove(ctx, key)
}

// Remove deletes key. Backend failures are logged and ignored.
func (c *Cache) Remove(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Warn("Cache remove failed", "key", key, "error", err)
	}
}

// Clear deletes every entry. Backend failures are logged and ignored.
func (c *Cache) Clear(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("Cache clear failed", "error", err)
	}
}

// ClearGuild removes all four resource entries for a guild.
func (c *Cache) ClearGuild(ctx context.Context, guildID string) {
	for _, r := range Resources {
		c.Remove(ctx, Key(r, guildID))
	}
}

// GuildStatus reports which of a guild's resources currently have a valid entry.
// Like Get, it purges entries that turn out to be stale.
func (c *Cache) GuildStatus(ctx context.Context, guildID string) map[ResourceType]bool {
	status := make(map[ResourceType]bool, len(Resources))
	for _, r := range Resources {
		var raw json.RawMessage
		status[r] = c.Get(ctx, Key(r, guildID), &raw)
	}
	return status
}
