// Package loader keeps one guild's dashboard data in memory, backed by the
// resource cache and the guild API.
//
// A Loader holds a single guild at a time. Every Mount or Load starts a new
// generation; results that come back for an older generation are dropped from
// the snapshot, although their cache writes still land since cache keys carry
// the guild id.
package loader

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sizimon/grippendor/internal/cache"
	"github.com/Sizimon/grippendor/internal/metrics"
	"github.com/Sizimon/grippendor/internal/models"
)

// ErrNoGuild is returned by calls that need a guild before one was loaded.
var ErrNoGuild = errors.New("loader: no guild loaded")

// Fetcher is the subset of the guild API the loader needs.
type Fetcher interface {
	FetchConfig(ctx context.Context, guildID string) (models.GuildConfig, error)
	FetchMembers(ctx context.Context, guildID string) ([]models.Member, error)
	FetchEvents(ctx context.Context, guildID string) ([]models.Event, error)
	FetchPresets(ctx context.Context, guildID string) ([]models.Preset, error)
	FetchEventParticipants(ctx context.Context, guildID, eventID string) ([]models.Participant, error)
}

// Source tells where a surfaced value came from.
type Source string

const (
	SourceCache Source = "cache"
	SourceFetch Source = "fetch"
)

// Update is passed to the listener each time a resource value is surfaced.
type Update struct {
	Resource cache.ResourceType
	Source   Source
	Snapshot Snapshot
}

// Listener receives updates. It is called without the loader's lock held,
// possibly from several goroutines when loads overlap.
type Listener func(Update)

// Loader fetches and holds the four guild resources.
type Loader struct {
	fetcher  Fetcher
	cache    *cache.Cache
	listener Listener
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu   sync.Mutex
	gen  uint64
	snap Snapshot
}

// Option configures a Loader.
type Option func(*Loader)

func WithListener(fn Listener) Option {
	return func(l *Loader) { l.listener = fn }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New creates a loader. The cache is expected to be shared between loaders.
func New(fetcher Fetcher, c *cache.Cache, opts ...Option) *Loader {
	l := &Loader{
		fetcher: fetcher,
		cache:   c,
		logger:  slog.Default(),
		snap:    emptySnapshot(""),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// result is the settled outcome of reading or fetching one resource.
type result struct {
	resource cache.ResourceType
	value    any
	err      error
	source   Source
	took     time.Duration
}

// Mount is the first load of a guild. Every valid cache entry is surfaced to
// the listener before any request goes out. If any entry missed, all four
// resources are then fetched and overwrite what the cache provided.
func (l *Loader) Mount(ctx context.Context, guildID string) Snapshot {
	gen := l.begin(guildID)

	hits, misses := l.readCache(ctx, guildID)
	l.apply(guildID, gen, hits)

	if len(misses) > 0 {
		l.logger.Debug("Cache incomplete, fetching all resources", "guild", guildID, "missing", misses)
		l.apply(guildID, gen, l.fetch(ctx, guildID, cache.Resources))
	}
	return l.Snapshot()
}

// Load brings the snapshot up to date for guildID. Unless force is set, cached
// resources are used as they are and only the misses are fetched. The call
// waits for every fetch to settle before touching the snapshot; a failed
// resource keeps its previous value.
func (l *Loader) Load(ctx context.Context, guildID string, force bool) Snapshot {
	gen := l.begin(guildID)

	var hits []result
	misses := cache.Resources
	if !force {
		hits, misses = l.readCache(ctx, guildID)
	}

	settled := append(hits, l.fetch(ctx, guildID, misses)...)
	l.apply(guildID, gen, settled)
	return l.Snapshot()
}

// Refresh reloads the current guild bypassing the cache.
func (l *Loader) Refresh(ctx context.Context) Snapshot {
	guildID := l.GuildID()
	if guildID == "" {
		return l.Snapshot()
	}
	return l.Load(ctx, guildID, true)
}

// EventParticipants fetches an event's sign-ups for the current guild.
// Participants are never cached.
func (l *Loader) EventParticipants(ctx context.Context, eventID string) ([]models.Participant, error) {
	guildID := l.GuildID()
	if guildID == "" {
		return nil, ErrNoGuild
	}
	start := time.Now()
	participants, err := l.fetcher.FetchEventParticipants(ctx, guildID, eventID)
	outcome := metrics.FetchOK
	if err != nil {
		outcome = metrics.FetchFailed
	}
	l.metrics.Fetch("participants", outcome, time.Since(start))
	return participants, err
}

// GuildID returns the guild the loader currently holds.
func (l *Loader) GuildID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap.GuildID
}

// Snapshot returns a copy of the current state.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap.clone()
}

// begin starts a new generation. Switching guilds discards the old guild's data.
func (l *Loader) begin(guildID string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.gen++
	if l.snap.GuildID != guildID {
		l.snap = emptySnapshot(guildID)
	}
	l.snap.Generation = l.gen
	return l.gen
}

// readCache reads all four entries in order, before any fetch of the call.
func (l *Loader) readCache(ctx context.Context, guildID string) (hits []result, misses []cache.ResourceType) {
	for _, r := range cache.Resources {
		key := cache.Key(r, guildID)
		var (
			value any
			ok    bool
		)
		switch r {
		case cache.ResourceConfig:
			var cfg models.GuildConfig
			ok = l.cache.Get(ctx, key, &cfg)
			value = cfg.Sanitized()
		case cache.ResourceMembers:
			var members []models.Member
			ok = l.cache.Get(ctx, key, &members)
			value = members
		case cache.ResourceEvents:
			var events []models.Event
			ok = l.cache.Get(ctx, key, &events)
			value = events
		case cache.ResourcePresets:
			var presets []models.Preset
			ok = l.cache.Get(ctx, key, &presets)
			value = presets
		}
		if ok {
			hits = append(hits, result{resource: r, value: value, source: SourceCache})
		} else {
			misses = append(misses, r)
		}
	}
	return hits, misses
}

// fetch requests resources concurrently. Each freshly fetched value is written
// to the cache as soon as it arrives. No goroutine returns an error, so one
// failure never cancels its siblings.
func (l *Loader) fetch(ctx context.Context, guildID string, resources []cache.ResourceType) []result {
	results := make([]result, len(resources))

	var g errgroup.Group
	for i, r := range resources {
		g.Go(func() error {
			start := time.Now()
			value, err := l.fetchOne(ctx, guildID, r)
			results[i] = result{resource: r, value: value, err: err, source: SourceFetch, took: time.Since(start)}
			if err != nil {
				l.logger.Error("Failed to fetch guild resource", "guild", guildID, "resource", r, "error", err)
				return nil
			}
			// The value is cached even if the caller has gone away.
			l.cache.Set(context.WithoutCancel(ctx), cache.Key(r, guildID), value)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (l *Loader) fetchOne(ctx context.Context, guildID string, r cache.ResourceType) (any, error) {
	switch r {
	case cache.ResourceConfig:
		cfg, err := l.fetcher.FetchConfig(ctx, guildID)
		return cfg.Sanitized(), err
	case cache.ResourceMembers:
		return l.fetcher.FetchMembers(ctx, guildID)
	case cache.ResourceEvents:
		return l.fetcher.FetchEvents(ctx, guildID)
	case cache.ResourcePresets:
		return l.fetcher.FetchPresets(ctx, guildID)
	}
	return nil, errors.New("loader: unknown resource " + string(r))
}

// apply folds settled results into the snapshot if gen is still current and
// notifies the listener once per surfaced resource.
func (l *Loader) apply(guildID string, gen uint64, results []result) {
	if len(results) == 0 {
		return
	}

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		l.logger.Debug("Dropping superseded results", "guild", guildID, "generation", gen)
		for _, res := range results {
			if res.source == SourceFetch {
				l.metrics.Fetch(string(res.resource), metrics.FetchSuperseded, res.took)
			}
		}
		return
	}

	var surfaced []Update
	for _, res := range results {
		if res.source == SourceFetch {
			outcome := metrics.FetchOK
			if res.err != nil {
				outcome = metrics.FetchFailed
			}
			l.metrics.Fetch(string(res.resource), outcome, res.took)
		}
		if res.err != nil {
			l.snap.Failed[res.resource] = res.err.Error()
			continue
		}

		switch v := res.value.(type) {
		case models.GuildConfig:
			l.snap.Config = v.Sanitized()
		case []models.Member:
			l.snap.Members = v
		case []models.Event:
			l.snap.Events = v
		case []models.Preset:
			l.snap.Presets = v
		}
		delete(l.snap.Failed, res.resource)
		l.snap.Loaded[res.resource] = true
		surfaced = append(surfaced, Update{Resource: res.resource, Source: res.source})
	}
	snap := l.snap.clone()
	l.mu.Unlock()

	if l.listener == nil {
		return
	}
	for _, u := range surfaced {
		u.Snapshot = snap
		l.listener(u)
	}
}

// Snapshot is a point-in-time copy of a loader's state.
type Snapshot struct {
	GuildID string `json:"guild_id"`

	Config  models.GuildConfig `json:"config"`
	Members []models.Member    `json:"members"`
	Events  []models.Event     `json:"events"`
	Presets []models.Preset    `json:"presets"`

	// Loaded marks resources that hold a value for this guild.
	Loaded map[cache.ResourceType]bool `json:"loaded"`
	// Failed holds the last fetch error per resource, cleared once it loads.
	Failed map[cache.ResourceType]string `json:"failed,omitempty"`

	Generation uint64 `json:"generation"`
}

func emptySnapshot(guildID string) Snapshot {
	return Snapshot{
		GuildID: guildID,
		Loaded:  make(map[cache.ResourceType]bool),
		Failed:  make(map[cache.ResourceType]string),
	}
}

func (s Snapshot) clone() Snapshot {
	s.Members = slices.Clone(s.Members)
	s.Events = slices.Clone(s.Events)
	s.Presets = slices.Clone(s.Presets)
	s.Loaded = maps.Clone(s.Loaded)
	s.Failed = maps.Clone(s.Failed)
	return s
}

// Event looks up a loaded event by id.
func (s Snapshot) Event(id string) (models.Event, bool) {
	for _, e := range s.Events {
		if e.ID == id {
			return e, true
		}
	}
	return models.Event{}, false
}

// Preset looks up a loaded preset by id.
func (s Snapshot) Preset(id string) (models.Preset, bool) {
	for _, p := range s.Presets {
		if p.ID == id {
			return p, true
		}
	}
	return models.Preset{}, false
}
