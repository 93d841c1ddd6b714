// Package metrics defines the Prometheus collectors for the planner.
//
// All recording methods are safe to call on a nil *Metrics, so components can
// take metrics as an optional dependency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "grippendor"

// Cache lookup results.
const (
	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheExpired = "expired"
	CacheCorrupt = "corrupt"
	CacheError   = "error"
)

// Fetch outcomes.
const (
	FetchOK         = "ok"
	FetchFailed     = "failed"
	FetchSuperseded = "superseded"
)

// Metrics groups every collector the planner exports.
type Metrics struct {
	CacheLookups *prometheus.CounterVec
	CacheWrites  *prometheus.CounterVec

	Fetches       *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec

	Allocations        prometheus.Counter
	AllocatedParties   prometheus.Histogram
	UnusedParticipants prometheus.Histogram

	RPCRequests *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Resource cache lookups by resource type and result.",
		}, []string{"resource", "result"}),
		CacheWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "writes_total",
			Help:      "Resource cache writes by resource type and result.",
		}, []string{"resource", "result"}),
		Fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "fetches_total",
			Help:      "Guild API fetches by resource type and outcome.",
		}, []string{"resource", "outcome"}),
		FetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "fetch_duration_seconds",
			Help:      "Guild API fetch latency by resource type.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
		Allocations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "allocator",
			Name:      "runs_total",
			Help:      "Party allocation runs.",
		}),
		AllocatedParties: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "allocator",
			Name:      "parties",
			Help:      "Parties produced per allocation run.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		}),
		UnusedParticipants: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "allocator",
			Name:      "unused_participants",
			Help:      "Participants left unused per allocation run.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
		}),
		RPCRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "RPC requests by procedure and result code.",
		}, []string{"procedure", "code"}),
	}
}

func (m *Metrics) CacheLookup(resource, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(resource, result).Inc()
}

func (m *Metrics) CacheWrite(resource string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = CacheError
	}
	m.CacheWrites.WithLabelValues(resource, result).Inc()
}

func (m *Metrics) Fetch(resource, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(resource, outcome).Inc()
	m.FetchDuration.WithLabelValues(resource).Observe(took.Seconds())
}

func (m *Metrics) Allocation(parties, unused int) {
	if m == nil {
		return
	}
	m.Allocations.Inc()
	m.AllocatedParties.Observe(float64(parties))
	m.UnusedParticipants.Observe(float64(unused))
}

func (m *Metrics) RPC(procedure, code string) {
	if m == nil {
		return
	}
	m.RPCRequests.WithLabelValues(procedure, code).Inc()
}
