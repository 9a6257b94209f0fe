// Package metrics exposes Prometheus collectors for balance computation,
// the balance cache and RPC traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Balance views.
const (
	ViewPairwise  = "pairwise"
	ViewGroup     = "group"
	ViewAggregate = "aggregate"
	ViewAdvanced  = "advanced"
	ViewTotal     = "total"
)

// Metrics holds the server's collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	balanceComputations *prometheus.CounterVec
	balanceDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	cacheErrors         prometheus.Counter
	rpcRequests         *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		balanceComputations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "splitledger_balance_computations_total",
			Help: "Number of balance computations by view",
		}, []string{"view"}),
		balanceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "splitledger_balance_computation_seconds",
			Help:    "Time spent computing balances by view",
			Buckets: prometheus.DefBuckets,
		}, []string{"view"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_balance_cache_hits_total",
			Help: "Group balance cache hits",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_balance_cache_misses_total",
			Help: "Group balance cache misses",
		}),
		cacheErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_balance_cache_errors_total",
			Help: "Group balance cache failures",
		}),
		rpcRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "splitledger_rpc_requests_total",
			Help: "RPC requests by procedure and result code",
		}, []string{"procedure", "code"}),
	}
}

// ObserveBalance records one computation of view that started at start.
func (m *Metrics) ObserveBalance(view string, start time.Time) {
	if m == nil {
		return
	}
	m.balanceComputations.WithLabelValues(view).Inc()
	m.balanceDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

// CacheHit records a cache hit.
func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

// CacheMiss records a cache miss.
func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

// CacheError records a failed cache read or write.
func (m *Metrics) CacheError() {
	if m != nil {
		m.cacheErrors.Inc()
	}
}

// RPC records one completed RPC.
func (m *Metrics) RPC(procedure, code string) {
	if m != nil {
		m.rpcRequests.WithLabelValues(procedure, code).Inc()
	}
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
