package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for address resolution.
// Tracks which tier produced each address, upstream provider health and
// street cache efficiency. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Resolutions        *prometheus.CounterVec
	StrictFailures     prometheus.Counter
	ResolveDuration    prometheus.Histogram
	ProviderRequests   *prometheus.CounterVec
	StreetCacheResults *prometheus.CounterVec
	CatalogKeys        prometheus.Gauge
	CatalogEntries     prometheus.Gauge
}

// New registers all address metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mxaddress_resolutions_total",
			Help: "Total number of resolved addresses by producing tier",
		}, []string{"tier"}),
		StrictFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "mxaddress_strict_failures_total",
			Help: "Total number of strict-mode resolutions with no real address data",
		}),
		ResolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mxaddress_resolve_duration_seconds",
			Help:    "Duration of Resolve operations (dominated by upstream geocoding)",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ProviderRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mxaddress_provider_requests_total",
			Help: "Total number of upstream geocoding requests by provider and outcome",
		}, []string{"provider", "outcome"}),
		StreetCacheResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mxaddress_street_cache_results_total",
			Help: "Street cache lookups by result (hit or miss)",
		}, []string{"result"}),
		CatalogKeys: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mxaddress_catalog_keys",
			Help: "Number of (state, municipality) keys in the postal catalog",
		}),
		CatalogEntries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mxaddress_catalog_entries",
			Help: "Number of postal entries in the postal catalog",
		}),
	}
}

// IncrementResolution records an address produced by tier.
func (m *Metrics) IncrementResolution(tier string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(tier).Inc()
}

// IncrementStrictFailure records a strict-mode failure.
func (m *Metrics) IncrementStrictFailure() {
	if m == nil {
		return
	}
	m.StrictFailures.Inc()
}

// ObserveResolve records the duration of a Resolve call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveResolve(start time.Time) {
	if m == nil {
		return
	}
	m.ResolveDuration.Observe(time.Since(start).Seconds())
}

// IncrementProviderRequest records one upstream attempt.
// Outcome is "ok" or an error category.
func (m *Metrics) IncrementProviderRequest(provider, outcome string) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) IncrementStreetCacheHit() {
	if m == nil {
		return
	}
	m.StreetCacheResults.WithLabelValues("hit").Inc()
}

func (m *Metrics) IncrementStreetCacheMiss() {
	if m == nil {
		return
	}
	m.StreetCacheResults.WithLabelValues("miss").Inc()
}

// SetCatalogSize publishes the size of the loaded postal catalog.
func (m *Metrics) SetCatalogSize(keys, entries int) {
	if m == nil {
		return
	}
	m.CatalogKeys.Set(float64(keys))
	m.CatalogEntries.Set(float64(entries))
}
