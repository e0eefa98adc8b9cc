package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	tierMemory  = "memory"
	tierDurable = "durable"
)

// Metrics counts cache outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Hits            *prometheus.CounterVec
	Misses          prometheus.Counter
	Expirations     prometheus.Counter
	StaleServes     prometheus.Counter
	DurableFailures *prometheus.CounterVec
}

// NewMetrics registers the cache collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Hits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seraphim_cache_hits_total",
				Help: "Cache lookups served, by tier",
			},
			[]string{"tier"},
		),
		Misses: factory.NewCounter(prometheus.CounterOpts{
			Name: "seraphim_cache_misses_total",
			Help: "Cache lookups that found nothing usable",
		}),
		Expirations: factory.NewCounter(prometheus.CounterOpts{
			Name: "seraphim_cache_expirations_total",
			Help: "Entries evicted because they expired",
		}),
		StaleServes: factory.NewCounter(prometheus.CounterOpts{
			Name: "seraphim_cache_stale_serves_total",
			Help: "Stale reads that returned an expired entry",
		}),
		DurableFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seraphim_cache_durable_failures_total",
				Help: "Durable tier operations that failed, by operation",
			},
			[]string{"op"},
		),
	}
}

func (m *Metrics) hit(tier string) {
	if m == nil {
		return
	}
	m.Hits.WithLabelValues(tier).Inc()
}

func (m *Metrics) miss() {
	if m == nil {
		return
	}
	m.Misses.Inc()
}

func (m *Metrics) expired() {
	if m == nil {
		return
	}
	m.Expirations.Inc()
}

func (m *Metrics) stale() {
	if m == nil {
		return
	}
	m.StaleServes.Inc()
}

func (m *Metrics) durableFailure(op string) {
	if m == nil {
		return
	}
	m.DurableFailures.WithLabelValues(op).Inc()
}
