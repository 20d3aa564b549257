package cache

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests  prometheus.Counter
	hits      prometheus.Counter
	evictions prometheus.Counter
	entries   prometheus.Gauge
}

func newMetrics(name string, reg prometheus.Registerer) *metrics {
	labels := prometheus.Labels{"cache": name}

	return &metrics{
		requests: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "airport_splunk",
			Name:        "index_cache_requests_total",
			Help:        "Total count of index listing lookups.",
			ConstLabels: labels,
		})),
		hits: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "airport_splunk",
			Name:        "index_cache_hits_total",
			Help:        "Total count of index listing lookups served from cache.",
			ConstLabels: labels,
		})),
		evictions: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "airport_splunk",
			Name:        "index_cache_evictions_total",
			Help:        "Total count of listings evicted to respect the size bound.",
			ConstLabels: labels,
		})),
		entries: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "airport_splunk",
			Name:        "index_cache_entries",
			Help:        "Current number of cached index listings.",
			ConstLabels: labels,
		})),
	}
}

// register adds c to reg. A cache rebuilt under the same name, for example
// after its catalog was removed and added again, takes over the collector
// registered first. Any other registration failure leaves c unregistered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}
