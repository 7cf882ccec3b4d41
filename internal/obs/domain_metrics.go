package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// ValidationTotal counts cart validation outcomes by result.
	ValidationTotal *prometheus.CounterVec
	// DiscrepancyTotal counts individual price discrepancies detected.
	DiscrepancyTotal prometheus.Counter
	// ResolverLatency records batched catalog fetch latency in milliseconds.
	ResolverLatency prometheus.Histogram
	// RateLimitedTotal counts requests rejected by the sliding-window gate.
	RateLimitedTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		ValidationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_validation_total",
			Help:      "Count of cart validation requests by outcome.",
		}, []string{"result"})
		DiscrepancyTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_discrepancy_total",
			Help:      "Number of cart lines whose client price mismatched beyond tolerance.",
		})
		ResolverLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_resolve_duration_ms",
			Help:      "Latency of batched authoritative catalog fetches in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		})
		RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the validation rate limiter.",
		})

		registerOrReuseCounterVec(reg, &ValidationTotal)
		registerOrReuseCounter(reg, &DiscrepancyTotal)
		registerOrReuseHistogram(reg, &ResolverLatency)
		registerOrReuseCounter(reg, &RateLimitedTotal)
	})
}

// ObserveValidation increments the validation outcome counter when metrics
// are registered. Safe to call before MustRegisterDomainMetrics in tests.
func ObserveValidation(result string) {
	if ValidationTotal != nil {
		ValidationTotal.WithLabelValues(result).Inc()
	}
}

// ObserveDiscrepancies adds n detected discrepancies to the counter.
func ObserveDiscrepancies(n int) {
	if DiscrepancyTotal != nil && n > 0 {
		DiscrepancyTotal.Add(float64(n))
	}
}

// ObserveRateLimited counts one rejected request.
func ObserveRateLimited() {
	if RateLimitedTotal != nil {
		RateLimitedTotal.Inc()
	}
}

func registerOrReuseCounterVec(reg prometheus.Registerer, c **prometheus.CounterVec) {
	if err := reg.Register(*c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				*c = existing
				return
			}
		}
		panic(err)
	}
}

func registerOrReuseCounter(reg prometheus.Registerer, c *prometheus.Counter) {
	if err := reg.Register(*c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				*c = existing
				return
			}
		}
		panic(err)
	}
}

func registerOrReuseHistogram(reg prometheus.Registerer, h *prometheus.Histogram) {
	if err := reg.Register(*h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				*h = existing
				return
			}
		}
		panic(err)
	}
}
