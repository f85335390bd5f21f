package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the service's Prometheus collectors behind a private
// registry so tests can create isolated instances.
type Registry struct {
	reg *prometheus.Registry

	QuotesTotal       *prometheus.CounterVec
	QuoteFailures     *prometheus.CounterVec
	TariffFallbacks   prometheus.Counter
	TaxFailOpens      prometheus.Counter
	QuoteDurationSecs prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_quotes_total",
		Help: "Priced order quotes produced, by fulfillment type.",
	}, []string{"fulfillment"})

	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_quote_failures_total",
		Help: "Rejected quote requests, by error code.",
	}, []string{"reason"})

	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_tariff_fallback_total",
		Help: "Delivery fee computations that fell back to the internal tariff table.",
	})

	taxFailOpens := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_tax_fail_open_total",
		Help: "Tax computations that failed open to zero tax.",
	})

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orders_quote_duration_seconds",
		Help:    "End-to-end quote pipeline latency.",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(quotes, failures, fallbacks, taxFailOpens, duration)
	return &Registry{
		reg:               r,
		QuotesTotal:       quotes,
		QuoteFailures:     failures,
		TariffFallbacks:   fallbacks,
		TaxFailOpens:      taxFailOpens,
		QuoteDurationSecs: duration,
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
