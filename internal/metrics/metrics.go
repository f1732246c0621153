// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Batch metrics
	CheckRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dropwatch",
		Name:      "check_runs_total",
		Help:      "Total number of batch price-check runs",
	})

	ProductsCheckedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dropwatch",
		Name:      "products_checked_total",
		Help:      "Total number of successful per-product checks",
	})

	ScrapeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dropwatch",
			Name:      "scrape_failures_total",
			Help:      "Total number of failed scrape attempts",
		},
		[]string{"kind"},
	)

	// Alert metrics
	AlertsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dropwatch",
		Name:      "alerts_sent_total",
		Help:      "Total number of price-drop alerts delivered",
	})

	AlertFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dropwatch",
		Name:      "alert_failures_total",
		Help:      "Total number of alert deliveries that failed",
	})

	ProductsTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dropwatch",
		Name:      "products_tracked",
		Help:      "Number of products currently tracked",
	})
)
