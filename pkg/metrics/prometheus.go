package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	SearchesTotal     *prometheus.CounterVec
	UpstreamCalls     *prometheus.CounterVec
	SearchDuration    prometheus.Histogram
	OffersReturned    prometheus.Histogram
	WatchChecks       prometheus.Counter
	WatchesRemoved    *prometheus.CounterVec
	NotificationsSent prometheus.Counter
	ErrorsCount       *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SearchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "The total number of fare searches by mode and outcome",
		}, []string{"mode", "outcome"}),
		UpstreamCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_calls_total",
			Help:      "The total number of fare provider calls by outcome",
		}, []string{"outcome"}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time taken to complete a fare search including fan-out pacing",
			Buckets:   prometheus.DefBuckets,
		}),
		OffersReturned: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "offers_returned",
			Help:      "Number of offers in a merged search result",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		WatchChecks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watch_checks_total",
			Help:      "The total number of price watch checks",
		}),
		WatchesRemoved: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watches_removed_total",
			Help:      "The total number of watches removed by reason",
		}, []string{"reason"}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "The total number of price change notifications delivered",
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
