// Package prommetrics exports searcher and search metrics to Prometheus.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records quarry operations as Prometheus metrics. It implements
// quarry.MetricsCollector.
type Collector struct {
	SearcherOpensTotal *prometheus.CounterVec
	SearcherOpenWait   prometheus.Histogram
	SearchersRejected  prometheus.Counter
	SearchesTotal      *prometheus.CounterVec
	SearchLatency      prometheus.Histogram
	SearchResultsCount prometheus.Histogram
}

// New creates the collectors and registers them with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		SearcherOpensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quarry_searcher_opens_total",
				Help: "Total searcher admissions by status (ok, error).",
			},
			[]string{"status"},
		),
		SearcherOpenWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quarry_searcher_open_seconds",
				Help:    "Time to admit a searcher and open its snapshot, in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		SearchersRejected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "quarry_searchers_rejected_total",
				Help: "Total searchers not admitted before their context ended.",
			},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quarry_searches_total",
				Help: "Total searches by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quarry_search_latency_seconds",
				Help:    "Search latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quarry_search_results_count",
				Help:    "Number of results returned per search.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 1000},
			},
		),
	}

	for _, col := range []prometheus.Collector{
		c.SearcherOpensTotal,
		c.SearcherOpenWait,
		c.SearchersRejected,
		c.SearchesTotal,
		c.SearchLatency,
		c.SearchResultsCount,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordSearcherOpen records a searcher admission.
func (c *Collector) RecordSearcherOpen(duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.SearcherOpensTotal.WithLabelValues(status).Inc()
	c.SearcherOpenWait.Observe(duration.Seconds())
}

// RecordSearcherRejected records a searcher that was not admitted.
func (c *Collector) RecordSearcherRejected() {
	c.SearchersRejected.Inc()
}

// RecordSearch records a finished search.
func (c *Collector) RecordSearch(results int, duration time.Duration, err error) {
	switch {
	case err != nil:
		c.SearchesTotal.WithLabelValues("error").Inc()
	case results == 0:
		c.SearchesTotal.WithLabelValues("zero_result").Inc()
	default:
		c.SearchesTotal.WithLabelValues("hit").Inc()
	}
	c.SearchLatency.Observe(duration.Seconds())
	if err == nil {
		c.SearchResultsCount.Observe(float64(results))
	}
}
