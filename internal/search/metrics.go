package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports per-decision search statistics. A nil *Metrics records
// nothing.
type Metrics struct {
	nodes    prometheus.Counter
	timeouts prometheus.Counter
	duration prometheus.Histogram
	depth    prometheus.Histogram
}

// NewMetrics registers the search collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		nodes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cachex",
			Subsystem: "search",
			Name:      "nodes_total",
			Help:      "Search nodes visited across all decisions",
		}),
		timeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "cachex",
			Subsystem: "search",
			Name:      "timeouts_total",
			Help:      "Decisions cut short by the time budget",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cachex",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Wall time spent per decision",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		depth: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cachex",
			Subsystem: "search",
			Name:      "completed_depth",
			Help:      "Deepest fully completed iteration per decision",
			Buckets:   prometheus.LinearBuckets(0, 1, 8),
		}),
	}
}

func (m *Metrics) observe(stats Stats) {
	if m == nil {
		return
	}
	m.nodes.Add(float64(stats.Nodes))
	if stats.TimedOut {
		m.timeouts.Inc()
	}
	m.duration.Observe(stats.Elapsed.Seconds())
	m.depth.Observe(float64(stats.CompletedDepth))
}
