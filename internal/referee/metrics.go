package referee

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	results *prometheus.CounterVec
	turns   prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		results: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cachex",
			Subsystem: "match",
			Name:      "results_total",
			Help:      "Finished matches by result",
		}, []string{"result"}),
		turns: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cachex",
			Subsystem: "match",
			Name:      "turns",
			Help:      "Turns played per finished match",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 8),
		}),
	}
}

func (m *Metrics) observe(o Outcome) {
	if m == nil {
		return
	}
	m.results.WithLabelValues(o.Result()).Inc()
	m.turns.Observe(float64(o.Turns))
}
