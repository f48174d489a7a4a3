package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewBreakerGauge exports the blob store circuit state as a gauge
// (0 closed, 1 open, 2 half-open). state is called on each scrape.
func NewBreakerGauge(state func() float64) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "puzzlebox",
			Name:      "blob_breaker_state",
			Help:      "Blob store circuit state: 0 closed, 1 open, 2 half-open.",
		},
		state,
	)
}
