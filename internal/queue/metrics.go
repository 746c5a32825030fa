package queue

import "github.com/prometheus/client_golang/prometheus"

// ProcessedTotal counts consumed tasks grouped by terminal status.
var ProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "queue_processed_total",
		Help: "Total tasks processed grouped by status",
	},
	[]string{"kind", "status"},
)

func init() {
	prometheus.MustRegister(ProcessedTotal)
}
