package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PreviewTotal counts pricing preview calculations by result.
	PreviewTotal *prometheus.CounterVec
	// BulkItemsTotal counts per-product outcomes of bulk pricing updates.
	BulkItemsTotal *prometheus.CounterVec
	// BulkJobsTotal counts async bulk job lifecycle outcomes.
	BulkJobsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PreviewTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_preview_total",
			Help:      "Count of pricing preview calculations by result.",
		}, []string{"result"})
		BulkItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_update_items_total",
			Help:      "Per-product outcomes of bulk pricing updates.",
		}, []string{"status"})
		BulkJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_update_jobs_total",
			Help:      "Async bulk update job outcomes.",
		}, []string{"status"})

		mustRegisterCollector(reg, PreviewTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PreviewTotal = v
			}
		})
		mustRegisterCollector(reg, BulkItemsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BulkItemsTotal = v
			}
		})
		mustRegisterCollector(reg, BulkJobsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BulkJobsTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
