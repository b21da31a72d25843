package radio

import "github.com/prometheus/client_golang/prometheus"

// Metrics
var (
	ticksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "radio_scheduler_ticks_total", Help: "Scheduler ticks"},
	)
	reshufflesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "radio_reshuffles_total", Help: "Cycle reshuffles"},
	)
	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "radio_reconcile_total", Help: "Reconcile outcomes"},
		[]string{"action"},
	)
	catalogErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "radio_catalog_errors_total", Help: "Failed catalog fetches"},
	)
	activeListeners = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "radio_active_listeners", Help: "Active listener sessions"},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(ticksTotal, reshufflesTotal, reconcileTotal, catalogErrors, activeListeners)
}
