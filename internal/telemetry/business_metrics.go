package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability
// of the service workshop engine.
type BusinessMetrics struct {
	// Lifecycle
	RequestsCreated   prometheus.Counter
	StatusTransitions *prometheus.CounterVec
	Dispatches        prometheus.Counter

	// Ledgers
	StockConsumed  prometheus.Counter
	StockReversals prometheus.Counter
	LaborCharges   prometheus.Counter

	// Financials
	PaymentsRecorded  *prometheus.CounterVec
	InvoicesGenerated prometheus.Counter

	// Alerts
	LowStockAlerts *prometheus.CounterVec
}

// NewBusinessMetrics creates and registers the business metric collectors.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "camshaft"
	}

	return &BusinessMetrics{
		RequestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_requests_created_total",
			Help:      "Total number of service requests booked",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Total number of successful status transitions",
		}, []string{"to"}),
		Dispatches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Total number of vehicles dispatched",
		}),
		StockConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_consumptions_total",
			Help:      "Total number of material consumption records",
		}),
		StockReversals: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_reversals_total",
			Help:      "Total number of material usage reversals",
		}),
		LaborCharges: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "labor_charges_total",
			Help:      "Total number of labor charges recorded",
		}),
		PaymentsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Total number of payments recorded",
		}, []string{"method"}),
		InvoicesGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_generated_total",
			Help:      "Total number of invoices generated or regenerated",
		}),
		LowStockAlerts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "low_stock_alerts_total",
			Help:      "Total number of low-stock alerts published",
		}, []string{"severity"}),
	}
}
