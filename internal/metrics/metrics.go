// Package metrics registers the Prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, route and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// InstallmentsRecorded counts installment mutations; ledger is bill or payment, op is add, update or delete.
	InstallmentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "installments_recorded_total",
		Help: "Installment mutations applied to bill and payment ledgers.",
	}, []string{"ledger", "op"})

	RentalTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rental_transactions_total",
		Help: "Rental transaction attempts by result.",
	}, []string{"result"})

	CodesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codes_issued_total",
		Help: "Sequential codes issued per family.",
	}, []string{"family"})

	LedgerReconciledRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_reconciled_rows_total",
		Help: "Ledger rows whose stored totals were repaired by reconciliation.",
	}, []string{"ledger"})
)
