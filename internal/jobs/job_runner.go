// Package jobs holds the background jobs run by the scheduler.
package jobs

import (
	"context"
	"log"
	"time"

	"fleet-backend/internal/cache"
	"fleet-backend/internal/metrics"
)

// Reconciler re-sums every row of one ledger from its installments and
// returns how many rows were repaired.
type Reconciler interface {
	Reconcile(ctx context.Context) (int64, error)
}

// JobRunner coordinates the scheduled jobs.
type JobRunner struct {
	ledgers map[string]Reconciler
	timeout time.Duration
}

func NewJobRunner(bills, payments Reconciler) *JobRunner {
	return &JobRunner{
		ledgers: map[string]Reconciler{"bill": bills, "payment": payments},
		timeout: 10 * time.Minute,
	}
}

// runWithRecovery keeps a panicking job from taking the scheduler down.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Scheduler] job %s panicked: %v", jobName, r)
		}
	}()

	start := time.Now()
	log.Printf("[Scheduler] starting job %s", jobName)
	jobFunc()
	log.Printf("[Scheduler] job %s completed in %v", jobName, time.Since(start))
}

// ReconcileLedgers is the cron entry point for ReconcileAll.
func (jr *JobRunner) ReconcileLedgers() {
	jr.runWithRecovery("ReconcileLedgers", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
		defer cancel()
		if _, err := jr.ReconcileAll(ctx); err != nil {
			log.Printf("[Scheduler] ledger reconciliation failed: %v", err)
		}
	})
}

// ReconcileAll repairs stored paid, due and status figures that drifted from
// the installments. It returns the repaired row count per ledger.
func (jr *JobRunner) ReconcileAll(ctx context.Context) (map[string]int64, error) {
	repaired := make(map[string]int64, len(jr.ledgers))
	var total int64
	for name, r := range jr.ledgers {
		n, err := r.Reconcile(ctx)
		if err != nil {
			return repaired, err
		}
		repaired[name] = n
		total += n
		if n > 0 {
			metrics.LedgerReconciledRows.WithLabelValues(name).Add(float64(n))
			log.Printf("[Ledger] reconciled %d %s rows", n, name)
		}
	}
	if total > 0 {
		cache.InvalidateLedgerCaches(ctx)
	}
	return repaired, nil
}
