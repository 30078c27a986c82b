package scheduler

import (
	"log"
	"time"

	"fleet-backend/internal/jobs"

	"github.com/robfig/cron/v3"
)

// Scheduler runs background jobs on cron specs.
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler registers the ledger reconciliation job on reconcileSpec, a
// standard five-field cron expression evaluated in loc.
func NewScheduler(jobRunner *jobs.JobRunner, reconcileSpec string, loc *time.Location) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		jobs: jobRunner,
	}
	if _, err := s.cron.AddFunc(reconcileSpec, s.jobs.ReconcileLedgers); err != nil {
		return nil, err
	}
	log.Printf("[Scheduler] ledger reconciliation scheduled at %q", reconcileSpec)
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[Scheduler] started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[Scheduler] stopped")
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
