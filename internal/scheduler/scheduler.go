package scheduler

import (
	"context"
	"time"

	"btevta-wasl-backend/internal/jobs"
	"btevta-wasl-backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron    *cron.Cron
	jobs    *jobs.JobRunner
	entries map[string]cron.EntryID
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{
		cron:    c,
		jobs:    jobRunner,
		entries: make(map[string]cron.EntryID),
	}

	s.registerJobs()
	return s
}

// schedules pairs each sweep with its configured cron spec
func (s *Scheduler) schedules() map[string]string {
	cfg := s.jobs.Config().Scheduler
	return map[string]string{
		jobs.JobEvaluateComplaintSLAs:          cfg.EvaluateComplaintSLAs,
		jobs.JobCheckPostDepartureCompliance:   cfg.CheckPostDepartureCompliance,
		jobs.JobSendSalaryVerificationReminder: cfg.SendSalaryVerificationReminder,
		jobs.JobCheckRemittanceAlerts:          cfg.CheckRemittanceAlerts,
		jobs.JobSendDocumentExpiryWarnings:     cfg.SendDocumentExpiryWarnings,
		jobs.JobSendScreeningReminders:         cfg.SendScreeningReminders,
	}
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	specs := s.schedules()
	for _, name := range s.jobs.Names() {
		spec := specs[name]
		if spec == "" {
			logger.Warn("No schedule configured, job disabled", "job", name)
			continue
		}
		name := name
		id, err := s.cron.AddFunc(spec, func() {
			if _, err := s.jobs.Run(context.Background(), name); err != nil {
				logger.Error("Scheduled job failed", "job", name, "error", err)
			}
		})
		if err != nil {
			logger.Error("Failed to register job", "job", name, "spec", spec, "error", err)
			continue
		}
		s.entries[name] = id
	}

	logger.Info("Cron jobs registered", "count", len(s.entries))
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if any job is registered
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}

// Registered lists the registered job names
func (s *Scheduler) Registered() []string {
	out := make([]string, 0, len(s.entries))
	for _, name := range s.jobs.Names() {
		if _, ok := s.entries[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Next returns the next activation time of a job
func (s *Scheduler) Next(name string) (time.Time, bool) {
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}
