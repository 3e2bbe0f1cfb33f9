package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"btevta-wasl-backend/internal/config"
	"btevta-wasl-backend/internal/logger"
	"btevta-wasl-backend/internal/repository"
	"btevta-wasl-backend/internal/repository/postgres"
	"btevta-wasl-backend/internal/service"
	"btevta-wasl-backend/internal/sla"
)

// Job names, also used as cron entry names and by cronjob --run-once.
const (
	JobEvaluateComplaintSLAs          = "evaluate-complaint-slas"
	JobCheckPostDepartureCompliance   = "check-post-departure-compliance"
	JobSendSalaryVerificationReminder = "send-salary-verification-reminders"
	JobCheckRemittanceAlerts          = "check-remittance-alerts"
	JobSendDocumentExpiryWarnings     = "send-document-expiry-warnings"
	JobSendScreeningReminders         = "send-screening-reminders"
)

// JobRunner coordinates all scheduled sweeps
type JobRunner struct {
	sources  Sources
	services *Services
	config   *config.Config
	clock    sla.Clock
	sweeps   map[string]func(context.Context) *SweepReport
}

// Sources are the repositories sweeps list their entities from
type Sources struct {
	Complaints repository.ComplaintRepository
	Departures repository.DepartureRepository
	Documents  repository.DocumentRepository
	Screenings repository.ScreeningRepository
}

// SourcesFromStore picks the listing repositories out of a store
func SourcesFromStore(store *postgres.Store) Sources {
	return Sources{
		Complaints: store.Complaints,
		Departures: store.Departures,
		Documents:  store.Documents,
		Screenings: store.Screenings,
	}
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Complaints service.ComplaintService
	Compliance service.ComplianceService
	Remittance service.RemittanceService
	Reminders  service.ReminderService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(sources Sources, services *Services, cfg *config.Config, clock sla.Clock) *JobRunner {
	jr := &JobRunner{
		sources:  sources,
		services: services,
		config:   cfg,
		clock:    clock,
	}
	jr.sweeps = map[string]func(context.Context) *SweepReport{
		JobEvaluateComplaintSLAs:          jr.EvaluateComplaintSLAs,
		JobCheckPostDepartureCompliance:   jr.CheckPostDepartureCompliance,
		JobSendSalaryVerificationReminder: jr.SendSalaryVerificationReminders,
		JobCheckRemittanceAlerts:          jr.CheckRemittanceAlerts,
		JobSendDocumentExpiryWarnings:     jr.SendDocumentExpiryWarnings,
		JobSendScreeningReminders:         jr.SendScreeningReminders,
	}
	return jr
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// Names lists the registered sweeps in a stable order
func (jr *JobRunner) Names() []string {
	names := make([]string, 0, len(jr.sweeps))
	for name := range jr.sweeps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes one sweep by name
func (jr *JobRunner) Run(ctx context.Context, name string) (*SweepReport, error) {
	sweep, ok := jr.sweeps[name]
	if !ok {
		return nil, fmt.Errorf("unknown job %q", name)
	}
	return sweep(ctx), nil
}

// RunAll runs every sweep once (for manual execution)
func (jr *JobRunner) RunAll(ctx context.Context) []*SweepReport {
	reports := make([]*SweepReport, 0, len(jr.sweeps))
	for _, name := range jr.Names() {
		reports = append(reports, jr.sweeps[name](ctx))
	}
	return reports
}

// EntityError records one entity a sweep could not process
type EntityError struct {
	Entity string `json:"entity"`
	ID     int64  `json:"id"`
	Error  string `json:"error"`
}

// SweepReport summarises one sweep run
type SweepReport struct {
	Job       string        `json:"job"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Scanned   int           `json:"scanned"`
	Changed   int           `json:"changed"`
	Notified  int           `json:"notified"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Errors    []EntityError `json:"errors,omitempty"`
	Aborted   string        `json:"aborted,omitempty"`
}

func (r *SweepReport) fail(entity string, id int64, err error) {
	r.Failed++
	r.Errors = append(r.Errors, EntityError{Entity: entity, ID: id, Error: err.Error()})
	logger.WithJob(r.Job).Error("Sweep entity failed", "entity", entity, "id", id, "error", err)
}

// step runs one entity's work and reports whether it succeeded. An error or a panic is
// recorded against that entity and the sweep moves on to the next one.
func (r *SweepReport) step(entity string, id int64, fn func() error) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.fail(entity, id, fmt.Errorf("panic: %v", p))
			ok = false
		}
	}()
	if err := fn(); err != nil {
		r.fail(entity, id, err)
		return false
	}
	return true
}

// runWithRecovery wraps job execution with panic recovery. A panic or listing error
// aborts the sweep; entity errors are recorded by the job itself.
func (jr *JobRunner) runWithRecovery(ctx context.Context, jobName string, jobFunc func(ctx context.Context, report *SweepReport) error) (report *SweepReport) {
	report = &SweepReport{Job: jobName, StartedAt: jr.clock.Now()}
	log := logger.WithJob(jobName)
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			report.Aborted = fmt.Sprintf("panic: %v", r)
			log.Error("Job panicked", "panic", r)
		}
		report.Duration = time.Since(started)
	}()

	log.Info("Starting job")
	if err := jobFunc(ctx, report); err != nil {
		report.Aborted = err.Error()
		log.Error("Job aborted", "error", err)
		return report
	}
	log.Info("Job completed", "scanned", report.Scanned, "changed", report.Changed, "notified", report.Notified, "failed", report.Failed)
	return report
}
