package repository

import (
	"context"
	"time"

	"btevta-wasl-backend/internal/domain"
)

// Lookups return domain.ErrNotFound when the row does not exist. Conditional writes return
// domain.ErrConcurrentModification when their guard no longer matches.

type CandidateRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Candidate, error)
	// UpdateStatus moves the candidate from expected to next and appends entry to the
	// status log in one transaction.
	UpdateStatus(ctx context.Context, id int64, expected, next domain.CandidateStatus, entry *domain.StatusLog) error
	ListStatusLogs(ctx context.Context, candidateID int64) ([]domain.StatusLog, error)
}

type DocumentRepository interface {
	ListChecklist(ctx context.Context, candidateID int64) ([]domain.DocumentChecklistItem, error)
	// ListUnnotifiedExpiring returns documents expiring before the given instant that have
	// not had their expiry warning yet.
	ListUnnotifiedExpiring(ctx context.Context, before time.Time) ([]domain.UploadedDocument, error)
	MarkExpiryNotified(ctx context.Context, id int64, at time.Time) error
}

type ScreeningRepository interface {
	ListByCandidate(ctx context.Context, candidateID int64) ([]domain.ScreeningRecord, error)
	GetByID(ctx context.Context, id int64) (*domain.ScreeningRecord, error)
	ListPendingCalls(ctx context.Context) ([]domain.ScreeningRecord, error)
	RecordCallAttempt(ctx context.Context, id int64, expectedCount int, at time.Time) error
	MarkReminded(ctx context.Context, id int64, at time.Time) error
}

type TrainingRepository interface {
	ListAttendance(ctx context.Context, candidateID int64) ([]domain.TrainingAttendance, error)
	ListAssessments(ctx context.Context, candidateID int64) ([]domain.TrainingAssessment, error)
}

type VisaRepository interface {
	GetByCandidate(ctx context.Context, candidateID int64) (*domain.VisaProcess, error)
	UpdateStage(ctx context.Context, id int64, expected, next int, at time.Time) error
}

type DepartureRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Departure, error)
	GetByCandidate(ctx context.Context, candidateID int64) (*domain.Departure, error)
	// ListDeparted returns departures with a departure date, oldest first.
	ListDeparted(ctx context.Context) ([]domain.Departure, error)
	UpdateCompliance(ctx context.Context, id int64, expected, status domain.ComplianceStatus, percentage int, at time.Time) error
	UpdateSalaryReminder(ctx context.Context, id int64, expected, next domain.ReminderLevel, at time.Time) error
}

type ComplaintRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Complaint, error)
	ListOpen(ctx context.Context) ([]domain.Complaint, error)
	// MarkBreached flips sla_breached once. A complaint that is already breached
	// returns domain.ErrConcurrentModification.
	MarkBreached(ctx context.Context, id int64, at time.Time, hoursOverdue int) error
	UpdateHoursOverdue(ctx context.Context, id int64, hoursOverdue int) error
	// Escalate raises the level from entry.PreviousLevel to entry.NewLevel and records the
	// history entry in one transaction.
	Escalate(ctx context.Context, entry *domain.ComplaintEscalation) error
	ListEscalations(ctx context.Context, complaintID int64) ([]domain.ComplaintEscalation, error)
}

type RemittanceRepository interface {
	ListByCandidate(ctx context.Context, candidateID int64) ([]domain.Remittance, error)
	ListOpenAlerts(ctx context.Context, candidateID int64) ([]domain.RemittanceAlert, error)
	CreateAlert(ctx context.Context, alert *domain.RemittanceAlert) error
	AutoResolveAlert(ctx context.Context, id int64, at time.Time) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByCandidate(ctx context.Context, candidateID int64, limit, offset int32) ([]domain.Notification, int32, error)
}
