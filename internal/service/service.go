package service

import (
	"context"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/escalation"
	"btevta-wasl-backend/internal/lifecycle"
	"btevta-wasl-backend/internal/sla"
)

// LifecycleService applies candidate status changes and the checks around them.
type LifecycleService interface {
	// AttemptTransition returns the validator's decision. A denied decision is returned
	// together with its *domain.TransitionError.
	AttemptTransition(ctx context.Context, candidateID int64, target domain.CandidateStatus, tc lifecycle.TransitionContext) (*TransitionResult, error)
	Reactivate(ctx context.Context, candidateID int64, tc lifecycle.TransitionContext) (*TransitionResult, error)
	EvaluateGate(ctx context.Context, candidateID int64, gate lifecycle.GateName) (*lifecycle.GateResult, error)
	AllowedTransitions(ctx context.Context, candidateID int64) (*domain.Candidate, []domain.CandidateStatus, error)
	ListStatusLogs(ctx context.Context, candidateID int64) ([]domain.StatusLog, error)
	AdvanceVisaStage(ctx context.Context, candidateID int64, stage int) (*domain.VisaProcess, error)
	RecordCallAttempt(ctx context.Context, screeningID int64) (*domain.ScreeningRecord, error)
}

// ComplaintService evaluates complaint SLAs and escalates complaints.
type ComplaintService interface {
	EvaluateSLA(ctx context.Context, complaintID int64) (*ComplaintSLA, error)
	// Tick evaluates one open complaint for the SLA sweep: it records a first breach and
	// applies automatic escalation.
	Tick(ctx context.Context, c *domain.Complaint) (*ComplaintSLA, error)
	Escalate(ctx context.Context, complaintID int64, actor, reason string) (*ComplaintEscalationResult, error)
	ListEscalations(ctx context.Context, complaintID int64) ([]domain.ComplaintEscalation, error)
}

// ComplianceService tracks the post-departure compliance window.
type ComplianceService interface {
	EvaluateCompliance(ctx context.Context, departureID int64) (*domain.Departure, *sla.ComplianceState, error)
	CheckCompliance(ctx context.Context, dep *domain.Departure) (*ComplianceCheck, error)
	SendSalaryReminder(ctx context.Context, dep *domain.Departure) (domain.ReminderLevel, bool, error)
}

// RemittanceService keeps remittance alerts in line with the current findings.
type RemittanceService interface {
	CheckAlerts(ctx context.Context, dep *domain.Departure) (*AlertReconciliation, error)
}

// ReminderService sends one-off document and screening reminders.
type ReminderService interface {
	WarnDocumentExpiry(ctx context.Context, doc *domain.UploadedDocument) (bool, error)
	RemindScreening(ctx context.Context, rec *domain.ScreeningRecord) (bool, error)
}

type TransitionResult struct {
	Decision     lifecycle.Decision `json:"decision"`
	Candidate    *domain.Candidate  `json:"candidate"`
	AutoRejected bool               `json:"auto_rejected"`
}

type ComplaintSLA struct {
	Complaint     *domain.Complaint    `json:"complaint"`
	State         sla.State            `json:"state"`
	NewlyBreached bool                 `json:"newly_breached"`
	Escalation    *escalation.Decision `json:"escalation,omitempty"`
}

type ComplaintEscalationResult struct {
	Complaint *domain.Complaint   `json:"complaint"`
	Decision  escalation.Decision `json:"decision"`
}

type ComplianceCheck struct {
	State    sla.ComplianceState `json:"state"`
	Changed  bool                `json:"changed"`
	Notified bool                `json:"notified"`
	Skipped  bool                `json:"skipped"`
}

type AlertReconciliation struct {
	Created  []domain.RemittanceAlert `json:"created"`
	Resolved []domain.RemittanceAlert `json:"resolved"`
}
