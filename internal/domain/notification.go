package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventStatusChanged              EventKind = "status_changed"
	EventComplaintEscalated         EventKind = "complaint_escalated"
	EventSLABreached                EventKind = "sla_breached"
	EventDocumentExpiring           EventKind = "document_expiring"
	EventComplianceIssue            EventKind = "compliance_issue"
	EventSalaryVerificationReminder EventKind = "salary_verification_reminder"
	EventScreeningReminder          EventKind = "screening_reminder"
)

// Event is the single notification variant handed to a Notifier. Payload values are
// kept to JSON-compatible scalars so every channel can serialize them.
type Event struct {
	ID          uuid.UUID      `json:"id"`
	Kind        EventKind      `json:"kind"`
	CandidateID int64          `json:"candidate_id"`
	SubjectType string         `json:"subject_type"`
	SubjectID   int64          `json:"subject_id"`
	Payload     map[string]any `json:"payload"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

func NewEvent(kind EventKind, subjectType string, subjectID, candidateID int64, payload map[string]any, at time.Time) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{
		ID:          uuid.New(),
		Kind:        kind,
		CandidateID: candidateID,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Payload:     payload,
		OccurredAt:  at,
	}
}

// Notification is the in-app (database) copy of a delivered event.
type Notification struct {
	ID          int64             `json:"id"`
	EventID     string            `json:"event_id"`
	Kind        EventKind         `json:"kind"`
	CandidateID int64             `json:"candidate_id"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	IsRead      bool              `json:"is_read"`
	Attributes  map[string]string `json:"attributes"`
	CreatedAt   time.Time         `json:"created_at"`
}
